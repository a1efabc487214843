package main

import "github.com/OpenTraceLab/schnet/cmd/schnet/cmd"

func main() {
	cmd.Execute()
}
