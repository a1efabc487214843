package schematic

import (
	"fmt"
	"io"
	"os"

	"github.com/OpenTraceLab/schnet/pkg/kicad/sexp/kicadsexp"
)

// ParseFile reads and parses a KiCad schematic file
func ParseFile(filename string) (*Schematic, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads and parses a KiCad schematic from an io.Reader
func Parse(r io.Reader) (*Schematic, error) {
	return ParseWithOptions(r, kicadsexp.Options{})
}

// ParseWithOptions is Parse with explicit parser limits
func ParseWithOptions(r io.Reader, opts kicadsexp.Options) (*Schematic, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read schematic: %w", err)
	}
	return ParseText(string(data), opts)
}

// ParseText parses schematic source already held in memory
func ParseText(text string, opts kicadsexp.Options) (*Schematic, error) {
	root, err := kicadsexp.ParseRoot(text, RootTag, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse s-expression: %w", err)
	}

	sch, err := Build(root)
	if err != nil {
		return nil, fmt.Errorf("failed to build schematic: %w", err)
	}
	return sch, nil
}
