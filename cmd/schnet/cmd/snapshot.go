package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/schnet/internal/config"
	"github.com/OpenTraceLab/schnet/internal/snapshot"
	"github.com/OpenTraceLab/schnet/pkg/kicad/export"
)

var (
	snapshotSQLite      string
	snapshotDatabaseURL string
	snapshotLimit       int
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [schematic_file]",
	Short: "Record a content-addressed snapshot of a schematic",
	Long: `Process a schematic and store its document keyed by content hash.
Storing an unchanged schematic again is reported as a duplicate.

Without a schematic file the stored snapshots are listed, newest first.
The store is a SQLite file (--sqlite, SCHNET_SQLITE_PATH) or a PostgreSQL
database (--database-url, SCHNET_DATABASE_URL).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().StringVar(&snapshotSQLite, "sqlite", "", "SQLite database path")
	snapshotCmd.Flags().StringVar(&snapshotDatabaseURL, "database-url", "", "PostgreSQL connection URL")
	snapshotCmd.Flags().IntVar(&snapshotLimit, "limit", 20, "number of snapshots to list")
	snapshotCmd.MarkFlagsMutuallyExclusive("sqlite", "database-url")
}

// snapshotTarget picks the store from flags first, then the environment
func snapshotTarget(cfg *config.Config) (string, error) {
	switch {
	case snapshotDatabaseURL != "":
		return snapshotDatabaseURL, nil
	case snapshotSQLite != "":
		return snapshotSQLite, nil
	}
	if url := cfg.GetString(config.KeyDatabaseURL, ""); url != "" {
		return url, nil
	}
	if path := cfg.GetString(config.KeySQLitePath, ""); path != "" {
		return path, nil
	}
	return "", fmt.Errorf("no snapshot store: use --sqlite or --database-url")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	target, err := snapshotTarget(a.cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := snapshot.Open(ctx, target, a.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		list, err := store.List(ctx, snapshotLimit)
		if err != nil {
			return err
		}
		listSnapshots(out, list)
		return nil
	}

	res, err := a.process(ctx, args[0])
	if err != nil {
		return fmt.Errorf("error processing %s: %w", args[0], err)
	}
	data, err := export.Marshal(res.Document, false)
	if err != nil {
		return err
	}

	created, err := store.Put(ctx, snapshot.Snapshot{
		Hash:         res.Hash,
		ProcessingID: res.ProcessingID,
		Filename:     res.Document.ProcessingMeta.OriginalFilename,
		Created:      time.Now().UTC(),
		Components:   res.Stats.Components,
		Nets:         res.Stats.Nets,
		Document:     data,
	})
	if err != nil {
		return err
	}
	a.metrics.RecordSnapshot(created)

	status := headingStyle.Render("stored")
	if !created {
		status = mutedStyle.Render("unchanged")
	}
	fmt.Fprintf(out, "%s %s %s\n", status, res.Hash, res.Document.ProcessingMeta.OriginalFilename)
	return nil
}

func listSnapshots(w io.Writer, list []snapshot.Snapshot) {
	if len(list) == 0 {
		writeLines(w, mutedStyle.Render("no snapshots"))
		return
	}
	writeLines(w, fmt.Sprintf("%-16s %-20s %5s %5s  %s", "Hash", "Created", "Comps", "Nets", "File"))
	for _, s := range list {
		writeLines(w, fmt.Sprintf("%-16s %-20s %5d %5d  %s",
			s.Hash[:min(16, len(s.Hash))],
			s.Created.Format(time.DateTime),
			s.Components, s.Nets, s.Filename))
	}
}
