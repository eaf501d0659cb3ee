package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rebuild bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [folder]",
	Short: "Load course documents into the catalog",
	Long: `Ingest parses every supported document in the folder, chunks the
content and stores it with embeddings. Courses already in the catalog
are skipped; --rebuild clears the catalog and re-ingests everything.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&rebuild, "rebuild", false, "clear the catalog before ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	stats, err := app.orch.Ingest(ctx, args[0], rebuild)
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %d course(s), %d chunk(s)\n", stats.Courses, stats.Chunks)
	return nil
}
