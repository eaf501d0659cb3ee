package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List the ingested courses",
	RunE:  runCourses,
}

func init() {
	rootCmd.AddCommand(coursesCmd)
}

func runCourses(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	analytics, err := app.orch.Analytics(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%d course(s) in the catalog\n", analytics.TotalCourses)
	for _, title := range analytics.CourseTitles {
		fmt.Printf("  %s\n", title)
	}
	return nil
}
