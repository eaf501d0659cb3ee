// Package cmd implements the coursepilot command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "coursepilot",
	Short: "Course materials assistant",
	Long: `Coursepilot answers questions about ingested course materials.

It retrieves relevant course content with vector search and lets the
model cite the lessons the answer came from. Running coursepilot with
no subcommand starts an interactive chat.`,
	RunE: runChat,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
