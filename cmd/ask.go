package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/coursepilot/coursepilot/internal/tools"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question about the course materials",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	question := strings.Join(args, " ")
	res, err := app.orch.Query(ctx, question, "")
	if err != nil {
		return err
	}

	fmt.Println(res.Answer)
	printSources(res.Sources)
	return nil
}

// printSources lists the course material the answer drew on.
func printSources(sources []tools.Source) {
	if len(sources) == 0 {
		return
	}
	dim := color.New(color.Faint).SprintFunc()
	fmt.Println()
	fmt.Println(dim("Sources:"))
	for _, s := range sources {
		line := s.Text
		if s.Link != "" {
			line += " <" + s.Link + ">"
		}
		fmt.Println(dim("  " + line))
	}
}
