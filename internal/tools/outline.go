package tools

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/coursepilot/coursepilot/internal/course"
	"github.com/coursepilot/coursepilot/internal/provider"
)

// OutlineToolName is the function name advertised to the model.
const OutlineToolName = "get_course_outline"

// OutlineFetcher is the slice of the retrieval store the outline tool
// needs.
type OutlineFetcher interface {
	Outline(ctx context.Context, courseName string) (*course.Outline, error)
}

// OutlineTool returns a course's full lesson structure.
type OutlineTool struct {
	store OutlineFetcher
}

// NewOutlineTool creates an OutlineTool over the given store.
func NewOutlineTool(store OutlineFetcher) *OutlineTool {
	return &OutlineTool{store: store}
}

func (t *OutlineTool) Definition() provider.ToolDefinition {
	return provider.ToolDefinition{
		Name:        OutlineToolName,
		Description: "Retrieve the complete structure and lesson list for a specific course. Use this when users ask about course organization, lesson titles, what's covered, or the full curriculum of a course.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"course_name": {
					Type:        genai.TypeString,
					Description: "Course title or partial course name (e.g., 'MCP', 'Computer Use'). Partial matches work via semantic search.",
				},
			},
			Required: []string{"course_name"},
		},
	}
}

func (t *OutlineTool) Execute(ctx context.Context, args map[string]any) (string, []Source, error) {
	courseName, err := stringArg(args, "course_name")
	if err != nil {
		return "", nil, err
	}
	if courseName == "" {
		return "", nil, fmt.Errorf("argument %q is required", "course_name")
	}

	outline, err := t.store.Outline(ctx, courseName)
	if err != nil {
		return fmt.Sprintf("Error retrieving course outline: %v", err), nil, nil
	}
	if outline == nil {
		return fmt.Sprintf("No course found matching '%s'. Please try a different course name.", courseName), nil, nil
	}

	var sources []Source
	if outline.Link != "" {
		sources = []Source{{Text: outline.Title, Link: outline.Link}}
	}
	return formatOutline(outline), sources, nil
}

func formatOutline(o *course.Outline) string {
	var b strings.Builder
	if o.Link != "" {
		fmt.Fprintf(&b, "**Course:** [%s](%s)\n", o.Title, o.Link)
	} else {
		fmt.Fprintf(&b, "**Course:** %s\n", o.Title)
	}
	instructor := o.Instructor
	if instructor == "" {
		instructor = "Unknown Instructor"
	}
	fmt.Fprintf(&b, "**Instructor:** %s\n\n**Lessons:**", instructor)

	if len(o.Lessons) == 0 {
		b.WriteString("\n  No lessons available")
		return b.String()
	}
	for _, l := range o.Lessons {
		fmt.Fprintf(&b, "\n  %d. %s", l.Number, l.Title)
	}
	return b.String()
}
