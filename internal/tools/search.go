package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/coursepilot/coursepilot/internal/course"
	"github.com/coursepilot/coursepilot/internal/provider"
	"github.com/coursepilot/coursepilot/internal/vectorstore"
)

// SearchToolName is the function name advertised to the model.
const SearchToolName = "search_course_content"

// ContentSearcher is the slice of the retrieval store the search tool
// needs.
type ContentSearcher interface {
	Search(ctx context.Context, req vectorstore.SearchRequest) course.SearchResults
	LessonLink(ctx context.Context, courseTitle string, lessonNumber int) (string, error)
}

// SearchTool searches course content with fuzzy course matching and
// optional lesson filtering.
type SearchTool struct {
	store  ContentSearcher
	logger *slog.Logger
}

// NewSearchTool creates a SearchTool over the given store.
func NewSearchTool(store ContentSearcher, logger *slog.Logger) *SearchTool {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchTool{store: store, logger: logger}
}

func (t *SearchTool) Definition() provider.ToolDefinition {
	return provider.ToolDefinition{
		Name:        SearchToolName,
		Description: "Search course materials with smart course name matching and lesson filtering",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"query": {
					Type:        genai.TypeString,
					Description: "What to search for in the course content",
				},
				"course_name": {
					Type:        genai.TypeString,
					Description: "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
				"lesson_number": {
					Type:        genai.TypeInteger,
					Description: "Specific lesson number to search within (e.g. 1, 2, 3)",
				},
			},
			Required: []string{"query"},
		},
	}
}

// Execute runs the search. Retrieval failures come back as the output
// text so the model can react to them; err is reserved for malformed
// arguments.
func (t *SearchTool) Execute(ctx context.Context, args map[string]any) (string, []Source, error) {
	query, err := stringArg(args, "query")
	if err != nil {
		return "", nil, err
	}
	if query == "" {
		return "", nil, fmt.Errorf("argument %q is required", "query")
	}
	courseName, err := stringArg(args, "course_name")
	if err != nil {
		return "", nil, err
	}
	lessonNumber, err := intArg(args, "lesson_number")
	if err != nil {
		return "", nil, err
	}

	results := t.store.Search(ctx, vectorstore.SearchRequest{
		Query:        query,
		CourseName:   courseName,
		LessonNumber: lessonNumber,
	})
	if results.Failed() {
		return results.Err, nil, nil
	}
	if results.IsEmpty() {
		return emptyMessage(courseName, lessonNumber), nil, nil
	}
	return t.format(ctx, results)
}

func emptyMessage(courseName string, lessonNumber *int) string {
	var filter strings.Builder
	if courseName != "" {
		fmt.Fprintf(&filter, " in course '%s'", courseName)
	}
	if lessonNumber != nil {
		fmt.Fprintf(&filter, " in lesson %d", *lessonNumber)
	}
	return fmt.Sprintf("No relevant content found%s.", filter.String())
}

// format renders one [Course - Lesson N] block per hit and records one
// source per hit for the UI.
func (t *SearchTool) format(ctx context.Context, results course.SearchResults) (string, []Source, error) {
	blocks := make([]string, 0, len(results.Hits))
	sources := make([]Source, 0, len(results.Hits))

	for _, hit := range results.Hits {
		label := hit.CourseTitle
		if hit.LessonNumber != nil {
			label = fmt.Sprintf("%s - Lesson %d", hit.CourseTitle, *hit.LessonNumber)
		}
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", label, hit.Content))

		src := Source{Text: label}
		if hit.LessonNumber != nil {
			link, err := t.store.LessonLink(ctx, hit.CourseTitle, *hit.LessonNumber)
			if err != nil {
				t.logger.Warn("lesson link lookup failed", "course", hit.CourseTitle, "error", err)
			} else {
				src.Link = link
			}
		}
		sources = append(sources, src)
	}

	return strings.Join(blocks, "\n\n"), sources, nil
}
