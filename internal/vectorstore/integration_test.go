package vectorstore_test

import (
	"context"
	"testing"

	"github.com/coursepilot/coursepilot/internal/course"
	"github.com/coursepilot/coursepilot/internal/log"
	"github.com/coursepilot/coursepilot/internal/testutil"
	"github.com/coursepilot/coursepilot/internal/vectorstore"
)

func setupIntegrationStore(t *testing.T) (*vectorstore.Store, *vectorstore.PGQuerier) {
	t.Helper()
	if testing.Short() {
		t.Skip("requires Docker")
	}

	db := testutil.SetupTestDB(t)
	queries := vectorstore.NewPGQuerier(db.Pool)
	store, err := vectorstore.New(queries, testutil.Embedder{}, 5, vectorstore.Options{}, log.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return store, queries
}

func seedCourse(t *testing.T, store *vectorstore.Store, title string) {
	t.Helper()
	one, two := 1, 2
	crs := &course.Course{
		Title:      title,
		Link:       "https://example.com/" + title,
		Instructor: "Jane Doe",
		Lessons: []course.Lesson{
			{Number: 1, Title: "Introduction", Link: "https://example.com/l1"},
			{Number: 2, Title: "Advanced Topics"},
		},
	}
	chunks := []course.Chunk{
		{Content: "Lesson one content about protocols.", CourseTitle: title, LessonNumber: &one, Index: 0},
		{Content: "Lesson two content about tooling.", CourseTitle: title, LessonNumber: &two, Index: 1},
	}
	if err := store.AddCourse(context.Background(), crs, chunks); err != nil {
		t.Fatalf("AddCourse(%q): %v", title, err)
	}
}

func TestIntegrationRoundTrip(t *testing.T) {
	store, _ := setupIntegrationStore(t)
	ctx := context.Background()
	seedCourse(t, store, "Protocol Course")

	n, err := store.CountCourses(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("CountCourses = %d, want 1", n)
	}

	results := store.Search(ctx, vectorstore.SearchRequest{Query: "protocols"})
	if results.Failed() {
		t.Fatalf("search failed: %s", results.Err)
	}
	if len(results.Hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(results.Hits))
	}

	// Lesson filter narrows to the matching chunk.
	two := 2
	results = store.Search(ctx, vectorstore.SearchRequest{
		Query:        "tooling",
		CourseName:   "Protocol Course",
		LessonNumber: &two,
	})
	if results.Failed() {
		t.Fatalf("filtered search failed: %s", results.Err)
	}
	if len(results.Hits) != 1 || *results.Hits[0].LessonNumber != 2 {
		t.Fatalf("filtered hits = %+v", results.Hits)
	}
}

func TestIntegrationOutlineAndLinks(t *testing.T) {
	store, _ := setupIntegrationStore(t)
	ctx := context.Background()
	seedCourse(t, store, "Protocol Course")

	outline, err := store.Outline(ctx, "Protocol Course")
	if err != nil {
		t.Fatal(err)
	}
	if outline == nil || outline.Instructor != "Jane Doe" || len(outline.Lessons) != 2 {
		t.Fatalf("outline = %+v", outline)
	}

	link, err := store.LessonLink(ctx, "Protocol Course", 1)
	if err != nil {
		t.Fatal(err)
	}
	if link != "https://example.com/l1" {
		t.Errorf("lesson link = %q", link)
	}
}

func TestIntegrationReingestReplacesChunks(t *testing.T) {
	store, queries := setupIntegrationStore(t)
	ctx := context.Background()
	seedCourse(t, store, "Protocol Course")

	// Re-adding the same course must replace its chunks, not append.
	one := 1
	crs := &course.Course{Title: "Protocol Course", Instructor: "Jane Doe"}
	chunks := []course.Chunk{
		{Content: "Replacement content.", CourseTitle: "Protocol Course", LessonNumber: &one, Index: 0},
	}
	if err := store.AddCourse(ctx, crs, chunks); err != nil {
		t.Fatal(err)
	}

	results := store.Search(ctx, vectorstore.SearchRequest{Query: "content"})
	if results.Failed() {
		t.Fatalf("search failed: %s", results.Err)
	}
	if len(results.Hits) != 1 || results.Hits[0].Content != "Replacement content." {
		t.Fatalf("hits after reingest = %+v", results.Hits)
	}

	titles, err := queries.ListCourseTitles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(titles) != 1 {
		t.Fatalf("titles = %v, want single catalog row", titles)
	}
}

func TestIntegrationClear(t *testing.T) {
	store, _ := setupIntegrationStore(t)
	ctx := context.Background()
	seedCourse(t, store, "Protocol Course")

	if err := store.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	n, err := store.CountCourses(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("CountCourses after Clear = %d", n)
	}
}
