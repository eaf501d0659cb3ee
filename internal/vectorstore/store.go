// Package vectorstore implements the retrieval store for course
// materials: a catalog collection for fuzzy course-name resolution and
// a content collection for semantic chunk search, both backed by
// PostgreSQL + pgvector.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pgvector/pgvector-go"

	"github.com/coursepilot/coursepilot/internal/course"
)

// VectorDimension is the embedding width the schema expects.
// gemini-embedding-001 truncates to 768 via OutputDimensionality;
// db/migrations declares vector(768) to match.
const VectorDimension int32 = 768

var (
	// ErrInvalidMaxResults indicates a non-positive search result limit.
	// Silently honoring zero would turn every content query into an
	// indistinguishable-from-success empty answer.
	ErrInvalidMaxResults = errors.New("invalid max results")

	// ErrInvalidMatchDistance indicates a negative resolution threshold.
	ErrInvalidMatchDistance = errors.New("invalid match distance")
)

// Embedder generates vector embeddings for texts. Implemented by the
// provider package; tests substitute a mock.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// SearchRequest is one content search. CourseName and LessonNumber are
// independently optional; catalog resolution of CourseName always
// happens before content filtering. A nil Limit uses the store default.
type SearchRequest struct {
	Query        string
	CourseName   string
	LessonNumber *int
	Limit        *int
}

// Store is the retrieval store. It owns the fuzzy-to-exact course name
// resolution step: callers only ever filter content by an exact title.
//
// Store is safe for concurrent use.
type Store struct {
	queries  Querier
	embedder Embedder
	logger   *slog.Logger

	maxResults int
	// maxMatchDistance rejects catalog resolutions with a cosine
	// distance above the threshold; zero disables the check.
	maxMatchDistance float64
}

// Options configures optional Store behavior.
type Options struct {
	// MaxMatchDistance rejects weak catalog matches. Zero disables.
	MaxMatchDistance float64
}

// New creates a Store. maxResults must be positive; this is validated
// here, fail-fast, so no search with a non-positive limit ever reaches
// the backend.
func New(queries Querier, embedder Embedder, maxResults int, opts Options, logger *slog.Logger) (*Store, error) {
	if queries == nil {
		return nil, errors.New("querier is required")
	}
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if maxResults <= 0 {
		return nil, fmt.Errorf("%w: must be positive, got %d", ErrInvalidMaxResults, maxResults)
	}
	if opts.MaxMatchDistance < 0 {
		return nil, fmt.Errorf("%w: cannot be negative, got %g", ErrInvalidMatchDistance, opts.MaxMatchDistance)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		queries:          queries,
		embedder:         embedder,
		logger:           logger,
		maxResults:       maxResults,
		maxMatchDistance: opts.MaxMatchDistance,
	}, nil
}

// Search executes one retrieval: optional catalog resolution of the
// fuzzy course name, then a filtered similarity query over content
// chunks. Every outcome is represented as data: a backend failure or a
// resolution miss comes back as SearchResults.Err, never as a panic and
// never as a Go error the tool layer must branch on.
func (s *Store) Search(ctx context.Context, req SearchRequest) course.SearchResults {
	limit := s.maxResults
	if req.Limit != nil {
		if *req.Limit <= 0 {
			// Construction rejects non-positive defaults; a per-request
			// zero is a caller bug and gets the same treatment as data.
			return course.ErrorResults("invalid search limit: %d", *req.Limit)
		}
		limit = *req.Limit
	}

	var courseTitle *string
	if req.CourseName != "" {
		resolved, err := s.resolveCourseName(ctx, req.CourseName)
		if err != nil {
			s.logger.Warn("catalog resolution failed", "course_name", req.CourseName, "error", err)
			return course.ErrorResults("search failed: %v", err)
		}
		if resolved == "" {
			// Resolution miss: stop here, do not fall through to an
			// unfiltered content search.
			return course.ErrorResults("No course found matching '%s'", req.CourseName)
		}
		courseTitle = &resolved
	}

	embeddings, err := s.embedder.Embed(ctx, []string{req.Query})
	if err != nil {
		s.logger.Warn("query embedding failed", "error", err)
		return course.ErrorResults("search failed: %v", err)
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return course.ErrorResults("search failed: empty query embedding")
	}

	rows, err := s.queries.SearchChunks(ctx, SearchChunksParams{
		Embedding:    pgvector.NewVector(embeddings[0]),
		CourseTitle:  courseTitle,
		LessonNumber: req.LessonNumber,
		Limit:        limit,
	})
	if err != nil {
		s.logger.Warn("content search failed", "error", err)
		return course.ErrorResults("search failed: %v", err)
	}

	hits := make([]course.Hit, 0, len(rows))
	for _, r := range rows {
		hits = append(hits, course.Hit{
			Content:      r.Content,
			CourseTitle:  r.CourseTitle,
			LessonNumber: r.LessonNumber,
			Distance:     r.Distance,
		})
	}
	return course.SearchResults{Hits: hits}
}

// resolveCourseName maps a fuzzy course name to the exact stored title
// via a top-1 similarity query against the catalog. Returns "" when
// nothing matches (or the best match exceeds the distance threshold).
func (s *Store) resolveCourseName(ctx context.Context, name string) (string, error) {
	embeddings, err := s.embedder.Embed(ctx, []string{name})
	if err != nil {
		return "", fmt.Errorf("embedding course name: %w", err)
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return "", errors.New("empty course name embedding")
	}

	match, err := s.queries.ResolveCourse(ctx, pgvector.NewVector(embeddings[0]))
	if err != nil {
		return "", err
	}
	if match == nil {
		return "", nil
	}
	if s.maxMatchDistance > 0 && match.Distance > s.maxMatchDistance {
		s.logger.Debug("rejecting weak catalog match",
			"course_name", name,
			"best_match", match.Title,
			"distance", match.Distance)
		return "", nil
	}
	return match.Title, nil
}

// AddCourse embeds and stores a course's catalog entry and content
// chunks. From the caller's perspective the operation is transactional:
// either both collections gain the course or neither does.
func (s *Store) AddCourse(ctx context.Context, crs *course.Course, chunks []course.Chunk) error {
	if crs == nil || crs.Title == "" {
		return errors.New("course with a title is required")
	}

	// The catalog embeds title plus instructor and lesson titles so a
	// fuzzy name like "MCP" or an instructor name can resolve.
	catalogText := crs.Title
	if crs.Instructor != "" {
		catalogText += " by " + crs.Instructor
	}
	for _, l := range crs.Lessons {
		catalogText += "\n" + l.Title
	}

	texts := make([]string, 0, len(chunks)+1)
	texts = append(texts, catalogText)
	for _, ch := range chunks {
		texts = append(texts, ch.Content)
	}

	embeddings, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding course %q: %w", crs.Title, err)
	}
	if len(embeddings) != len(texts) {
		return fmt.Errorf("embedding course %q: got %d embeddings for %d texts",
			crs.Title, len(embeddings), len(texts))
	}

	inserts := make([]ChunkInsert, 0, len(chunks))
	for i, ch := range chunks {
		inserts = append(inserts, ChunkInsert{
			Index:        ch.Index,
			LessonNumber: ch.LessonNumber,
			Content:      ch.Content,
			Embedding:    pgvector.NewVector(embeddings[i+1]),
		})
	}

	err = s.queries.AddCourse(ctx, AddCourseParams{
		Title:      crs.Title,
		Link:       crs.Link,
		Instructor: crs.Instructor,
		Lessons:    crs.Lessons,
		Embedding:  pgvector.NewVector(embeddings[0]),
		Chunks:     inserts,
	})
	if err != nil {
		return err
	}

	s.logger.Debug("added course", "title", crs.Title, "chunks", len(chunks))
	return nil
}

// ExistingCourseTitles lists the titles already present in the catalog.
// Used by ingestion to skip known courses.
func (s *Store) ExistingCourseTitles(ctx context.Context) ([]string, error) {
	return s.queries.ListCourseTitles(ctx)
}

// CountCourses returns the number of courses in the catalog.
func (s *Store) CountCourses(ctx context.Context) (int, error) {
	titles, err := s.queries.ListCourseTitles(ctx)
	if err != nil {
		return 0, err
	}
	return len(titles), nil
}

// Outline returns the full structure of a course after resolving the
// possibly-fuzzy name. A nil Outline with nil error means no match.
func (s *Store) Outline(ctx context.Context, courseName string) (*course.Outline, error) {
	resolved, err := s.resolveCourseName(ctx, courseName)
	if err != nil {
		return nil, err
	}
	if resolved == "" {
		return nil, nil
	}

	row, err := s.queries.CourseByTitle(ctx, resolved)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return &course.Outline{
		Title:      row.Title,
		Link:       row.Link,
		Instructor: row.Instructor,
		Lessons:    row.Lessons,
	}, nil
}

// LessonLink returns the stored link for a lesson, or "" when unknown.
// courseTitle must be exact (post-resolution).
func (s *Store) LessonLink(ctx context.Context, courseTitle string, lessonNumber int) (string, error) {
	row, err := s.queries.CourseByTitle(ctx, courseTitle)
	if err != nil {
		return "", err
	}
	if row == nil {
		return "", nil
	}
	for _, l := range row.Lessons {
		if l.Number == lessonNumber {
			return l.Link, nil
		}
	}
	return "", nil
}

// Clear removes all data from both collections. Destructive; used for
// an explicit rebuild only.
func (s *Store) Clear(ctx context.Context) error {
	return s.queries.Clear(ctx)
}
