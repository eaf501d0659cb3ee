package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/coursepilot/coursepilot/internal/course"
)

// Querier defines the database operations Store depends on. Interfaces
// are defined by the consumer; PGQuerier is the production
// implementation and tests substitute a mock.
type Querier interface {
	// AddCourse inserts a catalog entry and its chunks in one
	// transaction: either both land or the course is not present.
	AddCourse(ctx context.Context, arg AddCourseParams) error

	// ResolveCourse returns the nearest catalog entry to the embedding,
	// or nil when the catalog is empty.
	ResolveCourse(ctx context.Context, embedding pgvector.Vector) (*CourseMatch, error)

	// SearchChunks performs a filtered vector search over content chunks.
	SearchChunks(ctx context.Context, arg SearchChunksParams) ([]ChunkRow, error)

	// ListCourseTitles returns all catalog titles.
	ListCourseTitles(ctx context.Context) ([]string, error)

	// CourseByTitle fetches one catalog entry by exact title.
	CourseByTitle(ctx context.Context, title string) (*CatalogRow, error)

	// DeleteCourse removes a course and, via cascade, its chunks.
	DeleteCourse(ctx context.Context, title string) error

	// Clear removes all catalog entries and chunks.
	Clear(ctx context.Context) error
}

// AddCourseParams carries one course plus its embedded chunks.
type AddCourseParams struct {
	Title      string
	Link       string
	Instructor string
	Lessons    []course.Lesson
	Embedding  pgvector.Vector
	Chunks     []ChunkInsert
}

// ChunkInsert is one content chunk ready for insertion.
type ChunkInsert struct {
	Index        int
	LessonNumber *int
	Content      string
	Embedding    pgvector.Vector
}

// CourseMatch is the result of a top-1 catalog resolution.
type CourseMatch struct {
	Title    string
	Distance float64
}

// SearchChunksParams is a filtered content search. Nil filter fields
// mean unfiltered.
type SearchChunksParams struct {
	Embedding    pgvector.Vector
	CourseTitle  *string
	LessonNumber *int
	Limit        int
}

// ChunkRow is one ranked content search result.
type ChunkRow struct {
	Content      string
	CourseTitle  string
	LessonNumber *int
	Distance     float64
}

// CatalogRow is one catalog entry with its lesson list.
type CatalogRow struct {
	Title      string
	Link       string
	Instructor string
	Lessons    []course.Lesson
}

// PGQuerier implements Querier over PostgreSQL + pgvector.
// Safe for concurrent use; pgxpool manages connections.
type PGQuerier struct {
	pool *pgxpool.Pool
}

// NewPGQuerier creates a PGQuerier over the given pool.
func NewPGQuerier(pool *pgxpool.Pool) *PGQuerier {
	return &PGQuerier{pool: pool}
}

func (q *PGQuerier) AddCourse(ctx context.Context, arg AddCourseParams) error {
	lessonsJSON, err := json.Marshal(arg.Lessons)
	if err != nil {
		return fmt.Errorf("marshaling lessons: %w", err)
	}

	tx, err := q.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Re-ingest replaces the whole course: upsert the catalog row,
	// drop the old chunks, insert the new set.
	_, err = tx.Exec(ctx, `INSERT INTO course_catalog (title, link, instructor, lessons, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (title) DO UPDATE
		SET link = EXCLUDED.link, instructor = EXCLUDED.instructor,
		    lessons = EXCLUDED.lessons, embedding = EXCLUDED.embedding`,
		arg.Title, arg.Link, arg.Instructor, lessonsJSON, arg.Embedding)
	if err != nil {
		return fmt.Errorf("upserting course %q: %w", arg.Title, err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM course_chunks WHERE course_title = $1`, arg.Title)
	if err != nil {
		return fmt.Errorf("clearing chunks for %q: %w", arg.Title, err)
	}

	for _, ch := range arg.Chunks {
		_, err = tx.Exec(ctx, `INSERT INTO course_chunks (course_title, chunk_index, lesson_number, content, embedding)
			VALUES ($1, $2, $3, $4, $5)`,
			arg.Title, ch.Index, ch.LessonNumber, ch.Content, ch.Embedding)
		if err != nil {
			return fmt.Errorf("inserting chunk %d of %q: %w", ch.Index, arg.Title, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing course %q: %w", arg.Title, err)
	}
	return nil
}

func (q *PGQuerier) ResolveCourse(ctx context.Context, embedding pgvector.Vector) (*CourseMatch, error) {
	var m CourseMatch
	err := q.pool.QueryRow(ctx, `SELECT title, embedding <=> $1 AS distance
		FROM course_catalog
		ORDER BY distance
		LIMIT 1`, embedding).Scan(&m.Title, &m.Distance)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving course: %w", err)
	}
	return &m, nil
}

func (q *PGQuerier) SearchChunks(ctx context.Context, arg SearchChunksParams) ([]ChunkRow, error) {
	rows, err := q.pool.Query(ctx, `SELECT content, course_title, lesson_number, embedding <=> $1 AS distance
		FROM course_chunks
		WHERE ($2::text IS NULL OR course_title = $2)
		  AND ($3::int IS NULL OR lesson_number = $3)
		ORDER BY distance
		LIMIT $4`,
		arg.Embedding, arg.CourseTitle, arg.LessonNumber, arg.Limit)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}
	defer rows.Close()

	var out []ChunkRow
	for rows.Next() {
		var r ChunkRow
		if err := rows.Scan(&r.Content, &r.CourseTitle, &r.LessonNumber, &r.Distance); err != nil {
			return nil, fmt.Errorf("scanning chunk row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunk rows: %w", err)
	}
	return out, nil
}

func (q *PGQuerier) ListCourseTitles(ctx context.Context) ([]string, error) {
	rows, err := q.pool.Query(ctx, `SELECT title FROM course_catalog ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("listing course titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning title: %w", err)
		}
		titles = append(titles, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating titles: %w", err)
	}
	return titles, nil
}

func (q *PGQuerier) CourseByTitle(ctx context.Context, title string) (*CatalogRow, error) {
	var row CatalogRow
	var lessonsJSON []byte
	err := q.pool.QueryRow(ctx, `SELECT title, link, instructor, lessons
		FROM course_catalog WHERE title = $1`, title).
		Scan(&row.Title, &row.Link, &row.Instructor, &lessonsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching course %q: %w", title, err)
	}
	if err := json.Unmarshal(lessonsJSON, &row.Lessons); err != nil {
		return nil, fmt.Errorf("parsing lessons for %q: %w", title, err)
	}
	return &row, nil
}

func (q *PGQuerier) DeleteCourse(ctx context.Context, title string) error {
	if _, err := q.pool.Exec(ctx, `DELETE FROM course_catalog WHERE title = $1`, title); err != nil {
		return fmt.Errorf("deleting course %q: %w", title, err)
	}
	return nil
}

func (q *PGQuerier) Clear(ctx context.Context) error {
	// TRUNCATE both collections in one statement so a rebuild never
	// observes a half-cleared store.
	if _, err := q.pool.Exec(ctx, `TRUNCATE course_catalog, course_chunks`); err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}
	return nil
}
