// Package rag wires retrieval, generation, tools and sessions into
// the query and ingestion entry points.
package rag

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/coursepilot/coursepilot/internal/course"
	"github.com/coursepilot/coursepilot/internal/docproc"
	"github.com/coursepilot/coursepilot/internal/generate"
	"github.com/coursepilot/coursepilot/internal/session"
	"github.com/coursepilot/coursepilot/internal/tools"
)

// Store is the retrieval surface the orchestrator needs.
type Store interface {
	tools.ContentSearcher
	tools.OutlineFetcher
	AddCourse(ctx context.Context, crs *course.Course, chunks []course.Chunk) error
	ExistingCourseTitles(ctx context.Context) ([]string, error)
	CountCourses(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// Generator produces an answer for a query, optionally driving tools.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, history, query string, tools generate.ToolRunner) (string, error)
}

// QueryResult is one answered query with its source attributions.
type QueryResult struct {
	Answer    string         `json:"answer"`
	Sources   []tools.Source `json:"sources"`
	SessionID string         `json:"session_id"`
}

// IngestStats summarizes one ingestion run.
type IngestStats struct {
	Courses int `json:"courses"`
	Chunks  int `json:"chunks"`
}

// CourseAnalytics describes the current catalog.
type CourseAnalytics struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

// Orchestrator answers queries against the ingested course corpus.
type Orchestrator struct {
	store      Store
	engine     Generator
	sessions   *session.Store
	chunker    *docproc.Chunker
	extractors []docproc.Extractor
	logger     *slog.Logger
}

// New creates an Orchestrator.
func New(store Store, engine Generator, sessions *session.Store, chunker *docproc.Chunker, logger *slog.Logger) (*Orchestrator, error) {
	if store == nil || engine == nil || sessions == nil || chunker == nil {
		return nil, fmt.Errorf("store, engine, sessions and chunker are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:      store,
		engine:     engine,
		sessions:   sessions,
		chunker:    chunker,
		extractors: []docproc.Extractor{docproc.TextExtractor{}},
		logger:     logger,
	}, nil
}

// Query answers one user query. An empty sessionID starts a new
// session; the returned SessionID continues it. Each call gets its own
// tool registry, so sources belong to exactly this call and are
// drained exactly once.
func (o *Orchestrator) Query(ctx context.Context, text, sessionID string) (*QueryResult, error) {
	if text == "" {
		return nil, fmt.Errorf("query text is required")
	}
	if sessionID == "" {
		sessionID = o.sessions.NewSessionID()
	}

	registry := tools.NewRegistry(o.logger)
	if err := registry.Register(tools.NewSearchTool(o.store, o.logger)); err != nil {
		return nil, err
	}
	if err := registry.Register(tools.NewOutlineTool(o.store)); err != nil {
		return nil, err
	}

	history := o.sessions.FormattedHistory(sessionID)
	answer, err := o.engine.Generate(ctx, systemPrompt, history, text, registry)
	if err != nil {
		return nil, fmt.Errorf("answer query: %w", err)
	}

	sources := registry.DrainSources()
	o.sessions.AddExchange(sessionID, text, answer)
	o.logger.Debug("query answered", "session", sessionID, "sources", len(sources))

	return &QueryResult{Answer: answer, Sources: sources, SessionID: sessionID}, nil
}

// Ingest loads every supported document under folder into the store.
// Courses already in the catalog are skipped unless rebuild is set, in
// which case the store is cleared first. A malformed document fails the
// run rather than being silently skipped.
func (o *Orchestrator) Ingest(ctx context.Context, folder string, rebuild bool) (*IngestStats, error) {
	if rebuild {
		if err := o.store.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clear store: %w", err)
		}
	}

	existing, err := o.store.ExistingCourseTitles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list existing courses: %w", err)
	}

	stats := &IngestStats{}
	err = filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := o.extractorFor(path)
		if ext == nil {
			return nil
		}

		r, err := ext.Extract(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		crs, chunks, err := o.chunker.Process(r, filepath.Base(path))
		closeErr := r.Close()
		if err != nil {
			return fmt.Errorf("process %s: %w", path, err)
		}
		if closeErr != nil {
			return fmt.Errorf("close %s: %w", path, closeErr)
		}

		if slices.Contains(existing, crs.Title) {
			o.logger.Debug("course already ingested", "title", crs.Title)
			return nil
		}
		if err := o.store.AddCourse(ctx, crs, chunks); err != nil {
			return fmt.Errorf("add course %q: %w", crs.Title, err)
		}
		existing = append(existing, crs.Title)
		stats.Courses++
		stats.Chunks += len(chunks)
		o.logger.Info("ingested course", "title", crs.Title, "chunks", len(chunks))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (o *Orchestrator) extractorFor(path string) docproc.Extractor {
	for _, ext := range o.extractors {
		if ext.Supports(path) {
			return ext
		}
	}
	return nil
}

// Analytics reports what is currently in the catalog.
func (o *Orchestrator) Analytics(ctx context.Context) (*CourseAnalytics, error) {
	titles, err := o.store.ExistingCourseTitles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return &CourseAnalytics{TotalCourses: len(titles), CourseTitles: titles}, nil
}
