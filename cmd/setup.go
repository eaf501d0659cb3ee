package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coursepilot/coursepilot/db"
	"github.com/coursepilot/coursepilot/internal/config"
	"github.com/coursepilot/coursepilot/internal/docproc"
	"github.com/coursepilot/coursepilot/internal/generate"
	"github.com/coursepilot/coursepilot/internal/log"
	"github.com/coursepilot/coursepilot/internal/provider/gemini"
	"github.com/coursepilot/coursepilot/internal/rag"
	"github.com/coursepilot/coursepilot/internal/session"
	"github.com/coursepilot/coursepilot/internal/vectorstore"
)

// app holds the wired application and its owned resources.
type app struct {
	cfg    *config.Config
	pool   *pgxpool.Pool
	orch   *rag.Orchestrator
	logger *slog.Logger
}

// newApp loads configuration, migrates the schema and wires every
// component. Callers must Close the returned app.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level})

	connStr := cfg.ConnString()
	if err := db.Migrate(connStr, logger); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	client, err := gemini.New(ctx, gemini.Config{
		APIKey:         os.Getenv("GEMINI_API_KEY"),
		Model:          cfg.GenerationModel,
		EmbedderModel:  cfg.EmbedderModel,
		Temperature:    cfg.Temperature,
		MaxTokens:      int32(cfg.MaxTokens),
		EmbedDimension: vectorstore.VectorDimension,
	}, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	store, err := vectorstore.New(
		vectorstore.NewPGQuerier(pool),
		client,
		cfg.MaxResults,
		vectorstore.Options{MaxMatchDistance: cfg.CourseMatchMaxDistance},
		logger,
	)
	if err != nil {
		pool.Close()
		return nil, err
	}

	engine, err := generate.New(client, nil, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	sessions, err := session.NewStore(cfg.MaxHistory)
	if err != nil {
		pool.Close()
		return nil, err
	}

	chunker, err := docproc.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	orch, err := rag.New(store, engine, sessions, chunker, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &app{cfg: cfg, pool: pool, orch: orch, logger: logger}, nil
}

func (a *app) Close() {
	a.pool.Close()
}
