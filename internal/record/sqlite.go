package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmorgan81/artbot/internal/config"
	"github.com/dmorgan81/artbot/internal/log"
	"github.com/jmoiron/sqlx"
	"github.com/samber/do"
	"github.com/samber/lo"
	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS generations (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		prompt TEXT NOT NULL,
		image TEXT NOT NULL,
		model_latency INTEGER NOT NULL,
		model_id TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS generations_created_at ON generations (created_at DESC);`,
}

type row struct {
	ID           string `db:"id"`
	Type         string `db:"type"`
	Prompt       string `db:"prompt"`
	Image        string `db:"image"`
	ModelLatency int64  `db:"model_latency"`
	ModelID      string `db:"model_id"`
	CreatedAt    int64  `db:"created_at"`
}

func (r row) generation() Generation {
	return Generation{
		ID:           r.ID,
		Type:         r.Type,
		Prompt:       r.Prompt,
		Image:        r.Image,
		ModelLatency: r.ModelLatency,
		ModelID:      r.ModelID,
		CreatedAt:    time.UnixMilli(r.CreatedAt).UTC(),
	}
}

type SQLiteRecorder struct {
	db *sqlx.DB
}

func NewSQLiteRecorder(i *do.Injector) (Recorder, error) {
	s, err := OpenSQLite(do.MustInvoke[*config.Settings](i).SQLitePath)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func OpenSQLite(path string) (*SQLiteRecorder, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single writer avoids SQLITE_BUSY under concurrent requests
	db.SetMaxOpenConns(1)

	for _, query := range schema {
		if _, err := db.Exec(query); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}
	return &SQLiteRecorder{db: db}, nil
}

func (s *SQLiteRecorder) Record(ctx context.Context, g Generation) error {
	log.FromContextOrDiscard(ctx).WithGroup("sqlite").Info("writing generation record", "id", g.ID)

	_, err := s.db.NamedExecContext(ctx, `INSERT INTO generations
		(id, type, prompt, image, model_latency, model_id, created_at)
		VALUES (:id, :type, :prompt, :image, :model_latency, :model_id, :created_at)`,
		row{
			ID:           g.ID,
			Type:         g.Type,
			Prompt:       g.Prompt,
			Image:        g.Image,
			ModelLatency: g.ModelLatency,
			ModelID:      g.ModelID,
			CreatedAt:    g.CreatedAt.UnixMilli(),
		})
	return err
}

func (s *SQLiteRecorder) Lookup(ctx context.Context, id string) (Generation, error) {
	var r row
	err := s.db.GetContext(ctx, &r, `SELECT * FROM generations WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Generation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Generation{}, err
	}
	return r.generation(), nil
}

func (s *SQLiteRecorder) Recent(ctx context.Context, n int) ([]Generation, error) {
	if n <= 0 {
		return nil, nil
	}
	var rows []row
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM generations ORDER BY created_at DESC LIMIT ?`, n); err != nil {
		return nil, err
	}
	return lo.Map(rows, func(r row, _ int) Generation { return r.generation() }), nil
}

func (s *SQLiteRecorder) Shutdown() error {
	return s.db.Close()
}
