package pgvector

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	json "github.com/goccy/go-json"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"cinechat/internal/domain"
)

var tableName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Storage keeps documents in a Postgres table with a pgvector column and
// ranks them by cosine distance.
type Storage struct {
	db        *sql.DB
	table     string
	dimension int
}

type Config struct {
	DSN   string
	Table string
}

// NewStorage opens the database. The connection is verified lazily by Init.
func NewStorage(cfg Config) (*Storage, error) {
	if !tableName.MatchString(cfg.Table) {
		return nil, errors.Errorf("invalid table name %q", cfg.Table)
	}
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open postgres")
	}
	return &Storage{db: db, table: cfg.Table}, nil
}

func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			body TEXT NOT NULL,
			metadata JSONB NOT NULL,
			embedding vector(%d) NOT NULL
		)`, s.table, dimension),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to initialize vector table")
		}
	}
	return nil
}

func (s *Storage) Upsert(ctx context.Context, docs []domain.IndexedDocument, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return errors.New("documents and vectors length mismatch")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin upsert")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, body, metadata, embedding)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET
			body = EXCLUDED.body,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding
	`, s.table))
	if err != nil {
		return errors.Wrap(err, "failed to prepare upsert")
	}
	defer stmt.Close()

	for i, d := range docs {
		meta, err := json.Marshal(d.Metadata)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, d.ID, d.Body, meta, pgvector.NewVector(vectors[i])); err != nil {
			return errors.Wrapf(err, "failed to upsert document %s", d.ID)
		}
	}
	return errors.Wrap(tx.Commit(), "failed to commit upsert")
}

func (s *Storage) Search(ctx context.Context, vector []float32, topK int, filter *domain.Filter) ([]domain.RetrievalResult, error) {
	if topK <= 0 {
		topK = 4
	}
	args := []any{pgvector.NewVector(vector)}
	where := "TRUE"
	if filter != nil {
		var err error
		where, err = Where(filter, &args)
		if err != nil {
			return nil, err
		}
	}
	args = append(args, topK)
	query := fmt.Sprintf(`
		SELECT id, body, metadata, 1 - (embedding <=> $1) AS score
		FROM %s
		WHERE %s
		ORDER BY embedding <=> $1
		LIMIT $%d
	`, s.table, where, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search vectors")
	}
	defer rows.Close()

	var results []domain.RetrievalResult
	for rows.Next() {
		var (
			r    domain.RetrievalResult
			meta []byte
		)
		if err := rows.Scan(&r.Document.ID, &r.Document.Body, &meta, &r.Score); err != nil {
			return nil, errors.Wrap(err, "failed to scan search result")
		}
		if err := json.Unmarshal(meta, &r.Document.Metadata); err != nil {
			return nil, errors.Wrap(err, "failed to decode metadata")
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *Storage) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT count(*) FROM %s`, s.table)).Scan(&n)
	return n, errors.Wrap(err, "failed to count documents")
}

// Clear drops the table so Init can recreate it with a new dimension.
func (s *Storage) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, s.table))
	return errors.Wrap(err, "failed to drop vector table")
}

func (s *Storage) Close() error { return s.db.Close() }
