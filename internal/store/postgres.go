package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is the self-hosted backend: every document is one row in
// a single table with its fields in a jsonb column.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the documents table if it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		seq BIGSERIAL,
		fields JSONB NOT NULL DEFAULT '{}'::jsonb,
		PRIMARY KEY (collection, id)
	)
	`
	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure documents table: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	var sb strings.Builder
	sb.WriteString("SELECT id, fields FROM documents WHERE collection = $1")
	args := []any{collection}

	for _, f := range filters {
		if len(f.Values) == 1 {
			args = append(args, f.Field, f.Values[0])
			fmt.Fprintf(&sb, " AND fields->>$%d = $%d", len(args)-1, len(args))
		} else {
			args = append(args, f.Field, f.Values)
			fmt.Fprintf(&sb, " AND fields->>$%d = ANY($%d)", len(args)-1, len(args))
		}
	}

	sb.WriteString(" ORDER BY seq")

	rows, err := s.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		doc := Document{}
		if err := rows.Scan(&doc.ID, &doc.Fields); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", collection, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", collection, err)
	}
	return docs, nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	query := `SELECT fields FROM documents WHERE collection = $1 AND id = $2`

	doc := Document{ID: id}
	err := s.db.QueryRow(ctx, query, collection, id).Scan(&doc.Fields)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

func (s *PostgresStore) Create(ctx context.Context, collection, id string, fields map[string]any) (Document, error) {
	if id == "" {
		id = uuid.New().String()
	}

	query := `INSERT INTO documents (collection, id, fields) VALUES ($1, $2, $3)`
	if _, err := s.db.Exec(ctx, query, collection, id, fields); err != nil {
		return Document{}, fmt.Errorf("failed to create in %s: %w", collection, err)
	}
	return Document{ID: id, Fields: fields}, nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields map[string]any) (Document, error) {
	query := `
	UPDATE documents SET fields = fields || $3
	WHERE collection = $1 AND id = $2
	RETURNING fields
	`

	doc := Document{ID: id}
	err := s.db.QueryRow(ctx, query, collection, id, fields).Scan(&doc.Fields)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	query := `DELETE FROM documents WHERE collection = $1 AND id = $2`

	tag, err := s.db.Exec(ctx, query, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
