package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/aqlwizard/internal/wizard"
)

// SaveQuery inserts or replaces the saved query with the same name and
// returns the id it is stored under. Replacing keeps the existing id and
// increments the revision.
func (s *Store) SaveQuery(ctx context.Context, sq wizard.SavedQuery) (string, error) {
	if sq.ID == "" || sq.Name == "" {
		return "", fmt.Errorf("save query: id and name are required")
	}

	tags, err := marshalList("tags", sq.Tags)
	if err != nil {
		return "", fmt.Errorf("save query: %w", err)
	}
	fields, err := marshalList("fields", sq.Fields)
	if err != nil {
		return "", fmt.Errorf("save query: %w", err)
	}
	exprs, err := marshalExpressions(sq.Query.Expressions)
	if err != nil {
		return "", fmt.Errorf("save query: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("save query: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO saved_queries
		(id, name, description, tags, fields, private, always_cached, query, expressions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			description = excluded.description,
			tags = excluded.tags,
			fields = excluded.fields,
			private = excluded.private,
			always_cached = excluded.always_cached,
			query = excluded.query,
			expressions = excluded.expressions,
			revision = saved_queries.revision + 1
	`,
		sq.ID,
		sq.Name,
		sq.Description,
		tags,
		fields,
		sq.Private,
		sq.AlwaysCached,
		sq.Query.Query,
		exprs,
	)
	if err != nil {
		return "", fmt.Errorf("save query %q: %w", sq.Name, err)
	}

	var id string
	if err := tx.QueryRowContext(ctx, `SELECT id FROM saved_queries WHERE name = ?`, sq.Name).Scan(&id); err != nil {
		return "", fmt.Errorf("save query %q: read id: %w", sq.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("save query %q: commit: %w", sq.Name, err)
	}
	return id, nil
}

// DeleteQuery removes the saved query with the given id or name.
// Returns ErrNotFound if nothing matches.
func (s *Store) DeleteQuery(ctx context.Context, ref string) error {
	id, err := resolveID(ctx, s.db, ref)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM saved_queries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete query %q: %w", ref, err)
	}
	return nil
}

// resolveID finds the id of the saved query named by ref. An exact id
// match wins over a name match.
func resolveID(ctx context.Context, q queryer, ref string) (string, error) {
	var id string
	err := q.QueryRowContext(ctx, `
		SELECT id FROM saved_queries
		WHERE id = ? OR name = ? COLLATE NOCASE
		ORDER BY CASE WHEN id = ? THEN 0 ELSE 1 END, name COLLATE BINARY
		LIMIT 1
	`, ref, ref, ref).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, ref)
	}
	if err != nil {
		return "", fmt.Errorf("resolve query %q: %w", ref, err)
	}
	return id, nil
}
