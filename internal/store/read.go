package store

import (
	"context"
	"fmt"

	"github.com/roach88/aqlwizard/internal/wizard"
)

// Record is a stored saved query.
type Record struct {
	wizard.SavedQuery

	// Revision starts at 1 and increments every time the name is saved again.
	Revision int `json:"revision"`
}

const selectColumns = `
	SELECT id, name, description, tags, fields, private, always_cached, query, expressions, revision
	FROM saved_queries
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		r                   Record
		tags, fields, exprs string
	)
	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.Description,
		&tags,
		&fields,
		&r.Private,
		&r.AlwaysCached,
		&r.Query.Query,
		&exprs,
		&r.Revision,
	)
	if err != nil {
		return Record{}, fmt.Errorf("scan saved query: %w", err)
	}

	if r.Tags, err = unmarshalList("tags", tags); err != nil {
		return Record{}, err
	}
	if r.Fields, err = unmarshalList("fields", fields); err != nil {
		return Record{}, err
	}
	if r.Query.Expressions, err = unmarshalExpressions(exprs); err != nil {
		return Record{}, err
	}
	return r, nil
}

// GetQuery returns the saved query with the given id or name.
// Returns ErrNotFound if nothing matches.
func (s *Store) GetQuery(ctx context.Context, ref string) (Record, error) {
	id, err := resolveID(ctx, s.db, ref)
	if err != nil {
		return Record{}, err
	}
	return scanRecord(s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
}

// ListQueries returns every saved query ordered by name.
// Returns an empty slice (not nil) if the store is empty.
func (s *Store) ListQueries(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY name COLLATE NOCASE ASC, id COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("query saved queries: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saved queries: %w", err)
	}
	return records, nil
}
