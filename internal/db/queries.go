package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/promptbase/internal/errors"
	"github.com/hpungsan/promptbase/internal/prompt"
	"github.com/hpungsan/promptbase/internal/query"
)

var columnList = strings.Join(prompt.Columns, ", ")

// Insert stores a new prompt and sets p.ID to the assigned id.
// CreatedAt and UpdatedAt are written as given.
func (s *Store) Insert(ctx context.Context, p *prompt.Prompt) error {
	q := s.dialect.Rebind(`
		INSERT INTO prompts (title, body, is_favorite, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)

	err := s.db.QueryRowContext(ctx, q,
		p.Title, p.Body, p.IsFavorite, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return errors.NewInternal(err)
	}

	s.log.Info("prompt created", zap.Int64("id", p.ID), zap.Bool("favorite", p.IsFavorite))
	return nil
}

// GetByID retrieves a prompt by id.
func (s *Store) GetByID(ctx context.Context, id int64) (*prompt.Prompt, error) {
	q := s.dialect.Rebind(`SELECT ` + columnList + ` FROM prompts WHERE id = ?`)

	p, err := scanPrompt(s.db.QueryRowContext(ctx, q, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return p, nil
}

// UpdateContent replaces title and body and bumps updated_at.
// Does NOT change: id, created_at, is_favorite
func (s *Store) UpdateContent(ctx context.Context, id int64, title, body string, now int64) (*prompt.Prompt, error) {
	q := s.dialect.Rebind(`
		UPDATE prompts SET title = ?, body = ?, updated_at = ?
		WHERE id = ?
		RETURNING ` + columnList)

	p, err := s.mutateOne(ctx, id, q, title, body, now, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("prompt updated", zap.Int64("id", id))
	return p, nil
}

// SetFavorite sets is_favorite to value.
func (s *Store) SetFavorite(ctx context.Context, id int64, value bool, now int64) (*prompt.Prompt, error) {
	q := s.dialect.Rebind(`
		UPDATE prompts SET is_favorite = ?, updated_at = ?
		WHERE id = ?
		RETURNING ` + columnList)

	p, err := s.mutateOne(ctx, id, q, value, now, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("prompt favorite set", zap.Int64("id", id), zap.Bool("favorite", p.IsFavorite))
	return p, nil
}

// ToggleFavorite flips is_favorite in a single statement.
func (s *Store) ToggleFavorite(ctx context.Context, id int64, now int64) (*prompt.Prompt, error) {
	flip := "NOT is_favorite"
	if s.dialect == query.DialectSQLite {
		flip = "1 - is_favorite"
	}
	q := s.dialect.Rebind(`
		UPDATE prompts SET is_favorite = ` + flip + `, updated_at = ?
		WHERE id = ?
		RETURNING ` + columnList)

	p, err := s.mutateOne(ctx, id, q, now, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("prompt favorite toggled", zap.Int64("id", id), zap.Bool("favorite", p.IsFavorite))
	return p, nil
}

// Delete removes a prompt permanently.
func (s *Store) Delete(ctx context.Context, id int64) error {
	q := s.dialect.Rebind(`DELETE FROM prompts WHERE id = ?`)

	result, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}

	s.log.Info("prompt deleted", zap.Int64("id", id))
	return nil
}

// Query runs a read built by the query package, one page at a time.
func (s *Store) Query(ctx context.Context, spec *query.QuerySpec, limit, offset int) ([]prompt.Prompt, error) {
	q, args := spec.PageSQL(s.dialect, prompt.Table, prompt.Columns, limit, offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	items := make([]prompt.Prompt, 0)
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return items, nil
}

// Count returns how many prompts match the QuerySpec predicate.
func (s *Store) Count(ctx context.Context, spec *query.QuerySpec) (int, error) {
	q, args := spec.CountSQL(s.dialect, prompt.Table)

	var n int
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// StreamAll calls fn for every prompt in id order. Stops at the first error fn returns.
func (s *Store) StreamAll(ctx context.Context, fn func(*prompt.Prompt) error) error {
	rows, err := s.db.QueryContext(ctx, `SELECT `+columnList+` FROM prompts ORDER BY id ASC`)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return errors.NewInternal(err)
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// mutateOne runs an UPDATE ... RETURNING for a single id.
func (s *Store) mutateOne(ctx context.Context, id int64, q string, args ...any) (*prompt.Prompt, error) {
	p, err := scanPrompt(s.db.QueryRowContext(ctx, q, args...))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanPrompt scans one row in prompt.Columns order.
func scanPrompt(row scanner) (*prompt.Prompt, error) {
	var p prompt.Prompt
	err := row.Scan(&p.ID, &p.Title, &p.Body, &p.IsFavorite, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
