package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/video-rental/internal/model"
)

var genreSortColumns = map[string]string{"name": "name"}

// GenreRepo persists genres in the `genres` table.
type GenreRepo struct {
	db *sql.DB
}

// NewGenreRepo constructs a GenreRepo with the provided DB handle.
func NewGenreRepo(db *sql.DB) *GenreRepo { return &GenreRepo{db: db} }

// List returns every genre, ordered by s (default: name).
func (r *GenreRepo) List(ctx context.Context, s Sort) ([]model.Genre, error) {
	q := "SELECT id, name FROM genres" + s.orderBy(genreSortColumns, "name ASC, id ASC")
	return withRetry(ctx, func() ([]model.Genre, error) {
		rows, err := r.db.QueryContext(ctx, q)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		out := []model.Genre{}
		for rows.Next() {
			var g model.Genre
			if err := rows.Scan(&g.ID, &g.Name); err != nil {
				return nil, err
			}
			out = append(out, g)
		}
		return out, rows.Err()
	})
}

// GetByID fetches a genre; ErrGenreNotFound when absent.
func (r *GenreRepo) GetByID(ctx context.Context, id string) (*model.Genre, error) {
	return withRetry(ctx, func() (*model.Genre, error) {
		return scanGenre(r.db.QueryRowContext(ctx, "SELECT id, name FROM genres WHERE id = ?", id))
	})
}

// Create inserts g; g.ID must already be set.
func (r *GenreRepo) Create(ctx context.Context, g *model.Genre) error {
	_, err := withWriteRetry(ctx, func() (sql.Result, error) {
		return r.db.ExecContext(ctx, "INSERT INTO genres (id, name) VALUES (?, ?)", g.ID, g.Name)
	})
	return err
}

// Update renames the genre.  Movies keep their old snapshot.
func (r *GenreRepo) Update(ctx context.Context, g *model.Genre) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := scanGenre(tx.QueryRowContext(ctx, "SELECT id, name FROM genres WHERE id = ? FOR UPDATE", g.ID)); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "UPDATE genres SET name = ? WHERE id = ?", g.Name, g.ID)
		return err
	})
}

// Delete removes the genre and returns what was removed.
func (r *GenreRepo) Delete(ctx context.Context, id string) (*model.Genre, error) {
	var deleted *model.Genre
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		g, err := scanGenre(tx.QueryRowContext(ctx, "SELECT id, name FROM genres WHERE id = ? FOR UPDATE", id))
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM genres WHERE id = ?", id); err != nil {
			return err
		}
		deleted = g
		return nil
	})
	return deleted, err
}

func scanGenre(row *sql.Row) (*model.Genre, error) {
	var g model.Genre
	if err := row.Scan(&g.ID, &g.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGenreNotFound
		}
		return nil, err
	}
	return &g, nil
}
