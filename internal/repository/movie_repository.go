package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/video-rental/internal/model"
)

var movieSortColumns = map[string]string{
	"title":           "title",
	"numberInStock":   "number_in_stock",
	"dailyRentalRate": "daily_rental_rate",
}

const movieColumns = "id, title, genre_id, genre_name, number_in_stock, daily_rental_rate"

// MovieRepo persists movies in the `movies` table.  The genre is stored as
// a denormalized (genre_id, genre_name) pair, not a foreign key: deleting or
// renaming a genre leaves existing movies untouched.
type MovieRepo struct {
	db *sql.DB
}

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

// List returns every movie, ordered by s (default: title).
func (r *MovieRepo) List(ctx context.Context, s Sort) ([]model.Movie, error) {
	q := "SELECT " + movieColumns + " FROM movies" + s.orderBy(movieSortColumns, "title ASC, id ASC")
	return withRetry(ctx, func() ([]model.Movie, error) {
		rows, err := r.db.QueryContext(ctx, q)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		out := []model.Movie{}
		for rows.Next() {
			var m model.Movie
			if err := rows.Scan(&m.ID, &m.Title, &m.Genre.ID, &m.Genre.Name, &m.NumberInStock, &m.DailyRentalRate); err != nil {
				return nil, err
			}
			out = append(out, m)
		}
		return out, rows.Err()
	})
}

func (r *MovieRepo) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	return withRetry(ctx, func() (*model.Movie, error) {
		return scanMovie(r.db.QueryRowContext(ctx, "SELECT "+movieColumns+" FROM movies WHERE id = ?", id))
	})
}

func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	_, err := withWriteRetry(ctx, func() (sql.Result, error) {
		return r.db.ExecContext(ctx,
			"INSERT INTO movies (id, title, genre_id, genre_name, number_in_stock, daily_rental_rate) VALUES (?, ?, ?, ?, ?, ?)",
			m.ID, m.Title, m.Genre.ID, m.Genre.Name, m.NumberInStock, m.DailyRentalRate)
	})
	return err
}

// Update overwrites title, genre snapshot, stock and rate.  Open rentals
// keep the rate they were checked out with.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := scanMovie(tx.QueryRowContext(ctx, "SELECT "+movieColumns+" FROM movies WHERE id = ? FOR UPDATE", m.ID)); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"UPDATE movies SET title = ?, genre_id = ?, genre_name = ?, number_in_stock = ?, daily_rental_rate = ? WHERE id = ?",
			m.Title, m.Genre.ID, m.Genre.Name, m.NumberInStock, m.DailyRentalRate, m.ID)
		return err
	})
}

func (r *MovieRepo) Delete(ctx context.Context, id string) (*model.Movie, error) {
	var deleted *model.Movie
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		m, err := scanMovie(tx.QueryRowContext(ctx, "SELECT "+movieColumns+" FROM movies WHERE id = ? FOR UPDATE", id))
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM movies WHERE id = ?", id); err != nil {
			return err
		}
		deleted = m
		return nil
	})
	return deleted, err
}

func scanMovie(row *sql.Row) (*model.Movie, error) {
	var m model.Movie
	if err := row.Scan(&m.ID, &m.Title, &m.Genre.ID, &m.Genre.Name, &m.NumberInStock, &m.DailyRentalRate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}
