package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/video-rental/internal/model"
)

// FeeFunc computes the fee for a rental closed at returned.
type FeeFunc func(r model.Rental, returned time.Time) float64

const rentalColumns = `id, customer_id, customer_name, customer_phone,
	movie_id, movie_title, movie_daily_rental_rate, date_out, date_returned, rental_fee`

// RentalRepo persists rentals and owns the two operations that move stock:
// Checkout and Return.  Each runs in a single transaction so a rental row
// and the stock counter can never disagree.
type RentalRepo struct {
	db *sql.DB
}

func NewRentalRepo(db *sql.DB) *RentalRepo { return &RentalRepo{db: db} }

// List returns every rental, most recent checkout first.
func (r *RentalRepo) List(ctx context.Context) ([]model.Rental, error) {
	return withRetry(ctx, func() ([]model.Rental, error) {
		rows, err := r.db.QueryContext(ctx, "SELECT "+rentalColumns+" FROM rentals ORDER BY date_out DESC, id ASC")
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		out := []model.Rental{}
		for rows.Next() {
			rt, err := scanRental(rows)
			if err != nil {
				return nil, err
			}
			out = append(out, *rt)
		}
		return out, rows.Err()
	})
}

// GetByID fetches a rental; ErrRentalNotFound when absent.
func (r *RentalRepo) GetByID(ctx context.Context, id string) (*model.Rental, error) {
	return withRetry(ctx, func() (*model.Rental, error) {
		rt, err := scanRental(r.db.QueryRowContext(ctx, "SELECT "+rentalColumns+" FROM rentals WHERE id = ?", id))
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRentalNotFound
		}
		return rt, err
	})
}

// Checkout takes one unit of rt.Movie out of stock and records rt.  The
// decrement is conditional (number_in_stock > 0), so concurrent checkouts of
// the last unit cannot both succeed.  On ErrOutOfStock or ErrMovieNotFound
// nothing is written.
func (r *RentalRepo) Checkout(ctx context.Context, rt *model.Rental) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE movies SET number_in_stock = number_in_stock - 1 WHERE id = ? AND number_in_stock > 0",
			rt.Movie.ID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			var one int
			err := tx.QueryRowContext(ctx, "SELECT 1 FROM movies WHERE id = ?", rt.Movie.ID).Scan(&one)
			if errors.Is(err, sql.ErrNoRows) {
				return ErrMovieNotFound
			}
			if err != nil {
				return err
			}
			return ErrOutOfStock
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO rentals (id, customer_id, customer_name, customer_phone,
				movie_id, movie_title, movie_daily_rental_rate, date_out)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rt.ID, rt.Customer.ID, rt.Customer.Name, rt.Customer.Phone,
			rt.Movie.ID, rt.Movie.Title, rt.Movie.DailyRentalRate, rt.DateOut)
		return err
	})
}

// Return closes the customer's most recent open rental of the movie and puts
// the unit back in stock.  When only closed rentals exist for the pair it
// returns ErrAlreadyReturned; when none exist, ErrRentalNotFound.  If the
// movie row is gone the transaction is rolled back and the rental stays
// open (ErrMovieNotFound).
func (r *RentalRepo) Return(ctx context.Context, customerID, movieID string, at time.Time, fee FeeFunc) (*model.Rental, error) {
	var closed *model.Rental
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		rt, err := scanRental(tx.QueryRowContext(ctx,
			"SELECT "+rentalColumns+` FROM rentals
			 WHERE customer_id = ? AND movie_id = ?
			 ORDER BY date_returned IS NULL DESC, date_out DESC
			 LIMIT 1 FOR UPDATE`,
			customerID, movieID))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRentalNotFound
		}
		if err != nil {
			return err
		}
		if !rt.Open() {
			return ErrAlreadyReturned
		}

		returned := at.UTC()
		amount := fee(*rt, returned)
		res, err := tx.ExecContext(ctx,
			"UPDATE rentals SET date_returned = ?, rental_fee = ? WHERE id = ? AND date_returned IS NULL",
			returned, amount, rt.ID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrAlreadyReturned
		}

		res, err = tx.ExecContext(ctx,
			"UPDATE movies SET number_in_stock = number_in_stock + 1 WHERE id = ?", rt.Movie.ID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrMovieNotFound
		}

		rt.DateReturned = &returned
		rt.RentalFee = &amount
		closed = rt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRental(row rowScanner) (*model.Rental, error) {
	var (
		rt       model.Rental
		returned sql.NullTime
		fee      sql.NullFloat64
	)
	if err := row.Scan(
		&rt.ID, &rt.Customer.ID, &rt.Customer.Name, &rt.Customer.Phone,
		&rt.Movie.ID, &rt.Movie.Title, &rt.Movie.DailyRentalRate,
		&rt.DateOut, &returned, &fee,
	); err != nil {
		return nil, err
	}
	if returned.Valid {
		t := returned.Time
		rt.DateReturned = &t
	}
	if fee.Valid {
		f := fee.Float64
		rt.RentalFee = &f
	}
	return &rt, nil
}
