package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/video-rental/internal/model"
)

var customerSortColumns = map[string]string{"name": "name", "phone": "phone", "isPremium": "is_premium"}

const customerColumns = "id, is_premium, name, phone"

// CustomerRepo persists customers in the `customers` table.
type CustomerRepo struct {
	db *sql.DB
}

func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

// List returns every customer, ordered by s (default: name).
func (r *CustomerRepo) List(ctx context.Context, s Sort) ([]model.Customer, error) {
	q := "SELECT " + customerColumns + " FROM customers" + s.orderBy(customerSortColumns, "name ASC, id ASC")
	return withRetry(ctx, func() ([]model.Customer, error) {
		rows, err := r.db.QueryContext(ctx, q)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		out := []model.Customer{}
		for rows.Next() {
			var c model.Customer
			if err := rows.Scan(&c.ID, &c.IsPremium, &c.Name, &c.Phone); err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, rows.Err()
	})
}

func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	return withRetry(ctx, func() (*model.Customer, error) {
		return scanCustomer(r.db.QueryRowContext(ctx, "SELECT "+customerColumns+" FROM customers WHERE id = ?", id))
	})
}

func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	_, err := withWriteRetry(ctx, func() (sql.Result, error) {
		return r.db.ExecContext(ctx,
			"INSERT INTO customers (id, is_premium, name, phone) VALUES (?, ?, ?, ?)",
			c.ID, c.IsPremium, c.Name, c.Phone)
	})
	return err
}

// Update overwrites every mutable field.  Rentals keep their snapshot.
func (r *CustomerRepo) Update(ctx context.Context, c *model.Customer) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := scanCustomer(tx.QueryRowContext(ctx, "SELECT "+customerColumns+" FROM customers WHERE id = ? FOR UPDATE", c.ID)); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"UPDATE customers SET is_premium = ?, name = ?, phone = ? WHERE id = ?",
			c.IsPremium, c.Name, c.Phone, c.ID)
		return err
	})
}

func (r *CustomerRepo) Delete(ctx context.Context, id string) (*model.Customer, error) {
	var deleted *model.Customer
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		c, err := scanCustomer(tx.QueryRowContext(ctx, "SELECT "+customerColumns+" FROM customers WHERE id = ? FOR UPDATE", id))
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM customers WHERE id = ?", id); err != nil {
			return err
		}
		deleted = c
		return nil
	})
	return deleted, err
}

func scanCustomer(row *sql.Row) (*model.Customer, error) {
	var c model.Customer
	if err := row.Scan(&c.ID, &c.IsPremium, &c.Name, &c.Phone); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return &c, nil
}
