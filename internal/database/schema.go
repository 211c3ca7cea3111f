package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the five collections.  Snapshots (movie.genre_*,
// rental.customer_* and rental.movie_*) are plain columns with no foreign
// keys: they are copies, not references.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36)     NOT NULL PRIMARY KEY,
		name          VARCHAR(50)  NOT NULL,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		is_admin      BOOLEAN      NOT NULL DEFAULT FALSE,
		created_at    DATETIME(3)  NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS genres (
		id   CHAR(36)    NOT NULL PRIMARY KEY,
		name VARCHAR(50) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS movies (
		id                CHAR(36)     NOT NULL PRIMARY KEY,
		title             VARCHAR(100) NOT NULL,
		genre_id          CHAR(36)     NOT NULL,
		genre_name        VARCHAR(50)  NOT NULL,
		number_in_stock   INT UNSIGNED NOT NULL,
		daily_rental_rate DOUBLE       NOT NULL,
		KEY idx_movies_title (title)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS customers (
		id         CHAR(36)    NOT NULL PRIMARY KEY,
		is_premium BOOLEAN     NOT NULL,
		name       VARCHAR(30) NOT NULL,
		phone      CHAR(10)    NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS rentals (
		id                      CHAR(36)     NOT NULL PRIMARY KEY,
		customer_id             CHAR(36)     NOT NULL,
		customer_name           VARCHAR(30)  NOT NULL,
		customer_phone          CHAR(10)     NOT NULL,
		movie_id                CHAR(36)     NOT NULL,
		movie_title             VARCHAR(100) NOT NULL,
		movie_daily_rental_rate DOUBLE       NOT NULL,
		date_out                DATETIME(3)  NOT NULL,
		date_returned           DATETIME(3)  NULL,
		rental_fee              DOUBLE       NULL,
		KEY idx_rentals_pair (customer_id, movie_id, date_returned),
		KEY idx_rentals_date_out (date_out)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the schema.  Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
