package model

// Movie is a rentable title.  NumberInStock counts physical units on the
// shelf and never drops below zero; rentals decrement it and returns
// increment it.
type Movie struct {
	ID              string        `json:"id"`              // movies.id
	Title           string        `json:"title"`           // movies.title
	Genre           GenreSnapshot `json:"genre"`           // movies.genre_id / genre_name
	NumberInStock   int           `json:"numberInStock"`   // movies.number_in_stock
	DailyRentalRate float64       `json:"dailyRentalRate"` // movies.daily_rental_rate
}

// Snapshot returns the copy of m embedded into a Rental.
func (m Movie) Snapshot() MovieSnapshot {
	return MovieSnapshot{ID: m.ID, Title: m.Title, DailyRentalRate: m.DailyRentalRate}
}

// MovieSnapshot is the subset of a movie frozen into a rental at checkout.
type MovieSnapshot struct {
	ID              string  `json:"id"`              // rentals.movie_id
	Title           string  `json:"title"`           // rentals.movie_title
	DailyRentalRate float64 `json:"dailyRentalRate"` // rentals.movie_daily_rental_rate
}
