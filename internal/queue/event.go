// Package queue defines the rental events exchanged over RabbitMQ and the
// background consumer that records them.
package queue

// Routing keys, also used as queue names on the default exchange.
const (
	RentalCreatedQueue  = "rental.created"
	RentalReturnedQueue = "rental.returned"
)

// RentalEvent is published after a checkout or a return commits.  It carries
// enough of the rental for consumers to log or notify without querying the
// store.
type RentalEvent struct {
	Type            string   `json:"type"` // rental.created | rental.returned
	RentalID        string   `json:"rental_id"`
	CustomerID      string   `json:"customer_id"`
	CustomerName    string   `json:"customer_name"`
	MovieID         string   `json:"movie_id"`
	MovieTitle      string   `json:"movie_title"`
	DailyRentalRate float64  `json:"daily_rental_rate"`
	DateOut         string   `json:"date_out"`
	DateReturned    string   `json:"date_returned,omitempty"`
	RentalFee       *float64 `json:"rental_fee,omitempty"`
}
