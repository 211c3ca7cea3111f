package model

// Customer is a person who rents movies.
type Customer struct {
	ID        string `json:"id"`        // customers.id
	IsPremium bool   `json:"isPremium"` // customers.is_premium
	Name      string `json:"name"`      // customers.name
	Phone     string `json:"phone"`     // customers.phone (10 chars)
}

// Snapshot returns the copy of c embedded into a Rental.
func (c Customer) Snapshot() CustomerSnapshot {
	return CustomerSnapshot{ID: c.ID, Name: c.Name, Phone: c.Phone}
}

// CustomerSnapshot is the subset of a customer frozen into a rental.
type CustomerSnapshot struct {
	ID    string `json:"id"`    // rentals.customer_id
	Name  string `json:"name"`  // rentals.customer_name
	Phone string `json:"phone"` // rentals.customer_phone
}
