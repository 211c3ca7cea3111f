package model

import "time"

// Rental records one movie unit lent to one customer.  It is open while
// DateReturned is nil and becomes terminal once a return stamps
// DateReturned and RentalFee; nothing mutates it afterwards.
//
// Fields:
//  ID           – UUID string.
//  Customer     – customer snapshot taken at checkout.
//  Movie        – movie snapshot taken at checkout (carries the rate).
//  DateOut      – checkout time.
//  DateReturned – return time, nil while open.
//  RentalFee    – computed at return, nil while open.
type Rental struct {
	ID           string           `json:"id"`
	Customer     CustomerSnapshot `json:"customer"`
	Movie        MovieSnapshot    `json:"movie"`
	DateOut      time.Time        `json:"dateOut"`
	DateReturned *time.Time       `json:"dateReturned"`
	RentalFee    *float64         `json:"rentalFee"`
}

// Open reports whether the rental has not been returned yet.
func (r Rental) Open() bool { return r.DateReturned == nil }
