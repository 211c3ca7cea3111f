package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iliyamo/video-rental/internal/config"
	"github.com/iliyamo/video-rental/internal/model"
	"github.com/iliyamo/video-rental/internal/queue"
	"github.com/iliyamo/video-rental/internal/repository"
	"github.com/iliyamo/video-rental/internal/validator"
)

// ElapsedFee charges the daily rate for every elapsed millisecond between
// checkout and return.  This is the historical behaviour of the API and
// stays the default so existing fee figures remain comparable.
func ElapsedFee(r model.Rental, returned time.Time) float64 {
	ms := returned.Sub(r.DateOut).Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return r.Movie.DailyRentalRate * float64(ms)
}

// DaysFee charges the daily rate per whole day elapsed, with a one-day
// minimum.
func DaysFee(r model.Rental, returned time.Time) float64 {
	days := int64(returned.Sub(r.DateOut) / (24 * time.Hour))
	if days < 1 {
		days = 1
	}
	return r.Movie.DailyRentalRate * float64(days)
}

// FeeFor returns the fee function for a RENTAL_FEE_MODE value.
func FeeFor(mode string) (repository.FeeFunc, error) {
	switch mode {
	case "", config.FeeModeElapsed:
		return ElapsedFee, nil
	case config.FeeModeDays:
		return DaysFee, nil
	}
	return nil, fmt.Errorf("unknown fee mode %q", mode)
}

// RentalConfig carries the optional collaborators of a RentalService.
type RentalConfig struct {
	Fee          repository.FeeFunc // defaults to ElapsedFee
	StoreTimeout time.Duration
	Events       EventPublisher // nil disables events
	Metrics      *Metrics       // nil disables metrics
	Log          zerolog.Logger
	Clock        func() time.Time // defaults to time.Now
}

// RentalService runs the checkout and return lifecycle.
type RentalService struct {
	movies    MovieStore
	customers CustomerStore
	rentals   RentalStore

	fee     repository.FeeFunc
	timeout time.Duration
	events  EventPublisher
	metrics *Metrics
	log     zerolog.Logger
	now     func() time.Time

	wg sync.WaitGroup // in-flight event publications
}

func NewRentalService(st Stores, cfg RentalConfig) *RentalService {
	s := &RentalService{
		movies:    st.Movies,
		customers: st.Customers,
		rentals:   st.Rentals,
		fee:       cfg.Fee,
		timeout:   cfg.StoreTimeout,
		events:    cfg.Events,
		metrics:   cfg.Metrics,
		log:       cfg.Log,
		now:       cfg.Clock,
	}
	if s.fee == nil {
		s.fee = ElapsedFee
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Create checks a movie out to a customer.  The rental row and the stock
// decrement are written together by RentalStore.Checkout, which refuses to
// take the last unit twice.
func (s *RentalService) Create(ctx context.Context, customerID, movieID string) (rt *model.Rental, err error) {
	defer func() { s.metrics.rejectedOp("create", err) }()

	if err := validatePair(customerID, movieID); err != nil {
		return nil, err
	}

	movie, err := callStore(ctx, s.timeout, func(ctx context.Context) (*model.Movie, error) {
		return s.movies.GetByID(ctx, movieID)
	})
	if err != nil {
		return nil, err
	}
	customer, err := callStore(ctx, s.timeout, func(ctx context.Context) (*model.Customer, error) {
		return s.customers.GetByID(ctx, customerID)
	})
	if err != nil {
		return nil, err
	}
	if movie.NumberInStock <= 0 {
		return nil, OutOfStock()
	}

	rental := &model.Rental{
		ID:       uuid.NewString(),
		Customer: customer.Snapshot(),
		Movie:    movie.Snapshot(),
		DateOut:  s.now().UTC().Truncate(time.Millisecond),
	}
	if err := execStore(ctx, s.timeout, func(ctx context.Context) error {
		return s.rentals.Checkout(ctx, rental)
	}); err != nil {
		return nil, err
	}

	s.metrics.rentalCreated()
	s.log.Info().Str("rental_id", rental.ID).Str("movie_id", movieID).Str("customer_id", customerID).Msg("rental created")
	s.publish(queue.RentalCreatedQueue, *rental)
	return rental, nil
}

// ProcessReturn closes the customer's open rental of the movie, charges the
// fee and puts the unit back in stock, all in one store operation.
func (s *RentalService) ProcessReturn(ctx context.Context, customerID, movieID string) (rt *model.Rental, err error) {
	defer func() { s.metrics.rejectedOp("return", err) }()

	if err := validatePair(customerID, movieID); err != nil {
		return nil, err
	}

	at := s.now().UTC().Truncate(time.Millisecond)
	rental, err := callStore(ctx, s.timeout, func(ctx context.Context) (*model.Rental, error) {
		return s.rentals.Return(ctx, customerID, movieID, at, s.fee)
	})
	if err != nil {
		return nil, err
	}

	var fee float64
	if rental.RentalFee != nil {
		fee = *rental.RentalFee
	}
	s.metrics.rentalReturned(fee)
	s.log.Info().Str("rental_id", rental.ID).Float64("fee", fee).Msg("rental returned")
	s.publish(queue.RentalReturnedQueue, *rental)
	return rental, nil
}

// List returns every rental, newest checkout first.
func (s *RentalService) List(ctx context.Context) ([]model.Rental, error) {
	return callStore(ctx, s.timeout, s.rentals.List)
}

// Get returns one rental.
func (s *RentalService) Get(ctx context.Context, id string) (*model.Rental, error) {
	if !validator.IsID(id) {
		return nil, InvalidID("id")
	}
	return callStore(ctx, s.timeout, func(ctx context.Context) (*model.Rental, error) {
		return s.rentals.GetByID(ctx, id)
	})
}

// Wait blocks until queued event publications have finished.
func (s *RentalService) Wait() { s.wg.Wait() }

func (s *RentalService) publish(key string, rt model.Rental) {
	if s.events == nil {
		return
	}
	ev := queue.RentalEvent{
		Type:            key,
		RentalID:        rt.ID,
		CustomerID:      rt.Customer.ID,
		CustomerName:    rt.Customer.Name,
		MovieID:         rt.Movie.ID,
		MovieTitle:      rt.Movie.Title,
		DailyRentalRate: rt.Movie.DailyRentalRate,
		DateOut:         rt.DateOut.Format(time.RFC3339Nano),
		RentalFee:       rt.RentalFee,
	}
	if rt.DateReturned != nil {
		ev.DateReturned = rt.DateReturned.Format(time.RFC3339Nano)
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.events.Publish(ctx, key, ev); err != nil {
			s.log.Warn().Err(err).Str("queue", key).Str("rental_id", ev.RentalID).Msg("publish rental event failed")
		}
	}()
}

func validatePair(customerID, movieID string) error {
	v := validator.New()
	v.Check(validator.IsID(customerID), "customerId", "must be a valid id")
	v.Check(validator.IsID(movieID), "movieId", "must be a valid id")
	if !v.Valid() {
		return Validation(v.Errors)
	}
	return nil
}
