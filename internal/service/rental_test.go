package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/video-rental/internal/model"
	"github.com/iliyamo/video-rental/internal/queue"
	"github.com/iliyamo/video-rental/internal/repository/memstore"
	"github.com/iliyamo/video-rental/internal/service"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordedEvent struct {
	key string
	ev  queue.RentalEvent
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *fakePublisher) Publish(_ context.Context, key string, ev queue.RentalEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{key: key, ev: ev})
	return nil
}

type rentalEnv struct {
	store    *memstore.Store
	svc      *service.RentalService
	clock    *fakeClock
	events   *fakePublisher
	movie    model.Movie
	customer model.Customer
}

func stores(st *memstore.Store) service.Stores {
	return service.Stores{
		Genres:    st.Genres(),
		Movies:    st.Movies(),
		Customers: st.Customers(),
		Rentals:   st.Rentals(),
		Users:     st.Users(),
	}
}

func newRentalEnv(t *testing.T, stock int, fee func(model.Rental, time.Time) float64) *rentalEnv {
	t.Helper()
	ctx := context.Background()
	st := memstore.New()
	movie := model.Movie{
		ID:              uuid.NewString(),
		Title:           "Alien",
		Genre:           model.GenreSnapshot{ID: uuid.NewString(), Name: "horror"},
		NumberInStock:   stock,
		DailyRentalRate: 2,
	}
	customer := model.Customer{ID: uuid.NewString(), Name: "Jane", Phone: "0123456789"}
	require.NoError(t, st.Movies().Create(ctx, &movie))
	require.NoError(t, st.Customers().Create(ctx, &customer))

	clock := &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	events := &fakePublisher{}
	svc := service.NewRentalService(stores(st), service.RentalConfig{
		Fee:          fee,
		StoreTimeout: time.Second,
		Events:       events,
		Log:          zerolog.Nop(),
		Clock:        clock.Now,
	})
	return &rentalEnv{store: st, svc: svc, clock: clock, events: events, movie: movie, customer: customer}
}

func (e *rentalEnv) stock(t *testing.T) int {
	t.Helper()
	m, err := e.store.Movies().GetByID(context.Background(), e.movie.ID)
	require.NoError(t, err)
	return m.NumberInStock
}

func requireKind(t *testing.T, err error, k service.Kind) *service.Error {
	t.Helper()
	require.Error(t, err)
	se, ok := err.(*service.Error)
	require.True(t, ok, "want *service.Error, got %T: %v", err, err)
	require.Equal(t, k, se.Kind, se.Error())
	return se
}

func TestCreateRentalDecrementsStock(t *testing.T) {
	env := newRentalEnv(t, 3, nil)

	rt, err := env.svc.Create(context.Background(), env.customer.ID, env.movie.ID)
	require.NoError(t, err)

	assert.True(t, rt.Open())
	assert.Nil(t, rt.RentalFee)
	assert.Equal(t, env.customer.Snapshot(), rt.Customer)
	assert.Equal(t, env.movie.Snapshot(), rt.Movie)
	assert.Equal(t, env.clock.Now(), rt.DateOut)
	assert.Equal(t, 2, env.stock(t))

	stored, err := env.svc.Get(context.Background(), rt.ID)
	require.NoError(t, err)
	assert.True(t, stored.Open())
}

func TestCreateRentalOutOfStockWritesNothing(t *testing.T) {
	env := newRentalEnv(t, 0, nil)

	_, err := env.svc.Create(context.Background(), env.customer.ID, env.movie.ID)
	requireKind(t, err, service.KindOutOfStock)

	all, err := env.svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Equal(t, 0, env.stock(t))
}

func TestCreateRentalValidatesIDs(t *testing.T) {
	env := newRentalEnv(t, 1, nil)

	_, err := env.svc.Create(context.Background(), "nope", "123")
	se := requireKind(t, err, service.KindValidation)
	assert.Contains(t, se.Fields, "customerId")
	assert.Contains(t, se.Fields, "movieId")
}

func TestCreateRentalUnknownEntities(t *testing.T) {
	env := newRentalEnv(t, 1, nil)

	_, err := env.svc.Create(context.Background(), env.customer.ID, uuid.NewString())
	se := requireKind(t, err, service.KindNotFound)
	assert.Equal(t, "movie", se.Resource)

	_, err = env.svc.Create(context.Background(), uuid.NewString(), env.movie.ID)
	se = requireKind(t, err, service.KindNotFound)
	assert.Equal(t, "customer", se.Resource)

	assert.Equal(t, 1, env.stock(t))
}

func TestConcurrentCreateOnLastUnit(t *testing.T) {
	env := newRentalEnv(t, 1, nil)
	const n = 32

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		ok, failed int
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := env.svc.Create(context.Background(), env.customer.ID, env.movie.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
				return
			}
			if service.IsKind(err, service.KindOutOfStock) {
				failed++
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, failed)
	assert.Equal(t, 0, env.stock(t))

	all, err := env.svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestReturnElapsedFee(t *testing.T) {
	env := newRentalEnv(t, 1, service.ElapsedFee)
	ctx := context.Background()

	out, err := env.svc.Create(ctx, env.customer.ID, env.movie.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, env.stock(t))

	env.clock.Advance(72 * time.Hour)
	rt, err := env.svc.ProcessReturn(ctx, env.customer.ID, env.movie.ID)
	require.NoError(t, err)

	require.NotNil(t, rt.DateReturned)
	assert.Equal(t, env.clock.Now(), *rt.DateReturned)
	require.NotNil(t, rt.RentalFee)
	elapsed := rt.DateReturned.Sub(out.DateOut).Milliseconds()
	assert.Equal(t, 2*float64(elapsed), *rt.RentalFee)
	assert.Equal(t, 1, env.stock(t))
}

func TestReturnDaysFee(t *testing.T) {
	cases := []struct {
		name    string
		elapsed time.Duration
		want    float64
	}{
		{"same day charges one day", time.Hour, 2},
		{"partial days are dropped", 3*24*time.Hour + 5*time.Hour, 6},
		{"exact days", 7 * 24 * time.Hour, 14},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newRentalEnv(t, 1, service.DaysFee)
			ctx := context.Background()
			_, err := env.svc.Create(ctx, env.customer.ID, env.movie.ID)
			require.NoError(t, err)

			env.clock.Advance(tc.elapsed)
			rt, err := env.svc.ProcessReturn(ctx, env.customer.ID, env.movie.ID)
			require.NoError(t, err)
			require.NotNil(t, rt.RentalFee)
			assert.Equal(t, tc.want, *rt.RentalFee)
		})
	}
}

func TestReturnTwiceFailsAlreadyReturned(t *testing.T) {
	env := newRentalEnv(t, 1, nil)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, env.customer.ID, env.movie.ID)
	require.NoError(t, err)
	first, err := env.svc.ProcessReturn(ctx, env.customer.ID, env.movie.ID)
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	_, err = env.svc.ProcessReturn(ctx, env.customer.ID, env.movie.ID)
	requireKind(t, err, service.KindAlreadyReturned)

	again, err := env.svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.DateReturned, again.DateReturned)
	assert.Equal(t, first.RentalFee, again.RentalFee)
	assert.Equal(t, 1, env.stock(t))
}

func TestReturnWithoutRental(t *testing.T) {
	env := newRentalEnv(t, 1, nil)

	_, err := env.svc.ProcessReturn(context.Background(), env.customer.ID, env.movie.ID)
	se := requireKind(t, err, service.KindNotFound)
	assert.Equal(t, "rental", se.Resource)

	_, err = env.svc.ProcessReturn(context.Background(), "bad", env.movie.ID)
	requireKind(t, err, service.KindValidation)
}

func TestReturnAfterMovieDeletedKeepsRentalOpen(t *testing.T) {
	env := newRentalEnv(t, 1, nil)
	ctx := context.Background()

	rt, err := env.svc.Create(ctx, env.customer.ID, env.movie.ID)
	require.NoError(t, err)
	_, err = env.store.Movies().Delete(ctx, env.movie.ID)
	require.NoError(t, err)

	_, err = env.svc.ProcessReturn(ctx, env.customer.ID, env.movie.ID)
	se := requireKind(t, err, service.KindNotFound)
	assert.Equal(t, "movie", se.Resource)

	stored, err := env.svc.Get(ctx, rt.ID)
	require.NoError(t, err)
	assert.True(t, stored.Open())
}

func TestReturnPrefersOpenRental(t *testing.T) {
	env := newRentalEnv(t, 2, nil)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, env.customer.ID, env.movie.ID)
	require.NoError(t, err)
	_, err = env.svc.ProcessReturn(ctx, env.customer.ID, env.movie.ID)
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	second, err := env.svc.Create(ctx, env.customer.ID, env.movie.ID)
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	rt, err := env.svc.ProcessReturn(ctx, env.customer.ID, env.movie.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, rt.ID)
	assert.Equal(t, 2, env.stock(t))
}

func TestRentalEventsArePublished(t *testing.T) {
	env := newRentalEnv(t, 1, nil)
	ctx := context.Background()

	rt, err := env.svc.Create(ctx, env.customer.ID, env.movie.ID)
	require.NoError(t, err)
	_, err = env.svc.ProcessReturn(ctx, env.customer.ID, env.movie.ID)
	require.NoError(t, err)
	env.svc.Wait()

	env.events.mu.Lock()
	defer env.events.mu.Unlock()
	require.Len(t, env.events.events, 2)
	keys := map[string]queue.RentalEvent{}
	for _, e := range env.events.events {
		keys[e.key] = e.ev
	}
	require.Contains(t, keys, queue.RentalCreatedQueue)
	require.Contains(t, keys, queue.RentalReturnedQueue)
	assert.Equal(t, rt.ID, keys[queue.RentalCreatedQueue].RentalID)
	assert.Nil(t, keys[queue.RentalCreatedQueue].RentalFee)
	assert.NotNil(t, keys[queue.RentalReturnedQueue].RentalFee)
	assert.NotEmpty(t, keys[queue.RentalReturnedQueue].DateReturned)
}

// slowMovies blocks every lookup until the caller's deadline passes.
type slowMovies struct {
	service.MovieStore
}

func (slowMovies) GetByID(ctx context.Context, _ string) (*model.Movie, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestStoreDeadlineIsStoreTimeout(t *testing.T) {
	st := memstore.New()
	s := stores(st)
	s.Movies = slowMovies{}
	svc := service.NewRentalService(s, service.RentalConfig{StoreTimeout: 20 * time.Millisecond, Log: zerolog.Nop()})

	_, err := svc.Create(context.Background(), uuid.NewString(), uuid.NewString())
	requireKind(t, err, service.KindStoreTimeout)
}

func TestFeeFor(t *testing.T) {
	_, err := service.FeeFor("weeks")
	assert.Error(t, err)

	out := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := model.Rental{Movie: model.MovieSnapshot{DailyRentalRate: 3}, DateOut: out}

	f, err := service.FeeFor("")
	require.NoError(t, err)
	assert.Equal(t, 3*1000.0, f(r, out.Add(time.Second)))

	f, err = service.FeeFor("days")
	require.NoError(t, err)
	assert.Equal(t, 6.0, f(r, out.Add(49*time.Hour)))
}
