package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ZSabina88/Serverless-API-Cognito-Integration/config"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/database"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchedulerConfig(strategy Strategy) SchedulerConfig {
	return SchedulerConfig{
		Strategy:    strategy,
		MaxAttempts: 3,
		BackoffBase: time.Millisecond,
		Timeout:     5 * time.Second,
	}
}

// newTestScheduler returns a scheduler over a memory store with table
// number 5 registered.
func newTestScheduler(t *testing.T, strategy Strategy, opts ...SchedulerOption) (*ReservationScheduler, *database.MemoryStore) {
	t.Helper()
	store := database.NewMemoryStore()
	return newSchedulerOver(t, strategy, store, opts...), store
}

type bookingStore interface {
	TableStore
	ReservationStore
}

func newSchedulerOver(t *testing.T, strategy Strategy, store bookingStore, opts ...SchedulerOption) *ReservationScheduler {
	t.Helper()
	registry := NewTableRegistry(store, nil)
	_, err := registry.Create(context.Background(), models.Table{ID: 1, Number: 5, Places: 4})
	require.NoError(t, err)
	return NewReservationScheduler(registry, store, testSchedulerConfig(strategy), opts...)
}

// newGormStore opens a file backed SQLite database the way the server does.
func newGormStore(t *testing.T) *database.GormStore {
	t.Helper()
	db, err := config.InitDB(&config.Config{
		DBDriver: config.DriverSQLite,
		DBDSN:    filepath.Join(t.TempDir(), "book.db"),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return database.NewGormStore(db)
}

func booking(table int64, date, start, end string) BookingRequest {
	return BookingRequest{
		TableNumber:   table,
		ClientName:    "A",
		PhoneNumber:   "+100",
		Date:          date,
		SlotTimeStart: start,
		SlotTimeEnd:   end,
	}
}

var strategies = []Strategy{StrategyOptimistic, StrategySerialized}

func TestBookScenario(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(string(strategy), func(t *testing.T) {
			ctx := context.Background()
			s, _ := newTestScheduler(t, strategy)

			id, err := s.Book(ctx, booking(5, "2024-05-01", "18:00", "19:00"))
			require.NoError(t, err)
			assert.Len(t, id, 36)

			_, err = s.Book(ctx, booking(5, "2024-05-01", "18:30", "19:30"))
			assert.ErrorIs(t, err, ErrSlotConflict)

			// Touching endpoints conflict.
			_, err = s.Book(ctx, booking(5, "2024-05-01", "19:00", "20:00"))
			assert.ErrorIs(t, err, ErrSlotConflict)

			_, err = s.Book(ctx, booking(5, "2024-05-01", "19:01", "20:00"))
			assert.NoError(t, err)

			_, err = s.Book(ctx, booking(5, "2024-05-02", "18:00", "19:00"))
			assert.NoError(t, err)

			_, err = s.Book(ctx, booking(99, "2024-05-01", "10:00", "11:00"))
			assert.ErrorIs(t, err, ErrTableNotFound)

			_, err = s.Book(ctx, booking(5, "2024-05-03", "20:00", "19:00"))
			assert.ErrorIs(t, err, ErrInvalidInterval)

			all, err := s.ListAll(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 3)
		})
	}
}

func TestBookCheckOrder(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestScheduler(t, StrategyOptimistic)

	// Unknown table wins over an inverted interval.
	_, err := s.Book(ctx, booking(99, "2024-05-01", "20:00", "19:00"))
	assert.ErrorIs(t, err, ErrTableNotFound)

	_, err = s.Book(ctx, booking(5, "2024-05-01", "18:00", "19:00"))
	require.NoError(t, err)

	// Inverted interval wins over an overlap.
	_, err = s.Book(ctx, booking(5, "2024-05-01", "18:45", "18:15"))
	assert.ErrorIs(t, err, ErrInvalidInterval)

	// Zero-length interval is rejected.
	_, err = s.Book(ctx, booking(5, "2024-05-04", "18:00", "18:00"))
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestBookValidation(t *testing.T) {
	ctx := context.Background()
	s, store := newTestScheduler(t, StrategyOptimistic)

	tests := []struct {
		name string
		req  BookingRequest
	}{
		{"zero table", booking(0, "2024-05-01", "18:00", "19:00")},
		{"empty client", BookingRequest{TableNumber: 5, ClientName: "  ", Date: "2024-05-01", SlotTimeStart: "18:00", SlotTimeEnd: "19:00"}},
		{"bad date", booking(5, "01/05/2024", "18:00", "19:00")},
		{"impossible date", booking(5, "2024-02-30", "18:00", "19:00")},
		{"bad start", booking(5, "2024-05-01", "6pm", "19:00")},
		{"bad end", booking(5, "2024-05-01", "18:00", "25:00")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Book(ctx, tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	all, err := store.ListReservations(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Equal(t, int64(len(tests)), s.Stats().Rejected)
}

func TestBookNormalizesTimes(t *testing.T) {
	ctx := context.Background()
	s, store := newTestScheduler(t, StrategyOptimistic)

	_, err := s.Book(ctx, booking(5, "2024-05-01", "9:05", "10:30:59"))
	require.NoError(t, err)

	all, err := store.ListReservations(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "09:05", all[0].SlotTimeStart)
	assert.Equal(t, "10:30", all[0].SlotTimeEnd)

	// "9:05" and "09:05" are the same instant.
	_, err = s.Book(ctx, booking(5, "2024-05-01", "08:00", "09:05"))
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestBookConcurrentSameSlot(t *testing.T) {
	const workers = 32
	backends := []struct {
		name   string
		rounds int
		open   func(t *testing.T) bookingStore
	}{
		{"memory", 5, func(*testing.T) bookingStore { return database.NewMemoryStore() }},
		{"gorm", 3, func(t *testing.T) bookingStore { return newGormStore(t) }},
	}
	for _, backend := range backends {
		for _, strategy := range strategies {
			t.Run(backend.name+"/"+string(strategy), func(t *testing.T) {
				for round := 0; round < backend.rounds; round++ {
					store := backend.open(t)
					s := newSchedulerOver(t, strategy, store)

					var wg sync.WaitGroup
					var ok, conflicts atomic.Int64
					start := make(chan struct{})
					for i := 0; i < workers; i++ {
						wg.Add(1)
						go func(i int) {
							defer wg.Done()
							<-start
							// Every pair overlaps: all intervals contain 19:00.
							req := booking(5, "2024-05-01", fmt.Sprintf("18:%02d", i), fmt.Sprintf("19:%02d", i))
							_, err := s.Book(context.Background(), req)
							switch {
							case err == nil:
								ok.Add(1)
							case errors.Is(err, ErrSlotConflict):
								conflicts.Add(1)
							default:
								t.Errorf("unexpected error: %v", err)
							}
						}(i)
					}
					close(start)
					wg.Wait()

					assert.Equal(t, int64(1), ok.Load())
					assert.Equal(t, int64(workers-1), conflicts.Load())

					all, err := store.ListReservations(context.Background())
					require.NoError(t, err)
					assert.Len(t, all, 1)
				}
			})
		}
	}
}

func TestBookConcurrentDisjointKeys(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(string(strategy), func(t *testing.T) {
			s, store := newTestScheduler(t, strategy)

			var wg sync.WaitGroup
			errs := make(chan error, 28)
			for day := 1; day <= 28; day++ {
				wg.Add(1)
				go func(day int) {
					defer wg.Done()
					_, err := s.Book(context.Background(), booking(5, fmt.Sprintf("2024-05-%02d", day), "18:00", "19:00"))
					errs <- err
				}(day)
			}
			wg.Wait()
			close(errs)

			for err := range errs {
				assert.NoError(t, err)
			}
			all, err := store.ListReservations(context.Background())
			require.NoError(t, err)
			assert.Len(t, all, 28)
		})
	}
}

// racingStore lets the overlap scan pass but reports a lost race on insert.
type racingStore struct {
	*database.MemoryStore
	inserts atomic.Int64
}

func (s *racingStore) FindOverlapping(context.Context, int64, string, string, string) ([]models.Reservation, error) {
	return nil, nil
}

func (s *racingStore) InsertIfFree(context.Context, *models.Reservation) error {
	s.inserts.Add(1)
	return database.ErrPredicateFailed
}

func TestBookLostRaceRetriesThenConflicts(t *testing.T) {
	mem := database.NewMemoryStore()
	registry := NewTableRegistry(mem, nil)
	_, err := registry.Create(context.Background(), models.Table{ID: 1, Number: 5, Places: 2})
	require.NoError(t, err)

	store := &racingStore{MemoryStore: mem}
	s := NewReservationScheduler(registry, store, testSchedulerConfig(StrategyOptimistic))

	_, err = s.Book(context.Background(), booking(5, "2024-05-01", "18:00", "19:00"))
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Equal(t, int64(3), store.inserts.Load())

	stats := s.Stats()
	assert.Equal(t, int64(2), stats.Retries)
	assert.Equal(t, int64(1), stats.Conflicts)
	assert.Zero(t, stats.Committed)
}

func TestBookLostRaceThenTimeoutIsConflict(t *testing.T) {
	mem := database.NewMemoryStore()
	registry := NewTableRegistry(mem, nil)
	_, err := registry.Create(context.Background(), models.Table{ID: 1, Number: 5, Places: 2})
	require.NoError(t, err)

	store := &racingStore{MemoryStore: mem}
	cfg := testSchedulerConfig(StrategyOptimistic)
	cfg.BackoffBase = time.Hour
	cfg.Timeout = 20 * time.Millisecond
	s := NewReservationScheduler(registry, store, cfg)

	_, err = s.Book(context.Background(), booking(5, "2024-05-01", "18:00", "19:00"))
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.NotErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, int64(1), store.inserts.Load())
	assert.Equal(t, int64(1), s.Stats().Conflicts)
}

func TestBackoffLargeAttempt(t *testing.T) {
	s, _ := newTestScheduler(t, StrategyOptimistic)
	s.cfg.BackoffBase = time.Nanosecond

	for _, attempt := range []int{1, 11, 64, 100} {
		assert.NotPanics(t, func() {
			assert.NoError(t, s.backoff(context.Background(), attempt))
		})
	}
}

// flakyStore fails the first failures calls of InsertIfFree.
type flakyStore struct {
	*database.MemoryStore
	failures int64
	calls    atomic.Int64
}

func (s *flakyStore) InsertIfFree(ctx context.Context, r *models.Reservation) error {
	if s.calls.Add(1) <= s.failures {
		return errors.New("connection reset")
	}
	return s.MemoryStore.InsertIfFree(ctx, r)
}

func newFlakyScheduler(t *testing.T, failures int64) (*ReservationScheduler, *flakyStore) {
	t.Helper()
	mem := database.NewMemoryStore()
	registry := NewTableRegistry(mem, nil)
	_, err := registry.Create(context.Background(), models.Table{ID: 1, Number: 5, Places: 2})
	require.NoError(t, err)
	store := &flakyStore{MemoryStore: mem, failures: failures}
	return NewReservationScheduler(registry, store, testSchedulerConfig(StrategyOptimistic)), store
}

func TestBookRecoversFromTransientStoreFailure(t *testing.T) {
	s, store := newFlakyScheduler(t, 2)

	id, err := s.Book(context.Background(), booking(5, "2024-05-01", "18:00", "19:00"))
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, int64(3), store.calls.Load())
	assert.Equal(t, int64(2), s.Stats().StoreFailures)
}

func TestBookStoreUnavailable(t *testing.T) {
	s, store := newFlakyScheduler(t, 100)

	_, err := s.Book(context.Background(), booking(5, "2024-05-01", "18:00", "19:00"))
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrSlotConflict)
	assert.Equal(t, int64(3), store.calls.Load())

	all, err := store.ListReservations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestBookCanceledContext(t *testing.T) {
	s, _ := newTestScheduler(t, StrategySerialized)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Book(ctx, booking(5, "2024-05-01", "18:00", "19:00"))
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(event string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func TestBookPublishesOnCommit(t *testing.T) {
	pub := &recordingPublisher{}
	s, _ := newTestScheduler(t, StrategyOptimistic, WithPublisher(pub), WithIDGenerator(func() string { return "fixed-id" }))

	id, err := s.Book(context.Background(), booking(5, "2024-05-01", "18:00", "19:00"))
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)

	_, err = s.Book(context.Background(), booking(5, "2024-05-01", "18:00", "19:00"))
	assert.ErrorIs(t, err, ErrSlotConflict)

	assert.Equal(t, []string{EventReservationCreate}, pub.events)
}

func TestNewReservationSchedulerStrategy(t *testing.T) {
	s, _ := newTestScheduler(t, "")
	assert.Equal(t, StrategyOptimistic, s.Strategy())
	assert.IsType(t, noopLocker{}, s.locker)

	s, _ = newTestScheduler(t, StrategySerialized)
	assert.IsType(t, &KeyedMutex{}, s.locker)
}
