package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/ZSabina88/Serverless-API-Cognito-Integration/database"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/models"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const EventReservationCreate = "reservation_create"

// maxBackoffShift caps the exponential growth of the retry delay at
// BackoffBase * 2^maxBackoffShift.
const maxBackoffShift = 10

type Strategy string

const (
	// StrategyOptimistic relies on the store's conditional insert and
	// retries when another booking wins the race.
	StrategyOptimistic Strategy = "optimistic"
	// StrategySerialized also holds an in-process lock per (table, date)
	// around the overlap scan and the insert.
	StrategySerialized Strategy = "serialized"
)

type SchedulerConfig struct {
	Strategy    Strategy
	MaxAttempts int
	BackoffBase time.Duration
	// Timeout bounds a whole Book call, retries included. Zero disables it.
	Timeout time.Duration
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Strategy:    StrategyOptimistic,
		MaxAttempts: 3,
		BackoffBase: 25 * time.Millisecond,
		Timeout:     5 * time.Second,
	}
}

type SchedulerOption func(*ReservationScheduler)

func WithPublisher(p Publisher) SchedulerOption {
	return func(s *ReservationScheduler) {
		if p != nil {
			s.events = p
		}
	}
}

// WithLocker replaces the lock used by the serialized strategy, e.g. with a
// distributed lease.
func WithLocker(l Locker) SchedulerOption {
	return func(s *ReservationScheduler) {
		if l != nil {
			s.locker = l
		}
	}
}

// WithIDGenerator overrides reservation id generation.
func WithIDGenerator(gen func() string) SchedulerOption {
	return func(s *ReservationScheduler) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// ReservationScheduler validates and commits reservations. For a fixed
// (table number, date) no two committed reservations overlap, where
// [s1,e1] and [s2,e2] overlap iff s1 <= e2 && e1 >= s2.
//
// The scheduler holds no booking state between calls; the store is the
// single source of truth, so any number of instances may run side by side.
type ReservationScheduler struct {
	tables  TableChecker
	store   ReservationStore
	locker  Locker
	events  Publisher
	cfg     SchedulerConfig
	metrics bookingMetrics
	newID   func() string
}

func NewReservationScheduler(tables TableChecker, store ReservationStore, cfg SchedulerConfig, opts ...SchedulerOption) *ReservationScheduler {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyOptimistic
	}

	s := &ReservationScheduler{
		tables: tables,
		store:  store,
		locker: noopLocker{},
		events: noopPublisher{},
		cfg:    cfg,
		newID:  func() string { return uuid.NewString() },
	}
	if cfg.Strategy == StrategySerialized {
		s.locker = NewKeyedMutex()
	}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.Strategy == StrategyOptimistic {
		s.locker = noopLocker{}
	}
	return s
}

// errLostRace means the conditional insert found a competing reservation
// that appeared after our overlap scan.
var errLostRace = errors.New("conditional insert lost the race")

// Book validates req and commits it, returning the new reservation id.
//
// Checks run in order and the first failure wins: ErrValidation for a
// malformed request, ErrTableNotFound, ErrInvalidInterval, ErrSlotConflict.
// Store failures are retried with jittered backoff and surface as
// ErrStoreUnavailable once the attempts are spent.
func (s *ReservationScheduler) Book(ctx context.Context, req BookingRequest) (string, error) {
	s.metrics.attempts.Add(1)

	req, err := req.normalize()
	if err != nil {
		s.metrics.rejected.Add(1)
		return "", err
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	log := utils.InfoLogger.WithFields(logrus.Fields{
		"table_number": req.TableNumber,
		"date":         req.Date,
		"slot_start":   req.SlotTimeStart,
		"slot_end":     req.SlotTimeEnd,
	})

	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		reservation, err := s.tryBook(ctx, req)
		if err == nil {
			s.metrics.committed.Add(1)
			log.WithFields(logrus.Fields{
				"reservation_id": reservation.ID,
				"attempt":        attempt,
			}).Info("Reservation committed")
			s.events.Publish(EventReservationCreate, reservation)
			return reservation.ID, nil
		}

		switch {
		case errors.Is(err, errLostRace):
			lastErr = ErrSlotConflict
			log.WithField("attempt", attempt).Debug("Conditional insert rejected, retrying")
		case errors.Is(err, ErrStoreUnavailable):
			s.metrics.storeFailures.Add(1)
			lastErr = err
			utils.ErrorLogger.WithFields(logrus.Fields{
				"table_number": req.TableNumber,
				"date":         req.Date,
				"attempt":      attempt,
			}).WithError(err).Error("Store failure while booking")
			if isContextError(err) || ctx.Err() != nil {
				return "", err
			}
		case errors.Is(err, ErrSlotConflict):
			s.metrics.conflicts.Add(1)
			return "", err
		default:
			s.metrics.rejected.Add(1)
			return "", err
		}

		if attempt == s.cfg.MaxAttempts {
			break
		}
		s.metrics.retries.Add(1)
		if err := s.backoff(ctx, attempt); err != nil {
			if errors.Is(lastErr, ErrSlotConflict) {
				break
			}
			return "", storeError("wait before retry", err)
		}
	}

	if errors.Is(lastErr, ErrSlotConflict) {
		s.metrics.conflicts.Add(1)
	}
	return "", lastErr
}

// tryBook runs one validate-and-commit pass.
func (s *ReservationScheduler) tryBook(ctx context.Context, req BookingRequest) (*models.Reservation, error) {
	ok, err := s.tables.Exists(ctx, req.TableNumber)
	if err != nil {
		return nil, asStoreError("check table", err)
	}
	if !ok {
		return nil, ErrTableNotFound
	}

	if req.SlotTimeStart >= req.SlotTimeEnd {
		return nil, ErrInvalidInterval
	}

	unlock, err := s.locker.Lock(ctx, req.lockKey())
	if err != nil {
		return nil, storeError("acquire booking lock", err)
	}
	defer unlock()

	existing, err := s.store.FindOverlapping(ctx, req.TableNumber, req.Date, req.SlotTimeStart, req.SlotTimeEnd)
	if err != nil {
		return nil, asStoreError("scan reservations", err)
	}
	if len(existing) > 0 {
		return nil, ErrSlotConflict
	}

	reservation := &models.Reservation{
		ID:            s.newID(),
		TableNumber:   req.TableNumber,
		ClientName:    req.ClientName,
		PhoneNumber:   req.PhoneNumber,
		Date:          req.Date,
		SlotTimeStart: req.SlotTimeStart,
		SlotTimeEnd:   req.SlotTimeEnd,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.InsertIfFree(ctx, reservation); err != nil {
		if errors.Is(err, database.ErrPredicateFailed) {
			return nil, errLostRace
		}
		return nil, asStoreError("insert reservation", err)
	}
	return reservation, nil
}

// asStoreError passes through errors that already carry ErrStoreUnavailable.
func asStoreError(op string, err error) error {
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return storeError(op, err)
}

// backoff sleeps for a full-jitter exponential delay.
func (s *ReservationScheduler) backoff(ctx context.Context, attempt int) error {
	if s.cfg.BackoffBase <= 0 {
		return ctx.Err()
	}
	ceiling := s.cfg.BackoffBase << min(attempt-1, maxBackoffShift)
	if ceiling <= 0 {
		ceiling = s.cfg.BackoffBase
	}
	delay := time.Duration(rand.Int64N(int64(ceiling)) + 1)

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ListAll returns every committed reservation.
func (s *ReservationScheduler) ListAll(ctx context.Context) ([]models.Reservation, error) {
	reservations, err := s.store.ListReservations(ctx)
	if err != nil {
		return nil, storeError("list reservations", err)
	}
	return reservations, nil
}

// Stats returns the booking counters of this instance.
func (s *ReservationScheduler) Stats() BookingStats {
	return s.metrics.snapshot()
}

func (s *ReservationScheduler) Strategy() Strategy {
	return s.cfg.Strategy
}

func (s SchedulerConfig) String() string {
	return fmt.Sprintf("strategy=%s attempts=%d backoff=%s timeout=%s",
		s.Strategy, s.MaxAttempts, s.BackoffBase, s.Timeout)
}
