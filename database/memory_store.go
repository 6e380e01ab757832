package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ZSabina88/Serverless-API-Cognito-Integration/models"
)

// MemoryStore is a process-local store with the same conditional-write
// semantics as GormStore. It backs DB_DRIVER=memory and the tests.
type MemoryStore struct {
	mu           sync.RWMutex
	tables       map[int64]models.Table
	reservations map[string]models.Reservation
	users        map[string]models.User
	nextUserID   uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables:       make(map[int64]models.Table),
		reservations: make(map[string]models.Reservation),
		users:        make(map[string]models.User),
	}
}

func (s *MemoryStore) CreateTable(ctx context.Context, table *models.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables[table.ID]; ok {
		return fmt.Errorf("table %d: %w", table.ID, ErrDuplicateKey)
	}
	if table.CreatedAt.IsZero() {
		table.CreatedAt = time.Now().UTC()
	}
	s.tables[table.ID] = cloneTable(*table)
	return nil
}

func (s *MemoryStore) GetTable(ctx context.Context, id int64) (*models.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	table, ok := s.tables[id]
	if !ok {
		return nil, fmt.Errorf("table %d: %w", id, ErrRecordNotFound)
	}
	table = cloneTable(table)
	return &table, nil
}

func (s *MemoryStore) TableNumberExists(ctx context.Context, number int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tableNumberExistsLocked(number), nil
}

func (s *MemoryStore) tableNumberExistsLocked(number int64) bool {
	for _, t := range s.tables {
		if t.Number == number {
			return true
		}
	}
	return false
}

func (s *MemoryStore) ListTables(ctx context.Context) ([]models.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	tables := make([]models.Table, 0, len(s.tables))
	for _, t := range s.tables {
		tables = append(tables, cloneTable(t))
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].ID < tables[j].ID })
	return tables, nil
}

func (s *MemoryStore) FindOverlapping(ctx context.Context, tableNumber int64, date, start, end string) ([]models.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overlappingLocked(tableNumber, date, start, end), nil
}

func (s *MemoryStore) overlappingLocked(tableNumber int64, date, start, end string) []models.Reservation {
	found := []models.Reservation{}
	for _, r := range s.reservations {
		if r.Overlaps(tableNumber, date, start, end) {
			found = append(found, r)
		}
	}
	return found
}

func (s *MemoryStore) InsertIfFree(ctx context.Context, r *models.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tableNumberExistsLocked(r.TableNumber) {
		return ErrPredicateFailed
	}
	if len(s.overlappingLocked(r.TableNumber, r.Date, r.SlotTimeStart, r.SlotTimeEnd)) > 0 {
		return ErrPredicateFailed
	}
	if _, ok := s.reservations[r.ID]; ok {
		return fmt.Errorf("reservation %s: %w", r.ID, ErrDuplicateKey)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	s.reservations[r.ID] = *r
	return nil
}

func (s *MemoryStore) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	reservations := make([]models.Reservation, 0, len(s.reservations))
	for _, r := range s.reservations {
		reservations = append(reservations, r)
	}
	sort.Slice(reservations, func(i, j int) bool {
		return reservations[i].CreatedAt.Before(reservations[j].CreatedAt)
	})
	return reservations, nil
}

func (s *MemoryStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[email]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, ErrRecordNotFound)
	}
	return &user, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Email]; ok {
		return fmt.Errorf("user %s: %w", user.Email, ErrDuplicateKey)
	}
	s.nextUserID++
	user.ID = s.nextUserID
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	s.users[user.Email] = *user
	return nil
}

func cloneTable(t models.Table) models.Table {
	if t.MinOrder != nil {
		v := *t.MinOrder
		t.MinOrder = &v
	}
	return t
}
