package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ZSabina88/Serverless-API-Cognito-Integration/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// insertIfFreeSQL inserts a reservation only if the table number exists and
// no reservation on the same (table_number, reservation_date) overlaps the
// new slot. The database evaluates both conditions as part of the insert.
// On MySQL this holds only under REPEATABLE READ, where the NOT EXISTS scan
// takes gap locks; config.InitDB pins that level on every connection.
const insertIfFreeSQL = `INSERT INTO reservations
	(id, table_number, client_name, phone_number, reservation_date, slot_time_start, slot_time_end, created_at)
SELECT ?, ?, ?, ?, ?, ?, ?, ?%s
WHERE EXISTS (
	SELECT 1 FROM restaurant_tables WHERE number = ?
)
AND NOT EXISTS (
	SELECT 1 FROM reservations
	WHERE table_number = ? AND reservation_date = ? AND slot_time_start <= ? AND slot_time_end >= ?
)`

// GormStore persists tables, reservations and users through GORM.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) CreateTable(ctx context.Context, table *models.Table) error {
	if table.CreatedAt.IsZero() {
		table.CreatedAt = time.Now().UTC()
	}
	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(table)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("table %d: %w", table.ID, ErrDuplicateKey)
	}
	return nil
}

func (s *GormStore) GetTable(ctx context.Context, id int64) (*models.Table, error) {
	var table models.Table
	err := s.DB.WithContext(ctx).First(&table, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("table %d: %w", id, ErrRecordNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (s *GormStore) TableNumberExists(ctx context.Context, number int64) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).
		Model(&models.Table{}).
		Where("number = ?", number).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormStore) ListTables(ctx context.Context) ([]models.Table, error) {
	tables := []models.Table{}
	if err := s.DB.WithContext(ctx).Order("id").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *GormStore) FindOverlapping(ctx context.Context, tableNumber int64, date, start, end string) ([]models.Reservation, error) {
	reservations := []models.Reservation{}
	err := s.DB.WithContext(ctx).
		Where("table_number = ? AND reservation_date = ? AND slot_time_start <= ? AND slot_time_end >= ?",
			tableNumber, date, end, start).
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

// InsertIfFree returns ErrPredicateFailed when the insert matched no row.
// SQLite serializes writers; MySQL needs REPEATABLE READ or stricter.
func (s *GormStore) InsertIfFree(ctx context.Context, r *models.Reservation) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	// MySQL needs a FROM clause before WHERE; SQLite does not accept DUAL.
	from := ""
	if s.DB.Dialector.Name() == "mysql" {
		from = " FROM DUAL"
	}

	res := s.DB.WithContext(ctx).Exec(fmt.Sprintf(insertIfFreeSQL, from),
		r.ID, r.TableNumber, r.ClientName, r.PhoneNumber, r.Date, r.SlotTimeStart, r.SlotTimeEnd, r.CreatedAt,
		r.TableNumber,
		r.TableNumber, r.Date, r.SlotTimeEnd, r.SlotTimeStart,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPredicateFailed
	}
	return nil
}

func (s *GormStore) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	reservations := []models.Reservation{}
	if err := s.DB.WithContext(ctx).Order("created_at").Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", email, ErrRecordNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(user)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", user.Email, ErrDuplicateKey)
	}
	return nil
}
