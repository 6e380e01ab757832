package services

import (
	"context"

	"github.com/ZSabina88/Serverless-API-Cognito-Integration/models"
)

// TableStore is the persistence the table registry needs.
type TableStore interface {
	CreateTable(ctx context.Context, table *models.Table) error
	GetTable(ctx context.Context, id int64) (*models.Table, error)
	TableNumberExists(ctx context.Context, number int64) (bool, error)
	ListTables(ctx context.Context) ([]models.Table, error)
}

// ReservationStore is the persistence the scheduler needs. InsertIfFree is
// a conditional write: the store itself must check that no overlapping
// reservation exists and that the table number is registered.
type ReservationStore interface {
	FindOverlapping(ctx context.Context, tableNumber int64, date, start, end string) ([]models.Reservation, error)
	InsertIfFree(ctx context.Context, r *models.Reservation) error
	ListReservations(ctx context.Context) ([]models.Reservation, error)
}

// UserStore is the persistence the identity service needs.
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
}

// TableChecker answers whether a table number is registered.
type TableChecker interface {
	Exists(ctx context.Context, number int64) (bool, error)
}

// Publisher receives domain events after they are committed.
type Publisher interface {
	Publish(event string, data interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, interface{}) {}
