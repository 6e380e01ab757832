package services

import (
	"context"
	"errors"

	"github.com/ZSabina88/Serverless-API-Cognito-Integration/database"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/models"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/utils"
	"github.com/sirupsen/logrus"
)

const EventTableCreate = "table_create"

// TableRegistry creates and looks up tables. Tables are immutable once created.
type TableRegistry struct {
	store  TableStore
	events Publisher
}

func NewTableRegistry(store TableStore, events Publisher) *TableRegistry {
	if events == nil {
		events = noopPublisher{}
	}
	return &TableRegistry{store: store, events: events}
}

// Create registers a table and returns its id.
func (r *TableRegistry) Create(ctx context.Context, table models.Table) (int64, error) {
	if err := validateStruct(table); err != nil {
		return 0, err
	}

	if err := r.store.CreateTable(ctx, &table); err != nil {
		if errors.Is(err, database.ErrDuplicateKey) {
			return 0, ErrDuplicateID
		}
		return 0, storeError("create table", err)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"table_id": table.ID,
		"number":   table.Number,
		"places":   table.Places,
	}).Info("Table created")
	r.events.Publish(EventTableCreate, table)
	return table.ID, nil
}

// Exists reports whether some table carries the given number. It looks up
// the number attribute, never the id.
func (r *TableRegistry) Exists(ctx context.Context, number int64) (bool, error) {
	ok, err := r.store.TableNumberExists(ctx, number)
	if err != nil {
		return false, storeError("lookup table number", err)
	}
	return ok, nil
}

func (r *TableRegistry) Get(ctx context.Context, id int64) (*models.Table, error) {
	table, err := r.store.GetTable(ctx, id)
	if errors.Is(err, database.ErrRecordNotFound) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, storeError("get table", err)
	}
	return table, nil
}

func (r *TableRegistry) List(ctx context.Context) ([]models.Table, error) {
	tables, err := r.store.ListTables(ctx)
	if err != nil {
		return nil, storeError("list tables", err)
	}
	return tables, nil
}
