// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/money-movement/internal/model"
)

// MovementFilter defines filtering options for movement queries.
// Zero values leave the corresponding column unfiltered.
type MovementFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	StatusID   int
	TypeID     int
	CategoryID int
	Limit      int
	Offset     int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Status operations
	GetStatuses(ctx context.Context) ([]model.Status, error)
	GetStatusByID(ctx context.Context, id int) (*model.Status, error)
	GetStatusByCode(ctx context.Context, code model.StatusCode) (*model.Status, error)
	GetStatusByName(ctx context.Context, name string) (*model.Status, error)
	CreateStatus(ctx context.Context, status *model.Status) error
	DeleteStatus(ctx context.Context, id int) error

	// Type operations
	GetTypes(ctx context.Context) ([]model.Type, error)
	GetTypeByID(ctx context.Context, id int) (*model.Type, error)
	GetTypeByCode(ctx context.Context, code model.TypeCode) (*model.Type, error)
	GetTypeByName(ctx context.Context, name string) (*model.Type, error)
	CreateType(ctx context.Context, typ *model.Type) error
	DeleteType(ctx context.Context, id int) error

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoriesByType(ctx context.Context, typeID int) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id int) (*model.Category, error)
	GetCategoryByName(ctx context.Context, typeID int, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, typeID int, name string) (*model.Category, error)
	DeleteCategory(ctx context.Context, id int) error

	// SubCategory operations
	GetSubCategories(ctx context.Context, categoryID int) ([]model.SubCategory, error)
	GetSubCategoryByID(ctx context.Context, id int) (*model.SubCategory, error)
	GetSubCategoryByName(ctx context.Context, categoryID int, name string) (*model.SubCategory, error)
	CreateSubCategory(ctx context.Context, categoryID int, name string) (*model.SubCategory, error)
	DeleteSubCategory(ctx context.Context, id int) error

	// Movement operations
	SaveMovement(ctx context.Context, movement *model.Movement) error
	UpdateMovement(ctx context.Context, movement *model.Movement) error
	GetMovementByID(ctx context.Context, id int) (*model.Movement, error)
	GetMovements(ctx context.Context, filter MovementFilter) ([]model.Movement, error)
	DeleteMovement(ctx context.Context, id int) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}
