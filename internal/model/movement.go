package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the storage and display format of movement dates.
const DateLayout = "2006-01-02"

// Amount limits: two decimal places, ten significant digits in total.
const (
	AmountPlaces = 2
	AmountDigits = 10
)

var (
	// MinAmount is the smallest amount a movement may carry.
	MinAmount = decimal.New(1, -AmountPlaces)
	// MaxAmount is the first amount that no longer fits the fixed precision.
	MaxAmount = decimal.New(1, AmountDigits-AmountPlaces)
)

// Movement is a single ledger entry.
//
// StatusName, TypeName, CategoryName and SubCategoryName are populated when the
// movement is read back from storage; writes only look at the ID fields.
type Movement struct {
	Date            time.Time
	CreatedAt       time.Time
	SubCategoryID   *int
	Amount          decimal.Decimal
	Comment         string
	StatusName      string
	TypeName        string
	CategoryName    string
	SubCategoryName string
	ID              int
	StatusID        int
	TypeID          int
	CategoryID      int
}

// HasSubCategory reports whether the movement references a subcategory.
func (m Movement) HasSubCategory() bool {
	return m.SubCategoryID != nil
}

func (m Movement) String() string {
	return fmt.Sprintf("%s: %s %sр (%s)",
		m.Date.Format(DateLayout),
		m.TypeName,
		m.Amount.StringFixed(AmountPlaces),
		m.StatusName)
}
