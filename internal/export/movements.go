package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/Veraticus/money-movement/internal/model"
)

// MovementRow is the CSV shape of a movement.
type MovementRow struct {
	ID          int    `csv:"id"`
	Date        string `csv:"date"`
	Status      string `csv:"status"`
	Type        string `csv:"type"`
	Category    string `csv:"category"`
	SubCategory string `csv:"subcategory"`
	Amount      string `csv:"amount"`
	Comment     string `csv:"comment"`
}

// MovementRows flattens movements into CSV rows, keeping their order.
func MovementRows(movements []model.Movement) []*MovementRow {
	rows := make([]*MovementRow, 0, len(movements))
	for _, m := range movements {
		row := &MovementRow{
			ID:       m.ID,
			Date:     m.Date.Format(model.DateLayout),
			Status:   m.StatusName,
			Type:     m.TypeName,
			Category: m.CategoryName,
			Amount:   m.Amount.StringFixed(model.AmountPlaces),
			Comment:  m.Comment,
		}
		if m.HasSubCategory() {
			row.SubCategory = m.SubCategoryName
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteMovementsCSV writes movements with a header row.
func WriteMovementsCSV(w io.Writer, movements []model.Movement) error {
	if err := gocsv.Marshal(MovementRows(movements), w); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}
