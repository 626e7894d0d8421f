package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/untoldecay/mentor/internal/types"
)

// menuRow is the CSV shape of a menu item. The timestamp is kept as stored
// text so a spreadsheet round trip does not reformat it.
type menuRow struct {
	Name        string `csv:"name"`
	Price       int64  `csv:"price"`
	Description string `csv:"description"`
	UpdatedAt   string `csv:"updated_at"`
}

func writeCSV(w io.Writer, doc *Document) error {
	rows := make([]*menuRow, 0, len(doc.Menu))
	for _, item := range doc.Menu {
		row := &menuRow{
			Name:        item.Name,
			Price:       item.Price,
			Description: item.Description,
		}
		if !item.UpdatedAt.IsZero() {
			row.UpdatedAt = types.FormatTimestamp(item.UpdatedAt)
		}
		rows = append(rows, row)
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to encode csv: %w", err)
	}
	return nil
}

func readCSV(r io.Reader) ([]types.MenuItem, error) {
	var rows []*menuRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode csv: %w", err)
	}
	items := make([]types.MenuItem, 0, len(rows))
	for i, row := range rows {
		item := types.MenuItem{
			Name:        row.Name,
			Price:       row.Price,
			Description: row.Description,
		}
		if row.UpdatedAt != "" {
			at, err := types.ParseTimestamp(row.UpdatedAt)
			if err != nil {
				return nil, fmt.Errorf("csv row %d: %w", i+2, err)
			}
			item.UpdatedAt = at
		}
		items = append(items, item)
	}
	return items, nil
}
