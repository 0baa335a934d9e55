package artifact

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// EncodeCSV renders a table as CSV text: a comma-joined header row,
// one line per data row, fields containing commas, quotes or newlines
// double-quoted with inner quotes doubled, and a trailing newline even
// when there are zero data rows.
func EncodeCSV(t Table) (string, error) {
	var buf strings.Builder
	w := csv.NewWriter(&buf)

	if err := w.Write(t.Header); err != nil {
		return "", fmt.Errorf("write %s header: %w", t.Name, err)
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write %s row: %w", t.Name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("encode %s: %w", t.Name, err)
	}
	return buf.String(), nil
}
