package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/zhouzirui/neuroguard/backend/internal/model/checkin"
)

var header = []string{"time", "text", "label", "confidence", "risk", "crisis"}

// WriteCSV writes one row per entry after a header row.
func WriteCSV(w io.Writer, entries []checkin.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, entry := range entries {
		record := []string{
			entry.CreatedAt.UTC().Format(time.RFC3339),
			escapeFormula(entry.Text),
			entry.Label,
			strconv.FormatFloat(entry.Confidence, 'f', 4, 64),
			entry.Risk,
			strconv.FormatBool(entry.Crisis),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", entry.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// escapeFormula prefixes cells that spreadsheet applications would evaluate
// as formulas.
func escapeFormula(cell string) string {
	if cell != "" && strings.ContainsRune("=+-@\t\r", rune(cell[0])) {
		return "'" + cell
	}
	return cell
}
