// Package export renders the case list for download and parses bulk imports.
// The JSON export and import are exact inverses: importing an export yields
// an identical in-memory case list.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hopespot/rescue-server/internal/models"
	"github.com/hopespot/rescue-server/internal/views"
)

// ErrMalformedImport indicates the import payload was not a JSON array.
var ErrMalformedImport = errors.New("import payload must be a JSON array")

// timeLayout matches the browser-era "Oct 5, 2025, 04:30 PM" report format.
const timeLayout = "Jan 2, 2006, 03:04 PM"

// CasesJSON serializes the case list as indented JSON.
func CasesJSON(cases []models.RescueCase) ([]byte, error) {
	if cases == nil {
		cases = []models.RescueCase{}
	}
	return json.MarshalIndent(cases, "", "  ")
}

// ImportCases parses a bulk import. Anything that is a JSON array is
// accepted; entries that fail to decode are kept as zero-value records and
// surface downstream rather than failing the import.
func ImportCases(data []byte) ([]models.RescueCase, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ErrMalformedImport
	}
	cases := make([]models.RescueCase, len(raw))
	for i, entry := range raw {
		_ = json.Unmarshal(entry, &cases[i])
	}
	return cases, nil
}

// CasesCSV renders the case report with the fixed report column set.
func CasesCSV(cases []models.RescueCase) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"Case ID", "Date & Time", "Helper Name", "Helper Phone",
		"Location", "Description", "Status", "Assigned Rescuer", "Rescuer Notes",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, c := range cases {
		row := []string{
			c.ID,
			c.CreatedAt.Format(timeLayout),
			c.HelperName,
			c.HelperPhone,
			c.Location,
			c.Notes,
			string(c.Status),
			orNA(c.AssignedRescuer),
			orNA(c.RescuerNotes),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// RescuersCSV renders the per-rescuer assignment report.
func RescuersCSV(stats []views.RescuerStats) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"Rescuer Name", "Total Cases", "Completed", "In Progress", "Pending", "Completion Rate",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, s := range stats {
		row := []string{
			s.Name,
			fmt.Sprintf("%d", s.TotalCases),
			fmt.Sprintf("%d", s.Completed),
			fmt.Sprintf("%d", s.InProgress),
			fmt.Sprintf("%d", s.Pending),
			fmt.Sprintf("%.1f%%", s.CompletionRate),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// FileStamp is the YYYY-MM-DD suffix used in download filenames.
func FileStamp(t time.Time) string {
	return t.Format("2006-01-02")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
