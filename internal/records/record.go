package records

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Sentinel cell values that mark non-record rows.
const (
	// totalMarker is the first cell of the distinguished total row. New
	// records are inserted immediately above it and its second cell holds
	// the aggregate hours.
	totalMarker = "合計"

	// godInput in the second cell marks a row excluded from listings.
	godInput = "神入力"
)

// monthHeaderPattern matches section header rows like "6月".
var monthHeaderPattern = regexp.MustCompile(`^\d+月$`)

// Record is one logged time entry. RowIndex is the 1-based physical row in
// the sheet at read time; it is a position, not a stable identifier, and is
// stale after any insert or delete elsewhere in the sheet.
type Record struct {
	RowIndex int    `json:"rowIndex"`
	Day      string `json:"day"`
	Hours    string `json:"hours"`
	Content  string `json:"content"`
}

// ListResult is the outcome of listing the sheet: the surviving records plus
// the aggregate hours read off the total row.
type ListResult struct {
	Records    []Record
	TotalHours float64
}

// cellString safely coerces the cell at index to a string. Unformatted reads
// return numbers as float64, so everything goes through %v.
func cellString(row []interface{}, index int) string {
	if len(row) > index && row[index] != nil {
		return fmt.Sprintf("%v", row[index])
	}
	return ""
}

// isRecordRow reports whether a raw sheet row survives the filtering policy:
// not empty, not the total row, not a month header, not god-input, and has
// at least one non-empty cell among day/hours/content.
func isRecordRow(row []interface{}) bool {
	if len(row) == 0 {
		return false
	}

	firstCell := strings.TrimSpace(cellString(row, 0))
	if firstCell == totalMarker {
		return false
	}
	if monthHeaderPattern.MatchString(firstCell) {
		return false
	}
	if strings.TrimSpace(cellString(row, 1)) == godInput {
		return false
	}

	return cellString(row, 0) != "" || cellString(row, 1) != "" || cellString(row, 2) != ""
}

// parseRecords turns raw A:C values into records, assigning 1-based row
// indexes from physical position.
func parseRecords(values [][]interface{}) []Record {
	var result []Record

	for i, row := range values {
		if !isRecordRow(row) {
			continue
		}
		result = append(result, Record{
			RowIndex: i + 1,
			Day:      cellString(row, 0),
			Hours:    cellString(row, 1),
			Content:  cellString(row, 2),
		})
	}

	log.Debug().
		Int("total_rows", len(values)).
		Int("records", len(result)).
		Msg("Parsed sheet rows into records")

	return result
}

// parseTotalHours extracts aggregate hours from the first total row's second
// cell. Absent or unparseable cells yield 0.
func parseTotalHours(values [][]interface{}) float64 {
	for _, row := range values {
		if len(row) == 0 || cellString(row, 0) != totalMarker {
			continue
		}
		hours, err := strconv.ParseFloat(strings.TrimSpace(cellString(row, 1)), 64)
		if err != nil {
			return 0
		}
		return hours
	}
	return 0
}

// findTotalMarker scans a single-column read of column A top to bottom and
// returns the 1-based row of the first total marker, or 0 if none exists.
func findTotalMarker(column [][]interface{}) int {
	for i, row := range column {
		if len(row) > 0 && cellString(row, 0) == totalMarker {
			return i + 1
		}
	}
	return 0
}
