package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Gateway is the spreadsheet contract the repository consumes. Ranges are in
// A1 notation; structural edits use 0-based row indexes and address the tab
// by its numeric sheet ID.
type Gateway interface {
	ReadRange(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error)
	ReadFormulas(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error)
	UpdateRange(ctx context.Context, spreadsheetID, updateRange string, values [][]interface{}) error
	AppendRows(ctx context.Context, spreadsheetID, appendRange string, rows [][]interface{}) error
	InsertRows(ctx context.Context, spreadsheetID string, sheetID, startIndex, count int64) error
	DeleteRows(ctx context.Context, spreadsheetID string, sheetID, startIndex, endIndex int64) error
	SheetID(ctx context.Context, spreadsheetID, title string) (int64, error)
}

// Config locates the backing table: one spreadsheet, one tab.
type Config struct {
	SpreadsheetID string
	SheetName     string
}

// columnMap resolves patch column names to physical sheet columns.
var columnMap = map[string]string{
	"day":     "A",
	"hours":   "B",
	"content": "C",
	"A":       "A",
	"B":       "B",
	"C":       "C",
}

// Repository translates between typed records and the sheet's flat rows. It
// owns the total-marker convention: records live in columns A:C, the row
// whose first cell is the total marker anchors inserts and carries the SUM.
type Repository struct {
	gw  Gateway
	cfg Config
}

func NewRepository(gw Gateway, cfg Config) *Repository {
	return &Repository{gw: gw, cfg: cfg}
}

// List reads the whole table and returns the surviving records together with
// the aggregate hours from the total row.
func (r *Repository) List(ctx context.Context) (ListResult, error) {
	values, err := r.gw.ReadRange(ctx, r.cfg.SpreadsheetID, r.rangeRef("A:C"))
	if err != nil {
		return ListResult{}, &GatewayError{Op: "read", Err: err}
	}

	result := ListResult{
		Records:    parseRecords(values),
		TotalHours: parseTotalHours(values),
	}

	log.Debug().
		Int("records", len(result.Records)).
		Float64("total_hours", result.TotalHours).
		Msg("Listed records")

	return result, nil
}

// Create appends a new entry. When a total marker row exists the entry is
// inserted immediately above it and the marker's SUM range is extended;
// otherwise the entry is appended after the last populated row. Returns a
// confirmation message echoing the submitted values.
func (r *Repository) Create(ctx context.Context, date, hours, content string) (string, error) {
	if date == "" || hours == "" || content == "" {
		return "", &ValidationError{Message: "すべてのフィールドを入力してください。"}
	}

	// Only the day-of-month portion of the date is stored.
	day := date
	if idx := strings.LastIndex(date, "-"); idx >= 0 {
		day = date[idx+1:]
	}

	column, err := r.gw.ReadRange(ctx, r.cfg.SpreadsheetID, r.rangeRef("A:A"))
	if err != nil {
		return "", &GatewayError{Op: "read", Err: err}
	}

	newRow := []interface{}{day, hours, content}
	markerRow := findTotalMarker(column)

	if markerRow == 0 {
		log.Debug().Msg("No total marker row found, appending record at the end")
		if err := r.gw.AppendRows(ctx, r.cfg.SpreadsheetID, r.rangeRef("A:C"), [][]interface{}{newRow}); err != nil {
			return "", &GatewayError{Op: "append", Err: err}
		}
	} else {
		if err := r.insertAboveMarker(ctx, markerRow, newRow); err != nil {
			return "", err
		}
	}

	log.Info().
		Str("day", day).
		Str("hours", hours).
		Str("content", content).
		Int("marker_row", markerRow).
		Msg("Created record")

	return fmt.Sprintf("記録しました: %s / %s時間 / %s", date, hours, content), nil
}

// insertAboveMarker opens one blank row where the marker currently sits
// (pushing the marker and everything below down by one), writes the record
// into it, then extends the marker's SUM range to cover the new row.
func (r *Repository) insertAboveMarker(ctx context.Context, markerRow int, newRow []interface{}) error {
	sheetID, err := r.gw.SheetID(ctx, r.cfg.SpreadsheetID, r.cfg.SheetName)
	if err != nil {
		return &GatewayError{Op: "sheet lookup", Err: err}
	}

	if err := r.gw.InsertRows(ctx, r.cfg.SpreadsheetID, sheetID, int64(markerRow-1), 1); err != nil {
		return &GatewayError{Op: "insert", Err: err}
	}

	rowRange := r.rangeRef(fmt.Sprintf("A%d:C%d", markerRow, markerRow))
	if err := r.gw.UpdateRange(ctx, r.cfg.SpreadsheetID, rowRange, [][]interface{}{newRow}); err != nil {
		return &GatewayError{Op: "write", Err: err}
	}

	// The record write already succeeded; a failed SUM adjustment is logged
	// and swallowed rather than failing the create.
	r.adjustTotalFormula(ctx, markerRow+1)

	return nil
}

// adjustTotalFormula extends the SUM range in the total row's hours cell by
// one row. markerRow is the marker's position after the insert. Cells that
// are not a matching SUM formula are left untouched.
func (r *Repository) adjustTotalFormula(ctx context.Context, markerRow int) {
	formulaCell := r.rangeRef(fmt.Sprintf("B%d", markerRow))

	values, err := r.gw.ReadFormulas(ctx, r.cfg.SpreadsheetID, formulaCell)
	if err != nil {
		log.Warn().Err(err).Str("cell", formulaCell).Msg("Failed to read total row formula, leaving it unchanged")
		return
	}

	formula := ""
	if len(values) > 0 {
		formula = cellString(values[0], 0)
	}

	updated, ok := bumpSumRange(formula)
	if !ok {
		log.Debug().Str("cell", formulaCell).Str("formula", formula).Msg("Total cell is not a SUM over column B, skipping adjustment")
		return
	}

	if err := r.gw.UpdateRange(ctx, r.cfg.SpreadsheetID, formulaCell, [][]interface{}{{updated}}); err != nil {
		log.Warn().Err(err).Str("cell", formulaCell).Msg("Failed to update total row formula")
		return
	}

	log.Debug().Str("cell", formulaCell).Str("formula", updated).Msg("Extended total row SUM range")
}

// Update overwrites all three cells of the given row. This is a full-row
// replace: empty fields are written as empty strings, not left untouched.
func (r *Repository) Update(ctx context.Context, rowIndex int, day, hours, content string) error {
	if rowIndex <= 0 {
		return &ValidationError{Message: "rowIndex が不正です。"}
	}

	rowRange := r.rangeRef(fmt.Sprintf("A%d:C%d", rowIndex, rowIndex))
	values := [][]interface{}{{day, hours, content}}

	if err := r.gw.UpdateRange(ctx, r.cfg.SpreadsheetID, rowRange, values); err != nil {
		return &GatewayError{Op: "write", Err: err}
	}

	log.Info().Int("row", rowIndex).Msg("Updated record")
	return nil
}

// PatchCell writes a single cell of the given row, leaving the others
// untouched. column accepts field names (day, hours, content) or physical
// columns (A, B, C).
func (r *Repository) PatchCell(ctx context.Context, rowIndex int, column, value string) error {
	if rowIndex <= 0 {
		return &ValidationError{Message: "rowIndex が不正です。"}
	}

	col, ok := columnMap[column]
	if !ok {
		return &ValidationError{Message: "column は day|hours|content もしくは A|B|C を指定してください。"}
	}

	cellRange := r.rangeRef(fmt.Sprintf("%s%d", col, rowIndex))
	if err := r.gw.UpdateRange(ctx, r.cfg.SpreadsheetID, cellRange, [][]interface{}{{value}}); err != nil {
		return &GatewayError{Op: "write", Err: err}
	}

	log.Info().Int("row", rowIndex).Str("column", col).Msg("Patched record cell")
	return nil
}

// Delete removes the physical row, shifting all subsequent rows up by one.
// Row indexes held by callers are stale afterwards.
func (r *Repository) Delete(ctx context.Context, rowIndex int) error {
	if rowIndex <= 0 {
		return &ValidationError{Message: "rowIndex が不正です。"}
	}

	sheetID, err := r.gw.SheetID(ctx, r.cfg.SpreadsheetID, r.cfg.SheetName)
	if err != nil {
		return &GatewayError{Op: "sheet lookup", Err: err}
	}

	if err := r.gw.DeleteRows(ctx, r.cfg.SpreadsheetID, sheetID, int64(rowIndex-1), int64(rowIndex)); err != nil {
		return &GatewayError{Op: "delete", Err: err}
	}

	log.Info().Int("row", rowIndex).Msg("Deleted record")
	return nil
}

// rangeRef qualifies an A1 reference with the configured tab name.
func (r *Repository) rangeRef(ref string) string {
	return fmt.Sprintf("%s!%s", r.cfg.SheetName, ref)
}
