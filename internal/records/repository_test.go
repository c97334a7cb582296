package records

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSheet = "作業記録"

var (
	cellRefPattern = regexp.MustCompile(`^([ABC])(\d+)$`)
	rowSpanPattern = regexp.MustCompile(`^A(\d+):C(\d+)$`)
)

// fakeSheet is an in-memory stand-in for the spreadsheet gateway. Rows are
// three columns wide and cells hold raw strings, so a cell can carry a
// formula and both value and formula reads will see the same text.
type fakeSheet struct {
	rows [][3]string

	readErr     error
	formulasErr error
	updateErr   error
	appendErr   error
	sheetIDErr  error

	updateCalls int
	appendCalls int
}

func newFakeSheet(rows ...[3]string) *fakeSheet {
	return &fakeSheet{rows: rows}
}

func (f *fakeSheet) ref(fullRange string) string {
	parts := strings.SplitN(fullRange, "!", 2)
	if len(parts) != 2 || parts[0] != testSheet {
		panic("unexpected range: " + fullRange)
	}
	return parts[1]
}

func colIndex(col string) int {
	return int(col[0] - 'A')
}

func mustAtoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		panic(err)
	}
	return n
}

func (f *fakeSheet) grow(row int) {
	for len(f.rows) < row {
		f.rows = append(f.rows, [3]string{})
	}
}

func (f *fakeSheet) ReadRange(_ context.Context, _, readRange string) ([][]interface{}, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}

	switch ref := f.ref(readRange); ref {
	case "A:A":
		var out [][]interface{}
		for _, row := range f.rows {
			if row[0] == "" {
				out = append(out, []interface{}{})
			} else {
				out = append(out, []interface{}{row[0]})
			}
		}
		return out, nil
	case "A:C":
		var out [][]interface{}
		for _, row := range f.rows {
			cells := []interface{}{row[0], row[1], row[2]}
			for len(cells) > 0 && cells[len(cells)-1] == "" {
				cells = cells[:len(cells)-1]
			}
			out = append(out, cells)
		}
		return out, nil
	default:
		panic("unexpected read range: " + ref)
	}
}

func (f *fakeSheet) ReadFormulas(_ context.Context, _, readRange string) ([][]interface{}, error) {
	if f.formulasErr != nil {
		return nil, f.formulasErr
	}

	m := cellRefPattern.FindStringSubmatch(f.ref(readRange))
	if m == nil {
		panic("unexpected formula range: " + readRange)
	}
	row := mustAtoi(m[2])
	if row > len(f.rows) {
		return nil, nil
	}
	return [][]interface{}{{f.rows[row-1][colIndex(m[1])]}}, nil
}

func (f *fakeSheet) UpdateRange(_ context.Context, _, updateRange string, values [][]interface{}) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updateCalls++

	ref := f.ref(updateRange)
	if m := rowSpanPattern.FindStringSubmatch(ref); m != nil {
		row := mustAtoi(m[1])
		f.grow(row)
		for i, v := range values[0] {
			f.rows[row-1][i] = fmt.Sprintf("%v", v)
		}
		return nil
	}
	if m := cellRefPattern.FindStringSubmatch(ref); m != nil {
		row := mustAtoi(m[2])
		f.grow(row)
		f.rows[row-1][colIndex(m[1])] = fmt.Sprintf("%v", values[0][0])
		return nil
	}
	panic("unexpected update range: " + ref)
}

func (f *fakeSheet) AppendRows(_ context.Context, _, _ string, rows [][]interface{}) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appendCalls++

	for _, row := range rows {
		var stored [3]string
		for i, v := range row {
			stored[i] = fmt.Sprintf("%v", v)
		}
		f.rows = append(f.rows, stored)
	}
	return nil
}

func (f *fakeSheet) InsertRows(_ context.Context, _ string, _ int64, startIndex, count int64) error {
	for i := int64(0); i < count; i++ {
		f.rows = append(f.rows, [3]string{})
		copy(f.rows[startIndex+1:], f.rows[startIndex:])
		f.rows[startIndex] = [3]string{}
	}
	return nil
}

func (f *fakeSheet) DeleteRows(_ context.Context, _ string, _ int64, startIndex, endIndex int64) error {
	f.rows = append(f.rows[:startIndex], f.rows[endIndex:]...)
	return nil
}

func (f *fakeSheet) SheetID(_ context.Context, _, _ string) (int64, error) {
	if f.sheetIDErr != nil {
		return 0, f.sheetIDErr
	}
	return 99, nil
}

func newTestRepository(f *fakeSheet) *Repository {
	return NewRepository(f, Config{SpreadsheetID: "spreadsheet-id", SheetName: testSheet})
}

func TestListFiltersAndTotals(t *testing.T) {
	f := newFakeSheet(
		[3]string{"6月", "", ""},
		[3]string{"15", "7.5", "design review"},
		[3]string{"", "", ""},
		[3]string{"", "神入力", "adjustment"},
		[3]string{"16", "8", "api work"},
		[3]string{"合計", "15.5", ""},
	)
	repo := newTestRepository(f)

	result, err := repo.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []Record{
		{RowIndex: 2, Day: "15", Hours: "7.5", Content: "design review"},
		{RowIndex: 5, Day: "16", Hours: "8", Content: "api work"},
	}, result.Records)
	assert.Equal(t, 15.5, result.TotalHours)
}

func TestListGatewayError(t *testing.T) {
	f := newFakeSheet()
	f.readErr = errors.New("boom")
	repo := newTestRepository(f)

	_, err := repo.List(context.Background())

	var gerr *GatewayError
	require.ErrorAs(t, err, &gerr)
}

func TestCreateRequiresAllFields(t *testing.T) {
	tests := []struct {
		name                 string
		date, hours, content string
	}{
		{"missing date", "", "7.5", "work"},
		{"missing hours", "2024-06-15", "", "work"},
		{"missing content", "2024-06-15", "7.5", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeSheet([3]string{"合計", "=SUM(B1:B0)", ""})
			repo := newTestRepository(f)

			_, err := repo.Create(context.Background(), tt.date, tt.hours, tt.content)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Zero(t, f.updateCalls)
			assert.Zero(t, f.appendCalls)
		})
	}
}

func TestCreateInsertsAboveMarkerAndBumpsSum(t *testing.T) {
	f := newFakeSheet(
		[3]string{"15", "7.5", "design review"},
		[3]string{"16", "8", "api work"},
		[3]string{"合計", "=SUM(B1:B2)", ""},
	)
	repo := newTestRepository(f)

	message, err := repo.Create(context.Background(), "2024-06-17", "6", "docs")
	require.NoError(t, err)
	assert.Equal(t, "記録しました: 2024-06-17 / 6時間 / docs", message)

	assert.Equal(t, [][3]string{
		{"15", "7.5", "design review"},
		{"16", "8", "api work"},
		{"17", "6", "docs"},
		{"合計", "=SUM(B1:B3)", ""},
	}, f.rows)
}

func TestCreateDerivesDayFromDate(t *testing.T) {
	f := newFakeSheet()
	repo := newTestRepository(f)

	_, err := repo.Create(context.Background(), "2024-06-05", "3", "standup")
	require.NoError(t, err)

	require.Len(t, f.rows, 1)
	assert.Equal(t, [3]string{"05", "3", "standup"}, f.rows[0])
}

func TestCreateAppendsWhenNoMarker(t *testing.T) {
	f := newFakeSheet(
		[3]string{"15", "7.5", "design review"},
	)
	repo := newTestRepository(f)

	_, err := repo.Create(context.Background(), "2024-06-16", "8", "api work")
	require.NoError(t, err)

	assert.Equal(t, 1, f.appendCalls)
	assert.Equal(t, [3]string{"16", "8", "api work"}, f.rows[1])

	result, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(0), result.TotalHours)
}

func TestCreateLeavesNonSumTotalCellAlone(t *testing.T) {
	f := newFakeSheet(
		[3]string{"15", "7.5", "design review"},
		[3]string{"合計", "22.5", ""},
	)
	repo := newTestRepository(f)

	_, err := repo.Create(context.Background(), "2024-06-16", "8", "api work")
	require.NoError(t, err)

	assert.Equal(t, [][3]string{
		{"15", "7.5", "design review"},
		{"16", "8", "api work"},
		{"合計", "22.5", ""},
	}, f.rows)
}

func TestCreateSurvivesFormulaReadFailure(t *testing.T) {
	f := newFakeSheet(
		[3]string{"合計", "=SUM(B1:B0)", ""},
	)
	f.formulasErr = errors.New("quota exceeded")
	repo := newTestRepository(f)

	_, err := repo.Create(context.Background(), "2024-06-16", "8", "api work")
	require.NoError(t, err)

	assert.Equal(t, [3]string{"16", "8", "api work"}, f.rows[0])
}

func TestCreateGatewayReadError(t *testing.T) {
	f := newFakeSheet()
	f.readErr = errors.New("boom")
	repo := newTestRepository(f)

	_, err := repo.Create(context.Background(), "2024-06-16", "8", "api work")

	var gerr *GatewayError
	require.ErrorAs(t, err, &gerr)
}

func TestUpdateReplacesWholeRow(t *testing.T) {
	f := newFakeSheet(
		[3]string{"15", "7.5", "design review"},
		[3]string{"16", "8", "api work"},
	)
	repo := newTestRepository(f)

	require.NoError(t, repo.Update(context.Background(), 2, "16", "6", ""))

	// Empty fields are written out, not preserved.
	assert.Equal(t, [3]string{"16", "6", ""}, f.rows[1])
	assert.Equal(t, [3]string{"15", "7.5", "design review"}, f.rows[0])
}

func TestUpdateRejectsNonPositiveRowIndex(t *testing.T) {
	repo := newTestRepository(newFakeSheet())

	for _, rowIndex := range []int{0, -1} {
		err := repo.Update(context.Background(), rowIndex, "15", "8", "work")

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	}
}

func TestPatchCellColumnMapping(t *testing.T) {
	tests := []struct {
		column  string
		wantRow [3]string
	}{
		{"day", [3]string{"X", "7.5", "design review"}},
		{"hours", [3]string{"15", "X", "design review"}},
		{"content", [3]string{"15", "7.5", "X"}},
		{"A", [3]string{"X", "7.5", "design review"}},
		{"B", [3]string{"15", "X", "design review"}},
		{"C", [3]string{"15", "7.5", "X"}},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			f := newFakeSheet([3]string{"15", "7.5", "design review"})
			repo := newTestRepository(f)

			require.NoError(t, repo.PatchCell(context.Background(), 1, tt.column, "X"))
			assert.Equal(t, tt.wantRow, f.rows[0])
		})
	}
}

func TestPatchCellUnknownColumn(t *testing.T) {
	f := newFakeSheet([3]string{"15", "7.5", "design review"})
	repo := newTestRepository(f)

	err := repo.PatchCell(context.Background(), 1, "comment", "X")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, f.updateCalls)
	assert.Equal(t, [3]string{"15", "7.5", "design review"}, f.rows[0])
}

func TestDeleteShiftsSubsequentRows(t *testing.T) {
	f := newFakeSheet(
		[3]string{"14", "3", "standup"},
		[3]string{"15", "7.5", "design review"},
		[3]string{"16", "8", "api work"},
	)
	repo := newTestRepository(f)

	require.NoError(t, repo.Delete(context.Background(), 2))

	result, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Record{
		{RowIndex: 1, Day: "14", Hours: "3", Content: "standup"},
		{RowIndex: 2, Day: "16", Hours: "8", Content: "api work"},
	}, result.Records)
}

func TestDeleteRejectsNonPositiveRowIndex(t *testing.T) {
	repo := newTestRepository(newFakeSheet())

	err := repo.Delete(context.Background(), 0)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestDeleteSheetLookupFailure(t *testing.T) {
	f := newFakeSheet([3]string{"15", "7.5", "design review"})
	f.sheetIDErr = errors.New("sheet not found")
	repo := newTestRepository(f)

	err := repo.Delete(context.Background(), 1)

	var gerr *GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Len(t, f.rows, 1)
}

// Full lifecycle: submit, list, edit, delete.
func TestSubmitUpdateDeleteScenario(t *testing.T) {
	ctx := context.Background()
	f := newFakeSheet(
		[3]string{"6月", "", ""},
		[3]string{"14", "3", "standup"},
		[3]string{"合計", "=SUM(B2:B2)", ""},
	)
	repo := newTestRepository(f)

	_, err := repo.Create(ctx, "2024-06-15", "7.5", "design review")
	require.NoError(t, err)

	result, err := repo.List(ctx)
	require.NoError(t, err)
	require.Contains(t, result.Records, Record{RowIndex: 3, Day: "15", Hours: "7.5", Content: "design review"})
	assert.Equal(t, "=SUM(B2:B3)", f.rows[3][1])

	require.NoError(t, repo.Update(ctx, 3, "15", "8", "design review"))

	result, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, result.Records, Record{RowIndex: 3, Day: "15", Hours: "8", Content: "design review"})

	require.NoError(t, repo.Delete(ctx, 3))

	result, err = repo.List(ctx)
	require.NoError(t, err)
	for _, rec := range result.Records {
		assert.NotEqual(t, "design review", rec.Content)
	}
}
