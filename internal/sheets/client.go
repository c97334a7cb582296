package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client wraps the Google Sheets v4 service. It is constructed once at
// startup and reused for every request; it holds no per-request state.
type Client struct {
	service *sheets.Service
}

func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		service: service,
	}, nil
}

// ReadRange reads cell values from the given A1 range. Numbers come back
// unformatted; date cells keep their display string.
func (c *Client) ReadRange(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error) {
	resp, err := c.service.Spreadsheets.Values.Get(spreadsheetID, readRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", readRange, err)
	}

	return resp.Values, nil
}

// ReadFormulas reads the given A1 range with formula rendering, so a cell
// holding =SUM(...) comes back as the formula text rather than its value.
func (c *Client) ReadFormulas(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error) {
	resp, err := c.service.Spreadsheets.Values.Get(spreadsheetID, readRange).
		ValueRenderOption("FORMULA").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read formulas in range %s: %w", readRange, err)
	}

	return resp.Values, nil
}

// UpdateRange writes values into the given A1 range. USER_ENTERED input mode
// means strings starting with "=" are interpreted as formulas.
func (c *Client) UpdateRange(ctx context.Context, spreadsheetID, updateRange string, values [][]interface{}) error {
	valueRange := &sheets.ValueRange{
		Values: values,
	}

	_, err := c.service.Spreadsheets.Values.Update(spreadsheetID, updateRange, valueRange).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update range %s: %w", updateRange, err)
	}

	return nil
}

// AppendRows appends rows after the last populated row of the given range.
func (c *Client) AppendRows(ctx context.Context, spreadsheetID, appendRange string, rows [][]interface{}) error {
	valueRange := &sheets.ValueRange{
		Values: rows,
	}

	_, err := c.service.Spreadsheets.Values.Append(spreadsheetID, appendRange, valueRange).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append rows: %w", err)
	}

	return nil
}

// InsertRows inserts count blank rows before startIndex (0-based), inheriting
// formatting from the row above. Rows at and below startIndex shift down.
func (c *Client) InsertRows(ctx context.Context, spreadsheetID string, sheetID, startIndex, count int64) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				InsertDimension: &sheets.InsertDimensionRequest{
					Range: &sheets.DimensionRange{
						SheetId:    sheetID,
						Dimension:  "ROWS",
						StartIndex: startIndex,
						EndIndex:   startIndex + count,
					},
					InheritFromBefore: true,
				},
			},
		},
	}

	_, err := c.service.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to insert rows at index %d: %w", startIndex, err)
	}

	return nil
}

// DeleteRows removes the rows in [startIndex, endIndex) (0-based). Rows below
// shift up.
func (c *Client) DeleteRows(ctx context.Context, spreadsheetID string, sheetID, startIndex, endIndex int64) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				DeleteDimension: &sheets.DeleteDimensionRequest{
					Range: &sheets.DimensionRange{
						SheetId:    sheetID,
						Dimension:  "ROWS",
						StartIndex: startIndex,
						EndIndex:   endIndex,
					},
				},
			},
		},
	}

	_, err := c.service.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to delete rows [%d, %d): %w", startIndex, endIndex, err)
	}

	return nil
}

// SheetID resolves the numeric sheet ID of the tab with the given display
// title. Structural batchUpdate requests address tabs by ID, not title.
func (c *Client) SheetID(ctx context.Context, spreadsheetID, title string) (int64, error) {
	meta, err := c.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to get spreadsheet metadata: %w", err)
	}

	for _, sheet := range meta.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			return sheet.Properties.SheetId, nil
		}
	}

	return 0, fmt.Errorf("sheet %q not found in spreadsheet", title)
}
