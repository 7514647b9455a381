package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"customerbooking/internal/config"
	"customerbooking/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const timestampLayout = "2006-01-02 15:04:05"

// ErrRowNotFound is returned by FindBookingRow when column A has no such id.
var ErrRowNotFound = errors.New("booking row not found")

var headers = []interface{}{
	"ID", "Title", "Status", "Start Date", "End Date",
	"Customer ID", "Brand ID", "Brand Name", "Created At", "Updated At",
}

// BookingSheet mirrors bookings into one tab of a spreadsheet, one row per
// booking keyed by the id in column A.
type BookingSheet struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
	rowCache      map[int64]int
	cacheMu       sync.RWMutex
}

// NewBookingSheet authenticates with a service account key file.
func NewBookingSheet(ctx context.Context, cfg config.SheetsConfig) (*BookingSheet, error) {
	credentialsJSON, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return newBookingSheet(srv, cfg.SpreadsheetID, cfg.SheetName), nil
}

func newBookingSheet(srv *sheets.Service, spreadsheetID, sheetName string) *BookingSheet {
	return &BookingSheet{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		rowCache:      make(map[int64]int),
	}
}

func (s *BookingSheet) cellRange(format string, args ...interface{}) string {
	return s.sheetName + "!" + fmt.Sprintf(format, args...)
}

func (s *BookingSheet) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.cellRange("A1")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// EnsureHeader writes the column titles into row 1.
func (s *BookingSheet) EnsureHeader(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, s.cellRange("A1:J1"), &sheets.ValueRange{
		Values: [][]interface{}{headers},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// WarmUpCache rebuilds the id -> row index from column A.
func (s *BookingSheet) WarmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.cellRange("A:A")).Context(ctx).Do()
	if err != nil {
		return err
	}

	rows := make(map[int64]int, len(resp.Values))
	for i, row := range resp.Values {
		if id := cellID(row); id > 0 {
			rows[id] = i + 1
		}
	}

	s.cacheMu.Lock()
	s.rowCache = rows
	s.cacheMu.Unlock()
	return nil
}

func (s *BookingSheet) AppendBooking(ctx context.Context, booking *models.Booking) error {
	resp, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, s.cellRange("A:A"), &sheets.ValueRange{
		Values: [][]interface{}{bookingRowValues(booking)},
	}).ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return err
	}

	if resp.Updates != nil {
		if row := rangeStartRow(resp.Updates.UpdatedRange); row > 0 {
			s.setCachedRow(booking.ID, row)
		}
	}
	return nil
}

// UpsertBooking rewrites the booking's row, appending one if the id is not in the sheet yet.
func (s *BookingSheet) UpsertBooking(ctx context.Context, booking *models.Booking) error {
	if booking == nil {
		return errors.New("booking is nil")
	}

	rowIdx, err := s.FindBookingRow(ctx, booking.ID)
	if errors.Is(err, ErrRowNotFound) {
		return s.AppendBooking(ctx, booking)
	}
	if err != nil {
		return err
	}

	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, s.cellRange("A%d:J%d", rowIdx, rowIdx), &sheets.ValueRange{
		Values: [][]interface{}{bookingRowValues(booking)},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// DeleteBookingRow blanks the booking's row. A booking that was never mirrored is not an error.
func (s *BookingSheet) DeleteBookingRow(ctx context.Context, bookingID int64) error {
	rowIdx, err := s.FindBookingRow(ctx, bookingID)
	if errors.Is(err, ErrRowNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.service.Spreadsheets.Values.Clear(s.spreadsheetID, s.cellRange("A%d:J%d", rowIdx, rowIdx), &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err == nil {
		s.deleteCachedRow(bookingID)
	}
	return err
}

// FindBookingRow returns the 1-based row of bookingID, consulting the cache first.
func (s *BookingSheet) FindBookingRow(ctx context.Context, bookingID int64) (int, error) {
	if bookingID <= 0 {
		return 0, errors.New("booking id is required")
	}
	if row, ok := s.getCachedRow(bookingID); ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.cellRange("A:A")).Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	for i, row := range resp.Values {
		if cellID(row) == bookingID {
			s.setCachedRow(bookingID, i+1)
			return i + 1, nil
		}
	}
	return 0, ErrRowNotFound
}

func (s *BookingSheet) getCachedRow(id int64) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *BookingSheet) setCachedRow(id int64, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[id] = row
}

func (s *BookingSheet) deleteCachedRow(id int64) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	delete(s.rowCache, id)
}

func bookingRowValues(b *models.Booking) []interface{} {
	var brandID interface{} = ""
	if b.BrandID != nil {
		brandID = *b.BrandID
	}
	return []interface{}{
		b.ID,
		b.Title,
		string(b.Status),
		b.StartDate.String(),
		b.EndDate.String(),
		b.CustomerID,
		brandID,
		b.BrandName,
		b.CreatedAt.Format(timestampLayout),
		b.UpdatedAt.Format(timestampLayout),
	}
}

// cellID reads column A, which the API returns as a number or a string.
func cellID(row []interface{}) int64 {
	if len(row) == 0 {
		return 0
	}
	switch v := row[0].(type) {
	case float64:
		return int64(v)
	case string:
		id, _ := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return id
	}
	return 0
}

// rangeStartRow extracts 10 from "Bookings!A10:J10".
func rangeStartRow(a1 string) int {
	cell := a1[strings.LastIndex(a1, "!")+1:]
	if i := strings.IndexByte(cell, ':'); i >= 0 {
		cell = cell[:i]
	}
	row, err := strconv.Atoi(strings.TrimLeft(cell, "ABCDEFGHIJKLMNOPQRSTUVWXYZ$"))
	if err != nil {
		return 0
	}
	return row
}
