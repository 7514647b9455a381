package export

import (
	"fmt"
	"io"
	"time"

	"customerbooking/internal/models"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Bookings"

// ContentType is the MIME type of the workbook written by WriteBookings.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []string{"ID", "Title", "Status", "Start", "End", "Customer ID", "Brand", "Created"}

var statusColors = map[models.BookingStatus]string{
	models.BookingPending:   "#FFEB9C",
	models.BookingConfirmed: "#C6EFCE",
	models.BookingCancelled: "#FFC7CE",
	models.BookingCompleted: "#DDEBF7",
}

// FileName is the download name for an export of [from, to].
func FileName(from, to time.Time) string {
	return fmt.Sprintf("bookings_%s_to_%s.xlsx", from.Format(models.DateLayout), to.Format(models.DateLayout))
}

// WriteBookings renders bookings as a single-sheet workbook: a period title in
// row 1, column headers in row 2, one booking per row after that.
func WriteBookings(w io.Writer, bookings []*models.Booking, from, to time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	title := fmt.Sprintf("Period: %s - %s", from.Format(models.DateLayout), to.Format(models.DateLayout))
	_ = f.SetCellValue(SheetName, "A1", title)
	_ = f.MergeCell(SheetName, "A1", lastCol+"1")
	if style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err == nil {
		_ = f.SetCellStyle(SheetName, "A1", "A1", style)
	}

	if err := f.SetSheetRow(SheetName, "A2", &headers); err != nil {
		return fmt.Errorf("error writing headers: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	}); err == nil {
		_ = f.SetCellStyle(SheetName, "A2", lastCol+"2", style)
	}

	styles := make(map[models.BookingStatus]int, len(statusColors))
	for status, color := range statusColors {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return fmt.Errorf("error creating style: %w", err)
		}
		styles[status] = style
	}

	for i, b := range bookings {
		row := i + 3
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []interface{}{
			b.ID,
			b.Title,
			string(b.Status),
			b.StartDate.String(),
			b.EndDate.String(),
			b.CustomerID,
			b.BrandName,
			b.CreatedAt.Format(time.RFC3339),
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("error writing booking %d: %w", b.ID, err)
		}
		if style, ok := styles[b.Status]; ok {
			statusCell, _ := excelize.CoordinatesToCellName(3, row)
			_ = f.SetCellStyle(SheetName, statusCell, statusCell, style)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 8)
	_ = f.SetColWidth(SheetName, "B", "B", 30)
	_ = f.SetColWidth(SheetName, "C", lastCol, 16)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}
