// ABOUTME: Spreadsheet export of the booking list
// ABOUTME: Writes one styled row per booking with status-coloured cells

package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nandasurya23/resource-booking-cli/internal/booking"
)

// SheetName is the worksheet holding the exported bookings
const SheetName = "Bookings"

var headers = []string{"ID", "Resource", "Start", "End", "Hours", "Status"}

var statusFills = map[booking.Status]string{
	booking.StatusPending:   "#FFEB9C",
	booking.StatusApproved:  "#C6EFCE",
	booking.StatusCancelled: "#FFC7CE",
}

// Options controls how times and resource names are rendered
type Options struct {
	Catalog  booking.Catalog
	Location *time.Location
}

// SaveXLSX writes the bookings to a new workbook at path
func SaveXLSX(path string, bookings []booking.Booking, opts Options) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating export directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating export file: %w", err)
	}
	if err := WriteXLSX(f, bookings, opts); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// WriteXLSX streams a workbook with one row per booking, in the given order
func WriteXLSX(w io.Writer, bookings []booking.Booking, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}

	if err := writeHeader(f); err != nil {
		return err
	}

	styles, err := statusStyles(f)
	if err != nil {
		return err
	}

	for i, b := range bookings {
		row := i + 2
		values := []interface{}{
			b.ID,
			opts.Catalog.Name(b.ResourceID),
			booking.FormatDisplay(b.StartTime, opts.Location),
			booking.FormatDisplay(b.EndTime, opts.Location),
			b.Duration().Hours(),
			b.Status.Label(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("error writing row %d: %w", row, err)
		}

		if style, ok := styles[b.Status]; ok {
			statusCell, _ := excelize.CoordinatesToCellName(len(headers), row)
			if err := f.SetCellStyle(SheetName, statusCell, statusCell, style); err != nil {
				return fmt.Errorf("error styling row %d: %w", row, err)
			}
		}
	}

	f.SetColWidth(SheetName, "A", "A", 8)
	f.SetColWidth(SheetName, "B", "B", 24)
	f.SetColWidth(SheetName, "C", "D", 20)
	f.SetColWidth(SheetName, "E", "F", 12)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, style); err != nil {
		return fmt.Errorf("error styling header: %w", err)
	}
	return f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func statusStyles(f *excelize.File) (map[booking.Status]int, error) {
	styles := make(map[booking.Status]int, len(statusFills))
	for status, color := range statusFills {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return nil, fmt.Errorf("error creating %s style: %w", status, err)
		}
		styles[status] = id
	}
	return styles, nil
}
