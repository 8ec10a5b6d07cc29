// Package report exports an inventory snapshot as an xlsx workbook.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/musharraf10/MediMate/internal/alerts"
	"github.com/musharraf10/MediMate/internal/dashboard"
	"github.com/musharraf10/MediMate/internal/model"
	"github.com/musharraf10/MediMate/internal/status"
)

const (
	SheetMedicines = "Medicines"
	SheetExpired   = "Expired"
	SheetExpiring  = "Expiring Soon"
	SheetLowStock  = "Low Stock"
)

var header = []interface{}{"ID", "Name", "Quantity", "Expiry Date", "Days Left", "Status", "Added"}

// Write renders snap into a workbook with one sheet for the full list and
// one per alert tab, and writes it to w.
func Write(w io.Writer, snap dashboard.Snapshot, now time.Time) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("report style: %w", err)
	}

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), SheetMedicines); err != nil {
		return fmt.Errorf("report sheet: %w", err)
	}
	if err := writeSheet(f, SheetMedicines, bold, snap.All, now, nil); err != nil {
		return err
	}

	tabs := []struct {
		name string
		tab  alerts.Tab
		list []model.Medicine
	}{
		{SheetExpired, alerts.TabExpired, snap.Expired},
		{SheetExpiring, alerts.TabExpiring, snap.ExpiringSoon},
		{SheetLowStock, alerts.TabLowStock, snap.LowStock},
	}
	for _, t := range tabs {
		if _, err := f.NewSheet(t.name); err != nil {
			return fmt.Errorf("report sheet %q: %w", t.name, err)
		}
		tab := t.tab
		if err := writeSheet(f, t.name, bold, t.list, now, &tab); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("report write: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, bold int, list []model.Medicine, now time.Time, tab *alerts.Tab) error {
	hdr := header
	if tab != nil {
		hdr = append(append([]interface{}(nil), header...), "Alert")
	}
	if err := f.SetSheetRow(sheet, "A1", &hdr); err != nil {
		return fmt.Errorf("report %q header: %w", sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(hdr), 1)
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("report %q header style: %w", sheet, err)
	}
	_ = f.SetColWidth(sheet, "B", "B", 28)

	for i, m := range list {
		row := []interface{}{
			m.ID,
			m.Name,
			m.Quantity,
			m.ExpiryDate.String(),
			status.DaysUntilExpiry(m.ExpiryDate, now),
			status.Classify(m, now).Label(),
			addedCell(m.AddedDate),
		}
		if tab != nil {
			row = append(row, alerts.Describe(*tab, m, now))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("report %q row %d: %w", sheet, i+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("report %q row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func addedCell(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
