// Package alerts turns server-filtered alert lists into display entries.
//
// Lists are taken as authoritative: nothing here re-classifies or cross-checks
// them, so a medicine returned by two category queries shows up under both tabs.
package alerts

import (
	"fmt"
	"time"

	"github.com/musharraf10/MediMate/internal/errs"
	"github.com/musharraf10/MediMate/internal/model"
	"github.com/musharraf10/MediMate/internal/status"
)

// Tab selects one alert category.
type Tab string

const (
	TabExpired  Tab = "expired"
	TabExpiring Tab = "expiring"
	TabLowStock Tab = "lowstock"
)

// Tabs lists the categories in display order.
var Tabs = []Tab{TabExpired, TabExpiring, TabLowStock}

// ParseTab validates a user-supplied tab name.
func ParseTab(s string) (Tab, error) {
	for _, t := range Tabs {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown alert tab %q (want expired, expiring or lowstock)", errs.ErrValidation, s)
}

// Title is the heading shown above the tab.
func (t Tab) Title() string {
	switch t {
	case TabExpired:
		return "Expired Medicines"
	case TabExpiring:
		return "Expiring Soon"
	case TabLowStock:
		return "Low Stock"
	default:
		return string(t)
	}
}

// EmptyText is shown when the tab has nothing to report.
func (t Tab) EmptyText() string {
	switch t {
	case TabExpired:
		return "No expired medicines"
	case TabExpiring:
		return "No medicines expiring soon"
	case TabLowStock:
		return "No low stock medicines"
	default:
		return "Nothing to show"
	}
}

// Entry is one rendered alert line.
type Entry struct {
	Medicine model.Medicine
	Text     string
}

// Describe returns the alert text for m under tab t.
func Describe(t Tab, m model.Medicine, now time.Time) string {
	days := status.DaysUntilExpiry(m.ExpiryDate, now)
	switch t {
	case TabExpired:
		if days < 0 {
			days = -days
		}
		return fmt.Sprintf("Expired %d days ago", days)
	case TabExpiring:
		return fmt.Sprintf("Expires in %d days", days)
	case TabLowStock:
		return fmt.Sprintf("Only %d left in stock", m.Quantity)
	default:
		return ""
	}
}

// Build renders every medicine of list under tab t, preserving order.
func Build(t Tab, list []model.Medicine, now time.Time) []Entry {
	out := make([]Entry, 0, len(list))
	for _, m := range list {
		out = append(out, Entry{Medicine: m, Text: Describe(t, m, now)})
	}
	return out
}
