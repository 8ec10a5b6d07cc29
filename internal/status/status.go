// Package status classifies medicines into lifecycle states.
//
// The thresholds here are shared by the CLI badges and the inventory service
// queries so both sides agree on what "expiring soon" and "low stock" mean.
package status

import (
	"time"

	"github.com/musharraf10/MediMate/internal/model"
)

const (
	// ExpiringSoonDays is the inclusive window, in days from today, for ExpiringSoon.
	ExpiringSoonDays = 30
	// LowStockThreshold is the quantity below which a medicine is LowStock.
	LowStockThreshold = 10
)

// Status is the derived lifecycle state of a medicine. It is never stored.
type Status int

const (
	Good Status = iota
	LowStock
	ExpiringSoon
	Expired
)

// String returns the kebab-case identifier used for styling and flags.
func (s Status) String() string {
	switch s {
	case Expired:
		return "expired"
	case ExpiringSoon:
		return "expiring-soon"
	case LowStock:
		return "low-stock"
	default:
		return "good"
	}
}

// Label returns the human readable badge text.
func (s Status) Label() string {
	switch s {
	case Expired:
		return "Expired"
	case ExpiringSoon:
		return "Expiring Soon"
	case LowStock:
		return "Low Stock"
	default:
		return "Good"
	}
}

// DaysUntilExpiry returns whole calendar days from the day of now (in now's
// location) to expiry. Clock time is ignored; negative means already expired.
func DaysUntilExpiry(expiry model.Date, now time.Time) int {
	return model.DateOf(now).DaysUntil(expiry)
}

// ExpiryStatus classifies by expiry date only: Expired, ExpiringSoon or Good.
func ExpiryStatus(expiry model.Date, now time.Time) Status {
	days := DaysUntilExpiry(expiry, now)
	switch {
	case days < 0:
		return Expired
	case days <= ExpiringSoonDays:
		return ExpiringSoon
	default:
		return Good
	}
}

// QuantityLow reports whether q is under LowStockThreshold.
func QuantityLow(q int) bool { return q < LowStockThreshold }

// Classify maps a medicine to exactly one status. Precedence, first match wins:
// Expired, ExpiringSoon, LowStock, Good. An expiring medicine with low stock is
// reported as ExpiringSoon only.
func Classify(m model.Medicine, now time.Time) Status {
	if s := ExpiryStatus(m.ExpiryDate, now); s != Good {
		return s
	}
	if QuantityLow(m.Quantity) {
		return LowStock
	}
	return Good
}
