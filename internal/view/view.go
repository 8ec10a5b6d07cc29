// Package view renders inventory data for the terminal.
package view

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/musharraf10/MediMate/internal/alerts"
	"github.com/musharraf10/MediMate/internal/dashboard"
	"github.com/musharraf10/MediMate/internal/model"
	"github.com/musharraf10/MediMate/internal/status"
)

var (
	colorExpired  = lipgloss.Color("9")
	colorExpiring = lipgloss.Color("214")
	colorLow      = lipgloss.Color("12")
	colorGood     = lipgloss.Color("10")
	colorMuted    = lipgloss.Color("245")

	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	cardStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
)

func statusColor(s status.Status) lipgloss.Color {
	switch s {
	case status.Expired:
		return colorExpired
	case status.ExpiringSoon:
		return colorExpiring
	case status.LowStock:
		return colorLow
	default:
		return colorGood
	}
}

// Badge renders the status label in its color.
func Badge(s status.Status) string {
	return lipgloss.NewStyle().Foreground(statusColor(s)).Bold(true).Render(s.Label())
}

// FormatDate renders a date like "Jan 2, 2006".
func FormatDate(d model.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.Time().Format("Jan 2, 2006")
}

func quantityCell(q int) string {
	s := strconv.Itoa(q)
	if status.QuantityLow(q) {
		return lipgloss.NewStyle().Foreground(colorLow).Render(s + " (low)")
	}
	return s
}

func expiryCell(d model.Date, now time.Time) string {
	s := FormatDate(d)
	switch st := status.ExpiryStatus(d, now); st {
	case status.Expired, status.ExpiringSoon:
		return lipgloss.NewStyle().Foreground(statusColor(st)).Render(s)
	default:
		return s
	}
}

// Dashboard renders the stat cards and the recently added list.
func Dashboard(w io.Writer, st dashboard.Stats, recent []model.Medicine, now time.Time) error {
	card := func(label string, n int, c lipgloss.Color) string {
		return cardStyle.BorderForeground(c).Render(
			lipgloss.NewStyle().Bold(true).Foreground(c).Render(strconv.Itoa(n)) + "\n" + label,
		)
	}
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total Medicines", st.Total, colorGood),
		card("Expired", st.Expired, colorExpired),
		card("Expiring Soon", st.ExpiringSoon, colorExpiring),
		card("Low Stock", st.LowStock, colorLow),
	)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Dashboard"))
	b.WriteString("\n")
	b.WriteString(cards)
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render("Recent Medicines"))
	b.WriteString("\n")
	if len(recent) == 0 {
		b.WriteString(emptyState("No medicines found", "Add your first medicine to get started"))
	} else {
		for _, m := range recent {
			fmt.Fprintf(&b, "%s  %s\n  %s\n",
				lipgloss.NewStyle().Bold(true).Render(m.Name),
				Badge(status.Classify(m, now)),
				mutedStyle.Render(fmt.Sprintf("Quantity: %d | Expires: %s", m.Quantity, FormatDate(m.ExpiryDate))),
			)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Grid renders the medicine table.
func Grid(w io.Writer, list []model.Medicine, now time.Time) error {
	if len(list) == 0 {
		_, err := io.WriteString(w, emptyState("No medicines found", "Try a different search or add a medicine"))
		return err
	}
	rows := make([][]string, 0, len(list))
	for _, m := range list {
		rows = append(rows, []string{
			strconv.FormatInt(m.ID, 10),
			m.Name,
			quantityCell(m.Quantity),
			expiryCell(m.ExpiryDate, now),
			Badge(status.Classify(m, now)),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("ID", "NAME", "QUANTITY", "EXPIRES", "STATUS").
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.String())
	return err
}

// Alerts renders one alert tab with a header listing all tab sizes.
func Alerts(w io.Writer, snap dashboard.Snapshot, tab alerts.Tab, now time.Time) error {
	counts := map[alerts.Tab]int{
		alerts.TabExpired:  len(snap.Expired),
		alerts.TabExpiring: len(snap.ExpiringSoon),
		alerts.TabLowStock: len(snap.LowStock),
	}
	var list []model.Medicine
	switch tab {
	case alerts.TabExpired:
		list = snap.Expired
	case alerts.TabExpiring:
		list = snap.ExpiringSoon
	case alerts.TabLowStock:
		list = snap.LowStock
	}

	var b strings.Builder
	tabs := make([]string, 0, len(alerts.Tabs))
	for _, t := range alerts.Tabs {
		label := fmt.Sprintf("%s (%d)", t.Title(), counts[t])
		if t == tab {
			label = lipgloss.NewStyle().Bold(true).Underline(true).Render(label)
		} else {
			label = mutedStyle.Render(label)
		}
		tabs = append(tabs, label)
	}
	b.WriteString(strings.Join(tabs, "  "))
	b.WriteString("\n\n")

	entries := alerts.Build(tab, list, now)
	if len(entries) == 0 {
		b.WriteString(emptyState(tab.EmptyText(), ""))
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "%s  %s\n  %s\n",
			lipgloss.NewStyle().Bold(true).Render(e.Medicine.Name),
			mutedStyle.Render(fmt.Sprintf("#%d, qty %d, expires %s", e.Medicine.ID, e.Medicine.Quantity, FormatDate(e.Medicine.ExpiryDate))),
			e.Text,
		)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Medicine renders a single record.
func Medicine(w io.Writer, m model.Medicine, now time.Time) error {
	added := "-"
	if !m.AddedDate.IsZero() {
		added = m.AddedDate.Local().Format("Jan 2, 2006 15:04")
	}
	_, err := fmt.Fprintf(w, "%s  %s\n  ID:       %d\n  Quantity: %s\n  Expires:  %s (%d days)\n  Added:    %s\n",
		lipgloss.NewStyle().Bold(true).Render(m.Name),
		Badge(status.Classify(m, now)),
		m.ID,
		quantityCell(m.Quantity),
		expiryCell(m.ExpiryDate, now),
		status.DaysUntilExpiry(m.ExpiryDate, now),
		added,
	)
	return err
}

func emptyState(title, hint string) string {
	s := lipgloss.NewStyle().Bold(true).Render(title) + "\n"
	if hint != "" {
		s += mutedStyle.Render(hint) + "\n"
	}
	return s
}
