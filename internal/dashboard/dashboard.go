// Package dashboard loads inventory lists into an explicit, caller-owned
// Snapshot and derives the figures shown on the dashboard.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/musharraf10/MediMate/internal/model"
	"github.com/musharraf10/MediMate/internal/status"
)

// RecentLimit is how many recently added medicines the dashboard lists.
const RecentLimit = 5

// API is the subset of the inventory client the loaders need.
type API interface {
	List(ctx context.Context, userID int64) ([]model.Medicine, error)
	Expired(ctx context.Context, userID int64) ([]model.Medicine, error)
	ExpiringSoon(ctx context.Context, userID int64) ([]model.Medicine, error)
	LowStock(ctx context.Context, userID int64, threshold int) ([]model.Medicine, error)
}

// Snapshot is one wholesale load of a user's inventory. Lists are replaced,
// never patched; a list whose request failed is empty.
type Snapshot struct {
	UserID       int64
	All          []model.Medicine
	Expired      []model.Medicine
	ExpiringSoon []model.Medicine
	LowStock     []model.Medicine
	LoadedAt     time.Time
}

// Stats are the dashboard counters.
type Stats struct {
	Total        int
	Expired      int
	ExpiringSoon int
	LowStock     int
	Good         int
}

// LoadAll fetches every medicine of userID. On failure the returned list is
// empty (not nil) alongside the error.
func LoadAll(ctx context.Context, api API, userID int64) ([]model.Medicine, error) {
	return fetch(func() ([]model.Medicine, error) { return api.List(ctx, userID) }, "medicines")
}

// LoadAlerts fetches the three alert categories in parallel.
func LoadAlerts(ctx context.Context, api API, userID int64, now time.Time) (Snapshot, error) {
	snap := Snapshot{UserID: userID, LoadedAt: now}
	var g errgroup.Group
	goAlerts(ctx, &g, api, &snap)
	err := g.Wait()
	return snap, err
}

// Load fetches all four lists in parallel. It waits for every request and
// returns the first error; failed lists are empty, the rest are kept.
func Load(ctx context.Context, api API, userID int64, now time.Time) (Snapshot, error) {
	snap := Snapshot{UserID: userID, LoadedAt: now}
	var g errgroup.Group
	g.Go(func() (err error) {
		snap.All, err = LoadAll(ctx, api, userID)
		return err
	})
	goAlerts(ctx, &g, api, &snap)
	err := g.Wait()
	return snap, err
}

func goAlerts(ctx context.Context, g *errgroup.Group, api API, snap *Snapshot) {
	userID := snap.UserID
	g.Go(func() (err error) {
		snap.Expired, err = fetch(func() ([]model.Medicine, error) { return api.Expired(ctx, userID) }, "expired medicines")
		return err
	})
	g.Go(func() (err error) {
		snap.ExpiringSoon, err = fetch(func() ([]model.Medicine, error) { return api.ExpiringSoon(ctx, userID) }, "expiring medicines")
		return err
	})
	g.Go(func() (err error) {
		snap.LowStock, err = fetch(func() ([]model.Medicine, error) {
			return api.LowStock(ctx, userID, status.LowStockThreshold)
		}, "low stock medicines")
		return err
	})
}

func fetch(call func() ([]model.Medicine, error), what string) ([]model.Medicine, error) {
	list, err := call()
	if err != nil {
		return []model.Medicine{}, fmt.Errorf("load %s: %w", what, err)
	}
	if list == nil {
		list = []model.Medicine{}
	}
	return list, nil
}

// Summarize counts list by status.Classify precedence, so a medicine lands in
// exactly one bucket.
func Summarize(list []model.Medicine, now time.Time) Stats {
	st := Stats{Total: len(list)}
	for _, m := range list {
		switch status.Classify(m, now) {
		case status.Expired:
			st.Expired++
		case status.ExpiringSoon:
			st.ExpiringSoon++
		case status.LowStock:
			st.LowStock++
		default:
			st.Good++
		}
	}
	return st
}

// Recent returns up to n medicines, most recently added first. list is not modified.
func Recent(list []model.Medicine, n int) []model.Medicine {
	out := append([]model.Medicine(nil), list...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].AddedDate.After(out[j].AddedDate) })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Filter keeps medicines whose name contains term, case-insensitively.
// A blank term keeps everything.
func Filter(list []model.Medicine, term string) []model.Medicine {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return list
	}
	out := make([]model.Medicine, 0, len(list))
	for _, m := range list {
		if strings.Contains(strings.ToLower(m.Name), term) {
			out = append(out, m)
		}
	}
	return out
}
