package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/musharraf10/MediMate/internal/metrics"
	"github.com/musharraf10/MediMate/internal/model"
)

func TestDaily_Next(t *testing.T) {
	d := Daily{Hour: 9, Minute: 30, Location: time.UTC}

	before := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC), d.Next(before))

	exact := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 6, 16, 9, 30, 0, 0, time.UTC), d.Next(exact))

	endOfMonth := time.Date(2025, 6, 30, 23, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC), d.Next(endOfMonth))
}

func TestHourly_Next(t *testing.T) {
	h := Hourly{Location: time.UTC}
	require.Equal(t, time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC), h.Next(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)))
	require.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), h.Next(time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC)))
}

type soon struct{ d time.Duration }

func (s soon) Next(after time.Time) time.Time { return after.Add(s.d) }

func TestScheduler_RunStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	var runs, failures atomic.Int32
	m := metrics.New()
	s := New(zaptest.NewLogger(t), m,
		Job{Name: "tick", Schedule: soon{5 * time.Millisecond}, Run: func(context.Context) error {
			runs.Add(1)
			return nil
		}},
		Job{Name: "flaky", Schedule: soon{5 * time.Millisecond}, Run: func(context.Context) error {
			failures.Add(1)
			return errors.New("boom")
		}},
		Job{Name: "idle", Schedule: Daily{Hour: 3, Location: time.UTC}, Run: func(context.Context) error { return nil }},
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return runs.Load() >= 2 && failures.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	require.GreaterOrEqual(t, testutil.ToFloat64(m.JobRuns.WithLabelValues("flaky", "error")), 2.0)
}

func TestScheduler_RunOnceRecoversPanic(t *testing.T) {
	s := New(zaptest.NewLogger(t), nil)
	err := s.RunOnce(context.Background(), Job{Name: "bad", Run: func(context.Context) error { panic("oops") }})
	require.Error(t, err)
	require.Contains(t, err.Error(), "oops")
}

type fakeLister struct {
	out []model.Medicine
	err error
}

func (f fakeLister) AllExpired(context.Context) ([]model.Medicine, error) { return f.out, f.err }

func TestExpiredReport(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := metrics.New()
	run := ExpiredReport(fakeLister{out: []model.Medicine{
		{Name: "Aspirin", UserID: 2, ExpiryDate: model.NewDate(2025, 6, 1)},
		{Name: "Insulin", UserID: 1, ExpiryDate: model.NewDate(2025, 5, 1)},
		{Name: "Ibuprofen", UserID: 2, ExpiryDate: model.NewDate(2025, 6, 2)},
	}}, m, zap.New(core))

	require.NoError(t, run(context.Background()))
	require.Equal(t, 3.0, testutil.ToFloat64(m.ExpiredFound))
	require.Equal(t, 3, logs.FilterMessage("expired medicine").Len())

	perUser := logs.FilterMessage("user has expired medicines").All()
	require.Len(t, perUser, 2)
	require.Equal(t, int64(1), perUser[0].ContextMap()["user_id"])
	require.Equal(t, int64(2), perUser[1].ContextMap()["count"])

	core, logs = observer.New(zap.InfoLevel)
	require.NoError(t, ExpiredReport(fakeLister{}, m, zap.New(core))(context.Background()))
	require.Equal(t, 0.0, testutil.ToFloat64(m.ExpiredFound))
	require.Equal(t, 1, logs.FilterMessage("no expired medicines found").Len())

	boom := errors.New("db down")
	require.ErrorIs(t, ExpiredReport(fakeLister{err: boom}, m, zap.NewNop())(context.Background()), boom)
}

func TestExpiringReminder(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	now := func() time.Time { return time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC) }
	require.NoError(t, ExpiringReminder(now, zap.New(core))(context.Background()))
	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "2025-06-15", entries[0].ContextMap()["from"])
	require.Equal(t, "2025-07-15", entries[0].ContextMap()["to"])
}

func TestHealthCheck(t *testing.T) {
	require.NoError(t, HealthCheck(func(context.Context) error { return nil }, zap.NewNop())(context.Background()))
	boom := errors.New("unreachable")
	require.ErrorIs(t, HealthCheck(func(context.Context) error { return boom }, zap.NewNop())(context.Background()), boom)
}

func TestJobs(t *testing.T) {
	jobs := Jobs(fakeLister{}, func(context.Context) error { return nil }, nil, time.UTC, zap.NewNop())
	require.Len(t, jobs, 3)
	require.Equal(t, JobExpiredReport, jobs[0].Name)
	require.Equal(t, Daily{Hour: 9, Minute: 0, Location: time.UTC}, jobs[0].Schedule)
	require.Equal(t, Daily{Hour: 9, Minute: 30, Location: time.UTC}, jobs[1].Schedule)
	require.Equal(t, Hourly{Location: time.UTC}, jobs[2].Schedule)
}
