package scheduler

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/musharraf10/MediMate/internal/metrics"
	"github.com/musharraf10/MediMate/internal/model"
	"github.com/musharraf10/MediMate/internal/status"
)

const (
	JobExpiredReport    = "expired-report"
	JobExpiringReminder = "expiring-reminder"
	JobHealthCheck      = "health-check"
)

// ExpiredLister is the service call behind the daily report.
type ExpiredLister interface {
	AllExpired(ctx context.Context) ([]model.Medicine, error)
}

// ExpiredReport logs every expired medicine across users, then a per-user
// count, and publishes the total to the expired gauge.
func ExpiredReport(svc ExpiredLister, m *metrics.Metrics, log *zap.Logger) func(context.Context) error {
	return func(ctx context.Context) error {
		list, err := svc.AllExpired(ctx)
		if err != nil {
			return err
		}
		m.SetExpired(len(list))
		if len(list) == 0 {
			log.Info("no expired medicines found")
			return nil
		}
		log.Warn("expired medicines found", zap.Int("count", len(list)))
		byUser := map[int64]int{}
		for _, med := range list {
			log.Info("expired medicine",
				zap.String("name", med.Name),
				zap.String("expired_on", med.ExpiryDate.String()),
				zap.Int("quantity", med.Quantity),
				zap.Int64("user_id", med.UserID),
			)
			byUser[med.UserID]++
		}
		users := make([]int64, 0, len(byUser))
		for u := range byUser {
			users = append(users, u)
		}
		sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
		for _, u := range users {
			log.Info("user has expired medicines", zap.Int64("user_id", u), zap.Int("count", byUser[u]))
		}
		return nil
	}
}

// ExpiringReminder logs the reminder window of the expiring-soon check.
func ExpiringReminder(now func() time.Time, log *zap.Logger) func(context.Context) error {
	return func(context.Context) error {
		today := model.DateOf(now())
		log.Info("reminder: check medicines expiring soon",
			zap.String("from", today.String()),
			zap.String("to", today.AddDays(status.ExpiringSoonDays).String()),
		)
		return nil
	}
}

// HealthCheck pings storage and logs the outcome.
func HealthCheck(ping func(context.Context) error, log *zap.Logger) func(context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			return err
		}
		log.Info("system healthy")
		return nil
	}
}

// Jobs assembles the standard job set: the 09:00 expired report, the 09:30
// expiring-soon reminder and the hourly health check.
func Jobs(svc ExpiredLister, ping func(context.Context) error, m *metrics.Metrics, loc *time.Location, log *zap.Logger) []Job {
	return []Job{
		{Name: JobExpiredReport, Schedule: Daily{Hour: 9, Minute: 0, Location: loc}, Run: ExpiredReport(svc, m, log)},
		{Name: JobExpiringReminder, Schedule: Daily{Hour: 9, Minute: 30, Location: loc}, Run: ExpiringReminder(time.Now, log)},
		{Name: JobHealthCheck, Schedule: Hourly{Location: loc}, Run: HealthCheck(ping, log)},
	}
}
