// Package jobs - фоновые задачи по расписанию cron.
package jobs

import (
	"context"
	"fmt"
	"time"

	"tunibet/internal/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type ListingCounter interface {
	CountListings(ctx context.Context) (open int, sold int, err error)
}

// RefreshListingGauges обновляет gauges открытых и проданных объявлений
func RefreshListingGauges(ctx context.Context, store ListingCounter, m *metrics.Metrics) error {
	open, sold, err := store.CountListings(ctx)
	if err != nil {
		return fmt.Errorf("count listings: %w", err)
	}
	m.OpenListings.Set(float64(open))
	m.SoldListings.Set(float64(sold))
	return nil
}

// Setup регистрирует задачи и сразу выполняет обновление метрик один раз.
// Запуск и остановка - на вызывающем (Start/Stop).
func Setup(schedule string, store ListingCounter, m *metrics.Metrics, log *zap.Logger, timeout time.Duration) (*cron.Cron, error) {
	c := cron.New()

	job := func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := RefreshListingGauges(ctx, store, m); err != nil {
			log.Warn("listing gauges refresh failed", zap.Error(err))
		}
	}

	if _, err := c.AddFunc(schedule, job); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", schedule, err)
	}
	job()
	return c, nil
}
