// Package events публикует доменные события ставок во внешние системы.
// Публикация идёт после commit и не влияет на результат операции.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type BetPlaced struct {
	BetNumber int64           `json:"bet_number"`
	CarID     int64           `json:"car_id"`
	UserID    int64           `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
	TsUnixMs  int64           `json:"ts_unix_ms"`
}

type BetAccepted struct {
	BetNumber int64           `json:"bet_number"`
	CarID     int64           `json:"car_id"`
	UserID    int64           `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	TsUnixMs  int64           `json:"ts_unix_ms"`
}

type Publisher interface {
	PublishBetPlaced(ctx context.Context, e BetPlaced) error
	PublishBetAccepted(ctx context.Context, e BetAccepted) error
}

// Nop - заглушка, когда ни Kafka, ни Redis не настроены
type Nop struct{}

func (Nop) PublishBetPlaced(context.Context, BetPlaced) error     { return nil }
func (Nop) PublishBetAccepted(context.Context, BetAccepted) error { return nil }

// Fanout рассылает событие во все приёмники и собирает ошибки
type Fanout []Publisher

func (f Fanout) PublishBetPlaced(ctx context.Context, e BetPlaced) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishBetPlaced(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) PublishBetAccepted(ctx context.Context, e BetAccepted) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishBetAccepted(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
