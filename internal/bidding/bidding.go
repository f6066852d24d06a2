// Package bidding - жизненный цикл ставок: автомобиль открыт для ставок,
// пока дилер не примет одну из них; после этого он продан навсегда.
package bidding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tunibet/db"
	"tunibet/internal/apperr"
	"tunibet/internal/events"
	"tunibet/internal/metrics"
	"tunibet/models"

	"go.uber.org/zap"
)

// RecentLimit - сколько последних ставок отдаёт /bets/last-bets
const RecentLimit = 5

const AcceptedTitle = "Bet accepted"

type Store interface {
	PlaceBet(ctx context.Context, b *models.Bet) error
	AcceptBet(ctx context.Context, ab *models.AcceptedBet, n *models.Notification) error
	RecentBets(ctx context.Context, carID int64, limit int) ([]models.Bet, error)
	ListNotifications(ctx context.Context, userID int64) ([]models.NotificationFeedItem, error)
}

type Service struct {
	store   Store
	pub     events.Publisher
	metrics *metrics.Metrics
	log     *zap.Logger
	timeout time.Duration
}

func NewService(store Store, pub events.Publisher, m *metrics.Metrics, log *zap.Logger, timeout time.Duration) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, pub: pub, metrics: m, log: log, timeout: timeout}
}

func (s *Service) PlaceBet(ctx context.Context, req models.PlaceBetRequest) (*models.Bet, error) {
	if err := models.Validate(req); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if !req.Amount.IsPositive() {
		return nil, apperr.Validation("amount must be greater than 0")
	}

	bet := &models.Bet{CarID: req.CarID, UserID: req.UserID, Amount: req.Amount}
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		return s.store.PlaceBet(ctx, bet)
	})
	if err != nil {
		switch {
		case errors.Is(err, db.ErrCarSold):
			return nil, apperr.Conflict(fmt.Sprintf("car %d is already sold", req.CarID))
		case errors.Is(err, db.ErrNotFound):
			return nil, apperr.NotFound(err.Error())
		}
		return nil, s.storeError("place_bet", err)
	}

	if s.metrics != nil {
		s.metrics.BetsPlaced.Inc()
	}
	s.publish("bet_placed", func(ctx context.Context) error {
		return s.pub.PublishBetPlaced(ctx, events.BetPlaced{
			BetNumber: bet.BetNumber,
			CarID:     bet.CarID,
			UserID:    bet.UserID,
			Amount:    bet.Amount,
			CreatedAt: bet.CreatedAt,
		})
	})
	return bet, nil
}

// AcceptBet продаёт автомобиль по выбранной ставке. Повторное принятие
// (или гонка двух принятий) даёт Conflict.
func (s *Service) AcceptBet(ctx context.Context, req models.AcceptBetRequest) (*models.Notification, error) {
	if err := models.Validate(req); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if !req.Amount.IsPositive() {
		return nil, apperr.Validation("amount must be greater than 0")
	}

	accepted := &models.AcceptedBet{
		BetNumber: req.BetNumber,
		UserID:    req.UserID,
		CarID:     req.CarID,
		Amount:    req.Amount,
	}
	betNumber := req.BetNumber
	n := &models.Notification{
		UserID:    req.UserID,
		BetNumber: &betNumber,
		Title:     AcceptedTitle,
		Message:   AcceptedMessage(req.CarID, req.Amount.StringFixed(2)),
	}

	err := s.withTimeout(ctx, func(ctx context.Context) error {
		return s.store.AcceptBet(ctx, accepted, n)
	})
	if err != nil {
		switch {
		case errors.Is(err, db.ErrCarSold), errors.Is(err, db.ErrDuplicate):
			if s.metrics != nil {
				s.metrics.AcceptConflicts.Inc()
			}
			return nil, apperr.Conflict(fmt.Sprintf("car %d is already sold", req.CarID))
		case errors.Is(err, db.ErrNotFound):
			return nil, apperr.NotFound(err.Error())
		case errors.Is(err, db.ErrBetMismatch):
			return nil, apperr.Validation(db.ErrBetMismatch.Error())
		}
		return nil, s.storeError("accept_bet", err)
	}

	if s.metrics != nil {
		s.metrics.BetsAccepted.Inc()
	}
	s.publish("bet_accepted", func(ctx context.Context) error {
		return s.pub.PublishBetAccepted(ctx, events.BetAccepted{
			BetNumber: accepted.BetNumber,
			CarID:     accepted.CarID,
			UserID:    accepted.UserID,
			Amount:    accepted.Amount,
			Title:     n.Title,
			Message:   n.Message,
		})
	})
	return n, nil
}

// AcceptedMessage - текст уведомления покупателю
func AcceptedMessage(carID int64, amount string) string {
	return fmt.Sprintf("Your bet of %s on car %d has been accepted.", amount, carID)
}

func (s *Service) RecentBets(ctx context.Context, carID int64) ([]models.Bet, error) {
	if carID <= 0 {
		return nil, apperr.Validation("car_id must be a positive integer")
	}

	var bets []models.Bet
	err := s.withTimeout(ctx, func(ctx context.Context) (err error) {
		bets, err = s.store.RecentBets(ctx, carID, RecentLimit)
		return err
	})
	if err != nil {
		return nil, s.storeError("recent_bets", err)
	}
	return bets, nil
}

func (s *Service) Notifications(ctx context.Context, userID int64) ([]models.NotificationFeedItem, error) {
	if userID <= 0 {
		return nil, apperr.Validation("user_id must be a positive integer")
	}

	var items []models.NotificationFeedItem
	err := s.withTimeout(ctx, func(ctx context.Context) (err error) {
		items, err = s.store.ListNotifications(ctx, userID)
		return err
	})
	if err != nil {
		return nil, s.storeError("list_notifications", err)
	}
	return items, nil
}

func (s *Service) withTimeout(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(ctx)
}

func (s *Service) storeError(op string, err error) error {
	if s.metrics != nil {
		s.metrics.StoreErrors.WithLabelValues(op).Inc()
	}
	return apperr.FromStore(op, err)
}

// publish отправляет событие уже после commit; ошибка только логируется
func (s *Service) publish(kind string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		if s.metrics != nil {
			s.metrics.EventFailures.WithLabelValues(kind).Inc()
		}
		s.log.Warn("failed to publish event", zap.String("event", kind), zap.Error(err))
	}
}
