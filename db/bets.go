package db

import (
	"context"
	"fmt"

	"tunibet/models"

	"github.com/jmoiron/sqlx"
)

// RecentBets возвращает последние limit ставок по автомобилю, новые первыми
func (s *Storage) RecentBets(ctx context.Context, carID int64, limit int) ([]models.Bet, error) {
	query := `
        SELECT bet_number, car_id, id, amount, created_at
        FROM bets
        WHERE car_id = $1
        ORDER BY created_at DESC, bet_number DESC
        LIMIT $2`
	bets := []models.Bet{}
	if err := s.db.SelectContext(ctx, &bets, query, carID, limit); err != nil {
		return nil, err
	}
	return bets, nil
}

func (s *Storage) GetBet(ctx context.Context, betNumber int64) (*models.Bet, error) {
	b := &models.Bet{}
	query := `SELECT bet_number, car_id, id, amount, created_at FROM bets WHERE bet_number = $1`
	if err := s.db.GetContext(ctx, b, query, betNumber); err != nil {
		return nil, classify(err)
	}
	return b, nil
}

// PlaceBet добавляет ставку. Автомобиль блокируется FOR SHARE, чтобы ставка
// не проскочила параллельно с принятием другой.
func (s *Storage) PlaceBet(ctx context.Context, b *models.Bet) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockOpenCar(ctx, tx, b.CarID, "FOR SHARE"); err != nil {
			return err
		}

		query := `
            INSERT INTO bets (car_id, id, amount)
            VALUES ($1, $2, $3)
            RETURNING bet_number, created_at`
		err := tx.QueryRowContext(ctx, query, b.CarID, b.UserID, b.Amount).
			Scan(&b.BetNumber, &b.CreatedAt)
		return classify(err)
	})
}

// AcceptBet одной транзакцией: фиксирует принятую ставку, помечает автомобиль
// проданным (цена = сумма ставки) и создаёт уведомление покупателю.
// Строка автомобиля блокируется FOR UPDATE, поэтому из двух параллельных
// принятий одно получит ErrCarSold.
func (s *Storage) AcceptBet(ctx context.Context, ab *models.AcceptedBet, n *models.Notification) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockOpenCar(ctx, tx, ab.CarID, "FOR UPDATE"); err != nil {
			return err
		}

		var bet models.Bet
		err := tx.GetContext(ctx, &bet,
			`SELECT bet_number, car_id, id, amount, created_at FROM bets WHERE bet_number = $1`,
			ab.BetNumber)
		if err != nil {
			return fmt.Errorf("bet %d: %w", ab.BetNumber, classify(err))
		}
		if bet.CarID != ab.CarID || bet.UserID != ab.UserID || !bet.Amount.Equal(ab.Amount) {
			return ErrBetMismatch
		}

		if _, err := tx.ExecContext(ctx, `
            INSERT INTO accepted_bets (bet_number, id, car_id, amount)
            VALUES ($1, $2, $3, $4)`,
			ab.BetNumber, ab.UserID, ab.CarID, ab.Amount); err != nil {
			return classify(err)
		}

		if _, err := tx.ExecContext(ctx, `
            UPDATE cars
            SET is_sold = TRUE, price = $1
            WHERE car_id = $2`,
			ab.Amount, ab.CarID); err != nil {
			return err
		}

		err = tx.QueryRowContext(ctx, `
            INSERT INTO notifications (user_id, bet_number, title, message)
            VALUES ($1, $2, $3, $4)
            RETURNING notification_id, created_at`,
			n.UserID, n.BetNumber, n.Title, n.Message).Scan(&n.ID, &n.CreatedAt)
		return classify(err)
	})
}

// lockOpenCar блокирует строку автомобиля и проверяет, что он ещё не продан
func lockOpenCar(ctx context.Context, tx *sqlx.Tx, carID int64, lock string) error {
	var sold bool
	err := tx.QueryRowContext(ctx, `SELECT is_sold FROM cars WHERE car_id = $1 `+lock, carID).Scan(&sold)
	if err != nil {
		return fmt.Errorf("car %d: %w", carID, classify(err))
	}
	if sold {
		return ErrCarSold
	}
	return nil
}
