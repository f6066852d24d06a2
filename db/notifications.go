package db

import (
	"context"

	"tunibet/models"
)

// ListNotifications - лента пользователя с автомобилем и телефоном продавца.
// Связь с accepted_bets идёт по номеру ставки и покупателю.
func (s *Storage) ListNotifications(ctx context.Context, userID int64) ([]models.NotificationFeedItem, error) {
	query := `
        SELECT
            n.title,
            n.user_id,
            n.message,
            d.phone_number,
            n.created_at,
            c.car_id
        FROM notifications n
        LEFT JOIN accepted_bets ab ON ab.bet_number = n.bet_number AND ab.id = n.user_id
        LEFT JOIN cars c ON c.car_id = ab.car_id
        LEFT JOIN dealers d ON d.dealer_id = c.dealer_id
        WHERE n.user_id = $1
        ORDER BY n.created_at DESC, n.notification_id DESC`
	items := []models.NotificationFeedItem{}
	if err := s.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, err
	}
	return items, nil
}
