package db

import (
	"context"

	"tunibet/models"
)

// User (Покупатель)

func (s *Storage) CreateUser(ctx context.Context, u *models.User) error {
	query := `
        INSERT INTO users (full_name, email, password, phone_number)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	err := s.db.QueryRowContext(ctx, query, u.FullName, u.Email, u.Password, u.PhoneNumber).
		Scan(&u.ID, &u.CreatedAt)
	return classify(err)
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u := &models.User{}
	query := `SELECT id, full_name, email, password, phone_number, created_at FROM users WHERE email = $1`
	if err := s.db.GetContext(ctx, u, query, email); err != nil {
		return nil, classify(err)
	}
	return u, nil
}

// UpsertUserImage сохраняет (или заменяет) фото профиля пользователя
func (s *Storage) UpsertUserImage(ctx context.Context, img *models.UserImage) error {
	query := `
        INSERT INTO userimage (id, image_url)
        VALUES ($1, $2)
        ON CONFLICT (id) DO UPDATE SET image_url = EXCLUDED.image_url, uploaded_at = NOW()
        RETURNING uploaded_at`
	err := s.db.QueryRowContext(ctx, query, img.UserID, img.ImageURL).Scan(&img.UploadedAt)
	return classify(err)
}

// Dealer (Дилер)

func (s *Storage) CreateDealer(ctx context.Context, d *models.Dealer) error {
	query := `
        INSERT INTO dealers (dealer_name, email, password, phone_number)
        VALUES ($1, $2, $3, $4)
        RETURNING dealer_id, created_at`
	err := s.db.QueryRowContext(ctx, query, d.DealerName, d.Email, d.Password, d.PhoneNumber).
		Scan(&d.ID, &d.CreatedAt)
	return classify(err)
}

func (s *Storage) GetDealerByEmail(ctx context.Context, email string) (*models.Dealer, error) {
	d := &models.Dealer{}
	query := `SELECT dealer_id, dealer_name, email, password, phone_number, created_at FROM dealers WHERE email = $1`
	if err := s.db.GetContext(ctx, d, query, email); err != nil {
		return nil, classify(err)
	}
	return d, nil
}

func (s *Storage) GetDealerProfile(ctx context.Context, id int64) (*models.DealerProfile, error) {
	p := &models.DealerProfile{}
	query := `
        SELECT d.dealer_id, d.email, d.dealer_name, d.phone_number, di.image_url
        FROM dealers d
        LEFT JOIN dealerimage di ON di.dealer_id = d.dealer_id
        WHERE d.dealer_id = $1`
	if err := s.db.GetContext(ctx, p, query, id); err != nil {
		return nil, classify(err)
	}
	return p, nil
}

// UpdateDealer обновляет профиль; пустой Password оставляет старый пароль
func (s *Storage) UpdateDealer(ctx context.Context, d *models.Dealer) error {
	query := `
        UPDATE dealers
        SET dealer_name = $1, email = $2, phone_number = $3,
            password = COALESCE(NULLIF($4, ''), password)
        WHERE dealer_id = $5
        RETURNING created_at`
	err := s.db.QueryRowContext(ctx, query, d.DealerName, d.Email, d.PhoneNumber, d.Password, d.ID).
		Scan(&d.CreatedAt)
	return classify(err)
}

func (s *Storage) UpsertDealerImage(ctx context.Context, dealerID int64, imageURL string) error {
	query := `
        INSERT INTO dealerimage (dealer_id, image_url)
        VALUES ($1, $2)
        ON CONFLICT (dealer_id) DO UPDATE SET image_url = EXCLUDED.image_url`
	_, err := s.db.ExecContext(ctx, query, dealerID, imageURL)
	return classify(err)
}
