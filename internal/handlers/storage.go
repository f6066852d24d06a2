package handlers

import (
	"context"

	"tunibet/internal/bidding"
	"tunibet/internal/catalog"
	"tunibet/models"
)

// StorageInterface - всё, что обработчики и сервисы берут из db.Storage
type StorageInterface interface {
	bidding.Store
	catalog.Store

	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpsertUserImage(ctx context.Context, img *models.UserImage) error

	CreateDealer(ctx context.Context, d *models.Dealer) error
	GetDealerByEmail(ctx context.Context, email string) (*models.Dealer, error)
	GetDealerProfile(ctx context.Context, id int64) (*models.DealerProfile, error)
	UpdateDealer(ctx context.Context, d *models.Dealer) error
	UpsertDealerImage(ctx context.Context, dealerID int64, imageURL string) error
}
