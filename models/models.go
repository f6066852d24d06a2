package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Суммы отдаём числом, а не строкой
	decimal.MarshalJSONWithoutQuotes = true
}

// Сущность Автомобиля (объявление)
type Car struct {
	ID           int64           `db:"car_id" json:"car_id"`
	DealerID     int64           `db:"dealer_id" json:"dealer_id"`
	Make         string          `db:"make" json:"make"`
	Model        string          `db:"model" json:"model"`
	Year         int             `db:"year" json:"year"`
	Price        decimal.Decimal `db:"price" json:"price"`
	Mileage      *int            `db:"mileage" json:"mileage"`
	FuelType     string          `db:"fuel_type" json:"fuel_type"`
	Transmission *string         `db:"transmission" json:"transmission"`
	Horsepower   *int            `db:"horsepower" json:"horsepower"`
	BodyType     string          `db:"body_type" json:"body_type"`
	Color        *string         `db:"color" json:"color"`
	Condition    *string         `db:"condition" json:"condition"`
	Description  *string         `db:"description" json:"description"`
	Location     *string         `db:"location" json:"location"`
	IsSold       bool            `db:"is_sold" json:"is_sold"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// Listing - автомобиль вместе с фотографиями (новые первыми)
type Listing struct {
	Car
	Images   []string `json:"images"`
	ImageURL *string  `json:"image_url"`
}

// NewListing собирает объявление; ImageURL - первая фотография или nil
func NewListing(c Car, images []string) Listing {
	l := Listing{Car: c, Images: images}
	if l.Images == nil {
		l.Images = []string{}
	}
	if len(l.Images) > 0 {
		first := l.Images[0]
		l.ImageURL = &first
	}
	return l
}

// Фотография автомобиля
type CarImage struct {
	ID         int64     `db:"image_id" json:"image_id"`
	CarID      int64     `db:"car_id" json:"car_id"`
	ImageURL   string    `db:"image_url" json:"image_url"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// Сущность Ставки (предложения цены)
type Bet struct {
	BetNumber int64           `db:"bet_number" json:"bet_number"`
	CarID     int64           `db:"car_id" json:"car_id"`
	UserID    int64           `db:"id" json:"user_id"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Принятая ставка, не больше одной на автомобиль
type AcceptedBet struct {
	BetNumber int64           `db:"bet_number" json:"bet_number"`
	UserID    int64           `db:"id" json:"user_id"`
	CarID     int64           `db:"car_id" json:"car_id"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
}

// Сущность Уведомления
type Notification struct {
	ID        int64     `db:"notification_id" json:"notification_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	BetNumber *int64    `db:"bet_number" json:"bet_number,omitempty"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Строка ленты уведомлений: уведомление + автомобиль + телефон дилера
type NotificationFeedItem struct {
	Title       string    `db:"title" json:"title"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Message     string    `db:"message" json:"message"`
	PhoneNumber *string   `db:"phone_number" json:"phone_number"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	CarID       *int64    `db:"car_id" json:"car_id"`
}

// Сущность Пользователя
type User struct {
	ID          int64     `db:"id" json:"id"`
	FullName    string    `db:"full_name" json:"full_name"`
	Email       string    `db:"email" json:"email"`
	Password    string    `db:"password" json:"-"`
	PhoneNumber string    `db:"phone_number" json:"phone_number"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Фото профиля пользователя
type UserImage struct {
	UserID     int64     `db:"id" json:"id"`
	ImageURL   string    `db:"image_url" json:"image_url"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// Сущность Дилера
type Dealer struct {
	ID          int64     `db:"dealer_id" json:"dealer_id"`
	DealerName  string    `db:"dealer_name" json:"dealer_name"`
	Email       string    `db:"email" json:"email"`
	Password    string    `db:"password" json:"-"`
	PhoneNumber string    `db:"phone_number" json:"phone_number"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Профиль дилера с фотографией (из dealerimage)
type DealerProfile struct {
	ID          int64   `db:"dealer_id" json:"id"`
	Email       string  `db:"email" json:"email"`
	DealerName  string  `db:"dealer_name" json:"dealer_name"`
	PhoneNumber string  `db:"phone_number" json:"phone_number"`
	ImageURL    *string `db:"image_url" json:"-"`
	// ProfileImage заполняется в обработчике (базовый URL + путь)
	ProfileImage string `db:"-" json:"profile_image"`
}
