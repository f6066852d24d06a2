package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// В сообщениях используем имена полей из JSON
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate проверяет структуру по тегам validate и возвращает понятное сообщение
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "email":
			msgs = append(msgs, fe.Field()+" must be a valid email")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// Запрос на ставку
type PlaceBetRequest struct {
	CarID  int64           `json:"car_id" validate:"required,gt=0"`
	UserID int64           `json:"user_id" validate:"required,gt=0"`
	Amount decimal.Decimal `json:"amount"`
}

// Запрос на принятие ставки (дилер выбирает победителя)
type AcceptBetRequest struct {
	CarID     int64           `json:"car_id" validate:"required,gt=0"`
	BetNumber int64           `json:"bet_number" validate:"required,gt=0"`
	UserID    int64           `json:"user_id" validate:"required,gt=0"`
	Amount    decimal.Decimal `json:"amount"`
}

type RegisterUserRequest struct {
	FullName    string `json:"full_name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	PhoneNumber string `json:"phone_number" validate:"required,max=20"`
}

type RegisterDealerRequest struct {
	DealerName  string `json:"dealer_name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	PhoneNumber string `json:"phone_number" validate:"required,max=20"`
}

type UpdateDealerRequest struct {
	DealerName  string `json:"dealer_name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required,max=20"`
	// Пароль меняется только если передан
	Password string `json:"password" validate:"omitempty,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Запрос на создание объявления
type CreateCarRequest struct {
	Make         string          `json:"make" validate:"required,max=50"`
	Model        string          `json:"model" validate:"required,max=50"`
	Year         int             `json:"year" validate:"required,gte=1886,lte=2100"`
	Price        decimal.Decimal `json:"price"`
	Mileage      *int            `json:"mileage" validate:"omitempty,gte=0"`
	FuelType     string          `json:"fuel_type" validate:"required,max=30"`
	Transmission *string         `json:"transmission" validate:"omitempty,max=30"`
	Horsepower   *int            `json:"horsepower" validate:"omitempty,gt=0"`
	BodyType     string          `json:"body_type" validate:"required,max=30"`
	Color        *string         `json:"color" validate:"omitempty,max=30"`
	Condition    *string         `json:"condition" validate:"omitempty,max=30"`
	Description  *string         `json:"description" validate:"omitempty,max=2000"`
	Location     *string         `json:"location" validate:"omitempty,max=100"`
}
