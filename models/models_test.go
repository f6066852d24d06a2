package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestValidateUsesJSONNames(t *testing.T) {
	err := Validate(AcceptBetRequest{CarID: 7, UserID: 3})
	require.EqualError(t, err, "bet_number is required")

	err = Validate(RegisterUserRequest{FullName: "A", Email: "nope", Password: "123", PhoneNumber: "1"})
	require.ErrorContains(t, err, "email must be a valid email")
	require.ErrorContains(t, err, "password failed min=6")

	require.NoError(t, Validate(UpdateDealerRequest{DealerName: "D", Email: "d@example.com", PhoneNumber: "1"}))
}

func TestNewListing(t *testing.T) {
	l := NewListing(Car{ID: 1}, nil)
	require.NotNil(t, l.Images)
	require.Nil(t, l.ImageURL)

	l = NewListing(Car{ID: 1}, []string{"/uploads/b.jpg", "/uploads/a.jpg"})
	require.Equal(t, "/uploads/b.jpg", *l.ImageURL)
}

func TestAmountsMarshalAsNumbers(t *testing.T) {
	b, err := json.Marshal(Bet{BetNumber: 1, CarID: 7, UserID: 3, Amount: decimal.NewFromInt(15000)})
	require.NoError(t, err)
	require.Contains(t, string(b), `"amount":15000`)
	require.Contains(t, string(b), `"user_id":3`)
}
