package testutils

import (
	"context"
	"net/http"
	"strconv"

	"tunibet/internal/auth"

	"github.com/go-chi/chi/v5"
)

// WithChiURLParams подставляет параметры пути ({id}) в контекст chi, когда
// обработчик вызывается напрямую, минуя роутер.
func WithChiURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// AsDealer кладёт в запрос claims дилера, как это делает auth.Middleware
func AsDealer(req *http.Request, dealerID int64) *http.Request {
	claims := &auth.Claims{Role: auth.RoleDealer}
	claims.Subject = strconv.FormatInt(dealerID, 10)
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}
