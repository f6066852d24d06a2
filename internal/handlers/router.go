package handlers

import (
	"net/http"
	"time"

	"tunibet/internal/auth"
	"tunibet/internal/blobstore"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter собирает все маршруты API
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(accessLog(h.log))
	r.Use(middleware.Recoverer)
	if h.metrics != nil {
		r.Use(h.metrics.Middleware)
	}

	dealerOnly := h.Auth.Middleware(auth.RoleDealer)

	r.Get("/ping", h.PingHandler)

	r.Route("/cars", func(r chi.Router) {
		r.Get("/", h.ListCarsHandler)
		r.Get("/recommended", h.RecommendedCarsHandler)
		r.Get("/search", h.SearchCarsHandler)
		r.Get("/filter", h.FilterCarsHandler)
		r.Get("/{id}", h.GetCarHandler)
		r.With(dealerOnly).Post("/", h.CreateCarHandler)
		r.With(dealerOnly).Post("/{id}/images", h.AddCarImageHandler)
	})

	// ставки
	r.Get("/bets/last-bets", h.LastBetsHandler)
	r.Post("/bets/place-bet", h.PlaceBetHandler)
	r.Post("/bets/accept-bet", h.AcceptBetHandler)

	r.Get("/notifications", h.NotificationsHandler)

	r.Post("/users/register", h.RegisterUserHandler)
	r.Post("/users/login", h.LoginUserHandler)
	r.Post("/users/upload-profile", h.UploadUserProfileHandler)

	r.Route("/dealers", func(r chi.Router) {
		r.Post("/register", h.RegisterDealerHandler)
		r.Post("/login", h.LoginDealerHandler)
		r.Get("/{id}", h.GetDealerHandler)
		r.Get("/{id}/cars", h.DealerCarsHandler)
		r.With(dealerOnly).Put("/{id}", h.UpdateDealerHandler)
	})

	if h.Blobs != nil {
		fs := http.StripPrefix(blobstore.URLPrefix, http.FileServer(http.Dir(h.Blobs.Dir())))
		r.Handle(blobstore.URLPrefix+"*", fs)
	}

	return r
}

// accessLog пишет строку лога на каждый запрос
func accessLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
