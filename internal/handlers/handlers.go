package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tunibet/internal/apperr"
	"tunibet/internal/auth"
	"tunibet/internal/bidding"
	"tunibet/internal/blobstore"
	"tunibet/internal/catalog"
	"tunibet/internal/events"
	"tunibet/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Ограничение размера JSON-тела, чтобы избежать DoS
const maxJSONBody = 1 << 20

// Handler держит хранилище и сервисы, которыми пользуются обработчики
type Handler struct {
	Store StorageInterface
	Bets  *bidding.Service
	Cars  *catalog.Service
	Auth  *auth.Manager
	Blobs *blobstore.LocalStore

	log     *zap.Logger
	metrics *metrics.Metrics
	verbose bool
	timeout time.Duration
}

// Deps - всё, что нужно Handler кроме хранилища. Publisher и Metrics могут быть nil.
type Deps struct {
	Auth         *auth.Manager
	Blobs        *blobstore.LocalStore
	Publisher    events.Publisher
	Metrics      *metrics.Metrics
	Logger       *zap.Logger
	Verbose      bool
	StoreTimeout time.Duration
}

func NewHandler(store StorageInterface, d Deps) *Handler {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Store:   store,
		Bets:    bidding.NewService(store, d.Publisher, d.Metrics, log, d.StoreTimeout),
		Cars:    catalog.NewService(store, d.Blobs, log, d.StoreTimeout),
		Auth:    d.Auth,
		Blobs:   d.Blobs,
		log:     log,
		metrics: d.Metrics,
		verbose: d.Verbose,
		timeout: d.StoreTimeout,
	}
}

// PingHandler отвечает "ok" для проверки сервера
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError отдаёт {"error": ...} со статусом по классу ошибки.
// Ошибки хранилища логируются с контекстом запроса.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	}
	writeJSON(w, status, map[string]string{"error": apperr.PublicMessage(err, h.verbose)})
}

// decodeJSON читает тело запроса в v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return apperr.Validation("failed to read request body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return apperr.Validation("invalid JSON format")
	}
	return nil
}

// queryID читает обязательный положительный числовой параметр запроса
func queryID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, apperr.Validation(name + " is required")
	}
	return parseID(name, raw)
}

// pathID читает числовой параметр пути chi
func pathID(r *http.Request, name string) (int64, error) {
	return parseID(name, chi.URLParam(r, name))
}

func parseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid " + name)
	}
	return id, nil
}

// storeCtx ограничивает обращение к хранилищу по времени
func (h *Handler) storeCtx(r *http.Request) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.timeout)
}

// parseMultipart разбирает форму с файлом; тело ограничено размером загрузки
func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, blobstore.MaxSize+maxJSONBody)
	if err := r.ParseMultipartForm(maxJSONBody); err != nil {
		return apperr.Validation("expected multipart/form-data body")
	}
	return nil
}

// formFile достаёт обязательный файл из уже разобранной формы
func formFile(w http.ResponseWriter, r *http.Request, field string) (multipart.File, error) {
	if r.MultipartForm == nil {
		if err := parseMultipart(w, r); err != nil {
			return nil, err
		}
	}
	f, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, apperr.Validation("no file uploaded in field " + field)
	}
	if err != nil {
		return nil, apperr.Validation("invalid file in field " + field)
	}
	return f, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}
