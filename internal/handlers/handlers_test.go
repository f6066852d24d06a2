package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"tunibet/db"
	"tunibet/internal/auth"
	"tunibet/internal/blobstore"
	"tunibet/internal/handlers"
	"tunibet/internal/handlers/testutils"
	"tunibet/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockStorage реализует StorageInterface в памяти и считает обращения
type MockStorage struct {
	mu sync.Mutex

	calls         int
	cars          map[int64]*models.Car
	bets          []models.Bet
	notifications []models.Notification
	users         map[string]*models.User
	userImages    map[int64]string
	dealers       map[int64]*models.Dealer
	dealerImages  map[int64]string

	listCarsErr error
}

func NewMockStorage() *MockStorage {
	return &MockStorage{
		cars: map[int64]*models.Car{
			7: {ID: 7, DealerID: 1, Make: "Toyota", Model: "Corolla", Year: 2018, Price: decimal.NewFromInt(14000)},
		},
		users:        map[string]*models.User{},
		userImages:   map[int64]string{},
		dealers:      map[int64]*models.Dealer{1: {ID: 1, DealerName: "Auto Tunis", Email: "dealer@example.com", PhoneNumber: "+21611111111"}},
		dealerImages: map[int64]string{},
	}
}

func (m *MockStorage) hit() {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
}

func (m *MockStorage) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockStorage) PlaceBet(ctx context.Context, b *models.Bet) error {
	m.hit()
	m.mu.Lock()
	defer m.mu.Unlock()
	car, ok := m.cars[b.CarID]
	if !ok {
		return db.ErrNotFound
	}
	if car.IsSold {
		return db.ErrCarSold
	}
	b.BetNumber = int64(len(m.bets) + 1)
	b.CreatedAt = time.Now()
	m.bets = append(m.bets, *b)
	return nil
}

func (m *MockStorage) AcceptBet(ctx context.Context, ab *models.AcceptedBet, n *models.Notification) error {
	m.hit()
	m.mu.Lock()
	defer m.mu.Unlock()
	car, ok := m.cars[ab.CarID]
	if !ok {
		return db.ErrNotFound
	}
	if car.IsSold {
		return db.ErrCarSold
	}
	if ab.BetNumber < 1 || int(ab.BetNumber) > len(m.bets) {
		return db.ErrNotFound
	}
	bet := m.bets[ab.BetNumber-1]
	if bet.CarID != ab.CarID || bet.UserID != ab.UserID || !bet.Amount.Equal(ab.Amount) {
		return db.ErrBetMismatch
	}
	car.IsSold = true
	car.Price = ab.Amount
	n.ID = int64(len(m.notifications) + 1)
	n.CreatedAt = time.Now()
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *MockStorage) RecentBets(ctx context.Context, carID int64, limit int) ([]models.Bet, error) {
	m.hit()
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Bet
	for i := len(m.bets) - 1; i >= 0 && len(out) < limit; i-- {
		if m.bets[i].CarID == carID {
			out = append(out, m.bets[i])
		}
	}
	return out, nil
}

func (m *MockStorage) ListNotifications(ctx context.Context, userID int64) ([]models.NotificationFeedItem, error) {
	m.hit()
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.NotificationFeedItem
	for i := len(m.notifications) - 1; i >= 0; i-- {
		n := m.notifications[i]
		if n.UserID != userID {
			continue
		}
		bet := m.bets[*n.BetNumber-1]
		carID := bet.CarID
		phone := m.dealers[m.cars[carID].DealerID].PhoneNumber
		out = append(out, models.NotificationFeedItem{
			Title: n.Title, UserID: n.UserID, Message: n.Message,
			PhoneNumber: &phone, CreatedAt: n.CreatedAt, CarID: &carID,
		})
	}
	return out, nil
}

func (m *MockStorage) ListCars(ctx context.Context) ([]models.Car, error) {
	m.hit()
	if m.listCarsErr != nil {
		return nil, m.listCarsErr
	}
	return m.allCars(false), nil
}

func (m *MockStorage) allCars(openOnly bool) []models.Car {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Car
	for _, c := range m.cars {
		if openOnly && c.IsSold {
			continue
		}
		out = append(out, *c)
	}
	return out
}

func (m *MockStorage) RecommendedCars(ctx context.Context, limit int) ([]models.Car, error) {
	m.hit()
	return m.allCars(true), nil
}

func (m *MockStorage) SearchCars(ctx context.Context, text string) ([]models.Car, error) {
	m.hit()
	var out []models.Car
	for _, c := range m.allCars(true) {
		if strings.Contains(strings.ToLower(c.Make+" "+c.Model), strings.ToLower(text)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockStorage) FilterCars(ctx context.Context, f db.CarFilter) ([]models.Car, error) {
	m.hit()
	return m.allCars(true), nil
}

func (m *MockStorage) GetCar(ctx context.Context, id int64) (*models.Car, error) {
	m.hit()
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cars[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockStorage) DealerCars(ctx context.Context, dealerID int64) ([]models.Car, error) {
	m.hit()
	var out []models.Car
	for _, c := range m.allCars(false) {
		if c.DealerID == dealerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockStorage) CarImages(ctx context.Context, ids []int64) (map[int64][]string, error) {
	m.hit()
	return map[int64][]string{}, nil
}

func (m *MockStorage) CreateCar(ctx context.Context, c *models.Car) error {
	m.hit()
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = int64(100 + len(m.cars))
	c.CreatedAt = time.Now()
	m.cars[c.ID] = c
	return nil
}

func (m *MockStorage) AddCarImage(ctx context.Context, img *models.CarImage) error {
	m.hit()
	img.ID = 1
	img.UploadedAt = time.Now()
	return nil
}

func (m *MockStorage) CreateUser(ctx context.Context, u *models.User) error {
	m.hit()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Email]; ok {
		return db.ErrDuplicate
	}
	u.ID = int64(len(m.users) + 1)
	u.CreatedAt = time.Now()
	m.users[u.Email] = u
	return nil
}

func (m *MockStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.hit()
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, db.ErrNotFound
	}
	return u, nil
}

func (m *MockStorage) UpsertUserImage(ctx context.Context, img *models.UserImage) error {
	m.hit()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userImages[img.UserID] = img.ImageURL
	img.UploadedAt = time.Now()
	return nil
}

func (m *MockStorage) CreateDealer(ctx context.Context, d *models.Dealer) error {
	m.hit()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.dealers {
		if existing.Email == d.Email || existing.PhoneNumber == d.PhoneNumber {
			return db.ErrDuplicate
		}
	}
	d.ID = int64(len(m.dealers) + 1)
	m.dealers[d.ID] = d
	return nil
}

func (m *MockStorage) GetDealerByEmail(ctx context.Context, email string) (*models.Dealer, error) {
	m.hit()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.dealers {
		if d.Email == email {
			return d, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *MockStorage) GetDealerProfile(ctx context.Context, id int64) (*models.DealerProfile, error) {
	m.hit()
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dealers[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	p := &models.DealerProfile{ID: d.ID, Email: d.Email, DealerName: d.DealerName, PhoneNumber: d.PhoneNumber}
	if img, ok := m.dealerImages[id]; ok {
		p.ImageURL = &img
	}
	return p, nil
}

func (m *MockStorage) UpdateDealer(ctx context.Context, d *models.Dealer) error {
	m.hit()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.dealers[d.ID]; !ok {
		return db.ErrNotFound
	}
	m.dealers[d.ID] = d
	return nil
}

func (m *MockStorage) UpsertDealerImage(ctx context.Context, dealerID int64, imageURL string) error {
	m.hit()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dealerImages[dealerID] = imageURL
	return nil
}

var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func newHandler(t *testing.T, store *MockStorage) *handlers.Handler {
	t.Helper()
	blobs, err := blobstore.NewLocalStore(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)
	return handlers.NewHandler(store, handlers.Deps{
		Auth:         auth.NewManager("test-secret", time.Hour, bcrypt.MinCost),
		Blobs:        blobs,
		StoreTimeout: time.Second,
	})
}

func do(t *testing.T, h http.Handler, method, target, body string, header ...string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(b)
}

func TestPingHandler(t *testing.T) {
	handler := newHandler(t, NewMockStorage())

	w := httptest.NewRecorder()
	handler.PingHandler(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())
}

func TestLastBetsHandlerRequiresCarID(t *testing.T) {
	store := NewMockStorage()
	handler := newHandler(t, store)

	w := httptest.NewRecorder()
	handler.LastBetsHandler(w, httptest.NewRequest(http.MethodGet, "/bets/last-bets", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.JSONEq(t, `{"error":"car_id is required"}`, w.Body.String())
	require.Zero(t, store.Calls())
}

func TestPlaceBetHandler(t *testing.T) {
	store := NewMockStorage()
	handler := newHandler(t, store)

	req := httptest.NewRequest(http.MethodPost, "/bets/place-bet", strings.NewReader(`{"car_id":7,"user_id":3,"amount":15000}`))
	w := httptest.NewRecorder()
	handler.PlaceBetHandler(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.EqualValues(t, 1, got["bet_number"])
	require.EqualValues(t, 7, got["car_id"])
	require.EqualValues(t, 3, got["user_id"])
	require.EqualValues(t, 15000, got["amount"])
	require.NotEmpty(t, got["created_at"])
}

func TestPlaceBetHandlerValidation(t *testing.T) {
	store := NewMockStorage()
	handler := newHandler(t, store)

	for _, body := range []string{`{"car_id":7,"user_id":3}`, `{"user_id":3,"amount":10}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/bets/place-bet", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler.PlaceBetHandler(w, req)
		require.Equal(t, http.StatusBadRequest, w.Code, body)
		require.Contains(t, w.Body.String(), `"error"`)
	}
	require.Zero(t, store.Calls())
}

func TestAcceptBetHandlerConflict(t *testing.T) {
	store := NewMockStorage()
	store.cars[7].IsSold = true
	handler := newHandler(t, store)

	req := httptest.NewRequest(http.MethodPost, "/bets/accept-bet",
		strings.NewReader(`{"car_id":7,"bet_number":1,"user_id":3,"amount":15000}`))
	w := httptest.NewRecorder()
	handler.AcceptBetHandler(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "already sold")
}

func TestAcceptBetHandlerMissingField(t *testing.T) {
	store := NewMockStorage()
	handler := newHandler(t, store)

	req := httptest.NewRequest(http.MethodPost, "/bets/accept-bet", strings.NewReader(`{"car_id":7,"user_id":3,"amount":15000}`))
	w := httptest.NewRecorder()
	handler.AcceptBetHandler(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "bet_number is required")
	require.Zero(t, store.Calls())
}

// place → accept → автомобиль продан → уведомление в ленте
func TestBetLifecycleScenario(t *testing.T) {
	store := NewMockStorage()
	router := handlers.NewRouter(newHandler(t, store))

	status, body := do(t, router, http.MethodPost, "/bets/place-bet", `{"car_id":7,"user_id":3,"amount":15000}`)
	require.Equal(t, http.StatusCreated, status, body)

	status, body = do(t, router, http.MethodPost, "/bets/accept-bet", `{"car_id":7,"bet_number":1,"user_id":3,"amount":15000}`)
	require.Equal(t, http.StatusOK, status, body)
	require.Contains(t, body, "Bet accepted successfully")

	status, body = do(t, router, http.MethodGet, "/cars/7", "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, `"is_sold":true`)
	require.Contains(t, body, `"price":15000`)

	status, body = do(t, router, http.MethodGet, "/cars/recommended", "")
	require.Equal(t, http.StatusOK, status)
	require.NotContains(t, body, `"car_id":7`)

	status, body = do(t, router, http.MethodGet, "/notifications?user_id=3", "")
	require.Equal(t, http.StatusOK, status)
	var feed []models.NotificationFeedItem
	require.NoError(t, json.Unmarshal([]byte(body), &feed))
	require.Len(t, feed, 1)
	require.Contains(t, feed[0].Message, "15000")
	require.Contains(t, feed[0].Message, "7")
	require.Equal(t, "+21611111111", *feed[0].PhoneNumber)

	// повторное принятие и новая ставка на проданный автомобиль
	status, _ = do(t, router, http.MethodPost, "/bets/accept-bet", `{"car_id":7,"bet_number":1,"user_id":3,"amount":15000}`)
	require.Equal(t, http.StatusConflict, status)
	status, _ = do(t, router, http.MethodPost, "/bets/place-bet", `{"car_id":7,"user_id":4,"amount":16000}`)
	require.Equal(t, http.StatusConflict, status)

	status, body = do(t, router, http.MethodGet, "/bets/last-bets?car_id=7", "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, `"bet_number":1`)
}

func TestNotificationsHandlerRequiresUserID(t *testing.T) {
	store := NewMockStorage()
	handler := newHandler(t, store)

	w := httptest.NewRecorder()
	handler.NotificationsHandler(w, httptest.NewRequest(http.MethodGet, "/notifications?user_id=abc", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Zero(t, store.Calls())
}

func TestGetCarHandler(t *testing.T) {
	handler := newHandler(t, NewMockStorage())

	req := testutils.WithChiURLParams(httptest.NewRequest(http.MethodGet, "/cars/abc", nil), map[string]string{"id": "abc"})
	w := httptest.NewRecorder()
	handler.GetCarHandler(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	req = testutils.WithChiURLParams(httptest.NewRequest(http.MethodGet, "/cars/42", nil), map[string]string{"id": "42"})
	w = httptest.NewRecorder()
	handler.GetCarHandler(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)

	req = testutils.WithChiURLParams(httptest.NewRequest(http.MethodGet, "/cars/7", nil), map[string]string{"id": "7"})
	w = httptest.NewRecorder()
	handler.GetCarHandler(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"image_url":null`)
	require.Contains(t, w.Body.String(), `"images":[]`)
}

func TestListCarsHandlerHidesStoreErrors(t *testing.T) {
	store := NewMockStorage()
	store.listCarsErr = errors.New("pq: connection refused")
	handler := newHandler(t, store)

	w := httptest.NewRecorder()
	handler.ListCarsHandler(w, httptest.NewRequest(http.MethodGet, "/cars", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestSearchAndFilterHandlers(t *testing.T) {
	router := handlers.NewRouter(newHandler(t, NewMockStorage()))

	status, _ := do(t, router, http.MethodGet, "/cars/search", "")
	require.Equal(t, http.StatusBadRequest, status)

	status, body := do(t, router, http.MethodGet, "/cars/search?query=corolla", "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "Corolla")

	status, body = do(t, router, http.MethodGet, "/cars/filter?minYear=twenty", "")
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `[]`, body)
}

func TestCreateCarRequiresDealerToken(t *testing.T) {
	h := newHandler(t, NewMockStorage())
	router := handlers.NewRouter(h)
	car := `{"make":"Kia","model":"Rio","year":2020,"price":9000,"fuel_type":"petrol","body_type":"hatchback"}`

	status, _ := do(t, router, http.MethodPost, "/cars", car)
	require.Equal(t, http.StatusUnauthorized, status)

	userToken, err := h.Auth.IssueToken(3, "u@example.com", auth.RoleUser)
	require.NoError(t, err)
	status, _ = do(t, router, http.MethodPost, "/cars", car, "Authorization", "Bearer "+userToken)
	require.Equal(t, http.StatusUnauthorized, status)

	dealerToken, err := h.Auth.IssueToken(1, "dealer@example.com", auth.RoleDealer)
	require.NoError(t, err)
	status, body := do(t, router, http.MethodPost, "/cars", car, "Authorization", "Bearer "+dealerToken)
	require.Equal(t, http.StatusCreated, status, body)
	require.Contains(t, body, `"dealer_id":1`)
	require.Contains(t, body, `"is_sold":false`)
}

func TestAddCarImageHandler(t *testing.T) {
	h := newHandler(t, NewMockStorage())
	router := handlers.NewRouter(h)
	token, err := h.Auth.IssueToken(1, "dealer@example.com", auth.RoleDealer)
	require.NoError(t, err)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "car.png")
	require.NoError(t, err)
	fw.Write(pngPixel)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/cars/7/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var img models.CarImage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &img))
	require.True(t, strings.HasPrefix(img.ImageURL, blobstore.URLPrefix))

	// файл доступен по /uploads/
	status, _ := do(t, router, http.MethodGet, img.ImageURL, "")
	require.Equal(t, http.StatusOK, status)
}

func TestUserRegisterAndLogin(t *testing.T) {
	store := NewMockStorage()
	router := handlers.NewRouter(newHandler(t, store))
	user := `{"full_name":"Amine","email":"Amine@Example.com","password":"secret1","phone_number":"+21622222222"}`

	status, body := do(t, router, http.MethodPost, "/users/register", user)
	require.Equal(t, http.StatusCreated, status, body)
	require.NotContains(t, body, "secret1")
	require.NotContains(t, body, "password")
	require.NotEqual(t, "secret1", store.users["amine@example.com"].Password)

	status, _ = do(t, router, http.MethodPost, "/users/register", user)
	require.Equal(t, http.StatusConflict, status)

	status, body = do(t, router, http.MethodPost, "/users/register", `{"email":"bad"}`)
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, body, "full_name is required")

	status, body = do(t, router, http.MethodPost, "/users/login", `{"email":"amine@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, `"token"`)

	status, _ = do(t, router, http.MethodPost, "/users/login", `{"email":"amine@example.com","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, status)
	status, _ = do(t, router, http.MethodPost, "/users/login", `{"email":"nobody@example.com","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestUploadUserProfileHandler(t *testing.T) {
	store := NewMockStorage()
	handler := newHandler(t, store)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("id", "5"))
	fw, err := mw.CreateFormFile("image", "me.png")
	require.NoError(t, err)
	fw.Write(pngPixel)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/users/upload-profile", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	handler.UploadUserProfileHandler(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Contains(t, store.userImages[5], blobstore.URLPrefix)

	// без файла
	buf.Reset()
	mw = multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("id", "5"))
	require.NoError(t, mw.Close())
	req = httptest.NewRequest(http.MethodPost, "/users/upload-profile", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = httptest.NewRecorder()
	handler.UploadUserProfileHandler(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDealerProfileAndUpdate(t *testing.T) {
	store := NewMockStorage()
	h := newHandler(t, store)
	router := handlers.NewRouter(h)

	status, body := do(t, router, http.MethodGet, "/dealers/1", "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, `"profile_image":"http://localhost:8080/uploads/default-profile.jpg"`)

	status, _ = do(t, router, http.MethodGet, "/dealers/99", "")
	require.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, router, http.MethodGet, "/dealers/abc/cars", "")
	require.Equal(t, http.StatusBadRequest, status)

	status, body = do(t, router, http.MethodGet, "/dealers/1/cars", "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, `"car_id":7`)

	update := `{"dealer_name":"Auto Sfax","email":"dealer@example.com","phone_number":"+21633333333"}`
	otherToken, _ := h.Auth.IssueToken(2, "other@example.com", auth.RoleDealer)
	status, _ = do(t, router, http.MethodPut, "/dealers/1", update, "Authorization", "Bearer "+otherToken)
	require.Equal(t, http.StatusUnauthorized, status)

	token, _ := h.Auth.IssueToken(1, "dealer@example.com", auth.RoleDealer)
	status, body = do(t, router, http.MethodPut, "/dealers/1", update, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, status, body)
	require.Equal(t, "Auto Sfax", store.dealers[1].DealerName)
	require.Empty(t, store.dealers[1].Password)
}

func TestDealerRegisterAndLogin(t *testing.T) {
	store := NewMockStorage()
	router := handlers.NewRouter(newHandler(t, store))
	dealer := `{"dealer_name":"Cars Sousse","email":"sousse@example.com","password":"secret1","phone_number":"+21644444444"}`

	status, body := do(t, router, http.MethodPost, "/dealers/register", dealer)
	require.Equal(t, http.StatusCreated, status, body)

	status, _ = do(t, router, http.MethodPost, "/dealers/register", dealer)
	require.Equal(t, http.StatusConflict, status)

	status, body = do(t, router, http.MethodPost, "/dealers/login", `{"email":"sousse@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, `"token"`)
}

func TestAddCarImageHandlerRejectsForeignCar(t *testing.T) {
	store := NewMockStorage()
	store.cars[8] = &models.Car{ID: 8, DealerID: 2, Make: "Fiat"}
	handler := newHandler(t, store)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "car.png")
	require.NoError(t, err)
	fw.Write(pngPixel)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/cars/8/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = testutils.WithChiURLParams(req, map[string]string{"id": "8"})
	req = testutils.AsDealer(req, 1)
	w := httptest.NewRecorder()
	handler.AddCarImageHandler(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "another dealer")
}
