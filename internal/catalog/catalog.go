// Package catalog - чтение объявлений (список, рекомендации, поиск,
// фильтр) и их создание дилерами.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tunibet/db"
	"tunibet/internal/apperr"
	"tunibet/internal/blobstore"
	"tunibet/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const RecommendedLimit = 10

type Store interface {
	ListCars(ctx context.Context) ([]models.Car, error)
	RecommendedCars(ctx context.Context, limit int) ([]models.Car, error)
	SearchCars(ctx context.Context, text string) ([]models.Car, error)
	FilterCars(ctx context.Context, f db.CarFilter) ([]models.Car, error)
	GetCar(ctx context.Context, id int64) (*models.Car, error)
	DealerCars(ctx context.Context, dealerID int64) ([]models.Car, error)
	CarImages(ctx context.Context, carIDs []int64) (map[int64][]string, error)
	CreateCar(ctx context.Context, c *models.Car) error
	AddCarImage(ctx context.Context, img *models.CarImage) error
}

// ImageSaver сохраняет файл и возвращает путь для image_url
type ImageSaver interface {
	Save(r io.Reader) (string, error)
}

type Service struct {
	store   Store
	images  ImageSaver
	log     *zap.Logger
	timeout time.Duration
}

func NewService(store Store, images ImageSaver, log *zap.Logger, timeout time.Duration) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, images: images, log: log, timeout: timeout}
}

// ListAll - все объявления, включая проданные
func (s *Service) ListAll(ctx context.Context) ([]models.Listing, error) {
	return s.list(ctx, "list_cars", func(ctx context.Context) ([]models.Car, error) {
		return s.store.ListCars(ctx)
	})
}

func (s *Service) Recommended(ctx context.Context) ([]models.Listing, error) {
	return s.list(ctx, "recommended_cars", func(ctx context.Context) ([]models.Car, error) {
		return s.store.RecommendedCars(ctx, RecommendedLimit)
	})
}

func (s *Service) Search(ctx context.Context, query string) ([]models.Listing, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("query is required")
	}
	return s.list(ctx, "search_cars", func(ctx context.Context) ([]models.Car, error) {
		return s.store.SearchCars(ctx, query)
	})
}

// Filter принимает параметры запроса как есть. Некорректное число в
// диапазоне даёт пустой результат, а не ошибку.
func (s *Service) Filter(ctx context.Context, params url.Values) ([]models.Listing, error) {
	f, ok := ParseFilter(params)
	if !ok {
		return []models.Listing{}, nil
	}
	return s.list(ctx, "filter_cars", func(ctx context.Context) ([]models.Car, error) {
		return s.store.FilterCars(ctx, f)
	})
}

// Get отдаёт и проданные автомобили, чтобы был виден is_sold
func (s *Service) Get(ctx context.Context, id int64) (*models.Listing, error) {
	var car *models.Car
	err := s.withTimeout(ctx, func(ctx context.Context) (err error) {
		car, err = s.store.GetCar(ctx, id)
		return err
	})
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound(fmt.Sprintf("car %d not found", id))
	}
	if err != nil {
		return nil, apperr.FromStore("get_car", err)
	}

	listings, err := s.attachImages(ctx, []models.Car{*car})
	if err != nil {
		return nil, err
	}
	return &listings[0], nil
}

func (s *Service) DealerCars(ctx context.Context, dealerID int64) ([]models.Listing, error) {
	return s.list(ctx, "dealer_cars", func(ctx context.Context) ([]models.Car, error) {
		return s.store.DealerCars(ctx, dealerID)
	})
}

// CreateCar публикует новое объявление дилера в состоянии «открыто для ставок»
func (s *Service) CreateCar(ctx context.Context, dealerID int64, req models.CreateCarRequest) (*models.Listing, error) {
	if err := models.Validate(req); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if req.Price.IsNegative() {
		return nil, apperr.Validation("price must not be negative")
	}

	car := &models.Car{
		DealerID:     dealerID,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		Price:        req.Price,
		Mileage:      req.Mileage,
		FuelType:     req.FuelType,
		Transmission: req.Transmission,
		Horsepower:   req.Horsepower,
		BodyType:     req.BodyType,
		Color:        req.Color,
		Condition:    req.Condition,
		Description:  req.Description,
		Location:     req.Location,
	}
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		return s.store.CreateCar(ctx, car)
	})
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound(fmt.Sprintf("dealer %d not found", dealerID))
	}
	if err != nil {
		return nil, apperr.FromStore("create_car", err)
	}

	l := models.NewListing(*car, nil)
	return &l, nil
}

// AddCarImage сохраняет фото автомобиля; добавлять может только владелец
func (s *Service) AddCarImage(ctx context.Context, dealerID, carID int64, file io.Reader) (*models.CarImage, error) {
	var car *models.Car
	err := s.withTimeout(ctx, func(ctx context.Context) (err error) {
		car, err = s.store.GetCar(ctx, carID)
		return err
	})
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound(fmt.Sprintf("car %d not found", carID))
	}
	if err != nil {
		return nil, apperr.FromStore("get_car", err)
	}
	if car.DealerID != dealerID {
		return nil, apperr.Unauthorized("car belongs to another dealer")
	}

	path, err := s.images.Save(file)
	if err != nil {
		return nil, UploadError(err)
	}

	img := &models.CarImage{CarID: carID, ImageURL: path}
	err = s.withTimeout(ctx, func(ctx context.Context) error {
		return s.store.AddCarImage(ctx, img)
	})
	if err != nil {
		return nil, apperr.FromStore("add_car_image", err)
	}
	return img, nil
}

// UploadError отделяет отклонённый файл (400) от ошибки диска (500)
func UploadError(err error) error {
	if blobstore.IsClientError(err) {
		return apperr.Validation(err.Error())
	}
	return apperr.Store("save upload failed", err)
}

func (s *Service) list(ctx context.Context, op string, fetch func(ctx context.Context) ([]models.Car, error)) ([]models.Listing, error) {
	var cars []models.Car
	err := s.withTimeout(ctx, func(ctx context.Context) (err error) {
		cars, err = fetch(ctx)
		return err
	})
	if err != nil {
		return nil, apperr.FromStore(op, err)
	}
	return s.attachImages(ctx, cars)
}

// attachImages подтягивает фото всех автомобилей одним запросом
func (s *Service) attachImages(ctx context.Context, cars []models.Car) ([]models.Listing, error) {
	listings := make([]models.Listing, 0, len(cars))
	if len(cars) == 0 {
		return listings, nil
	}

	ids := make([]int64, 0, len(cars))
	for _, c := range cars {
		ids = append(ids, c.ID)
	}

	var images map[int64][]string
	err := s.withTimeout(ctx, func(ctx context.Context) (err error) {
		images, err = s.store.CarImages(ctx, ids)
		return err
	})
	if err != nil {
		return nil, apperr.FromStore("car_images", err)
	}

	for _, c := range cars {
		listings = append(listings, models.NewListing(c, images[c.ID]))
	}
	return listings, nil
}

func (s *Service) withTimeout(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(ctx)
}

// ParseFilter читает параметры фильтра; пустые значения игнорируются.
// ok=false, если хоть одно числовое значение не разобралось.
func ParseFilter(q url.Values) (db.CarFilter, bool) {
	var f db.CarFilter

	str := func(key string) *string {
		v := strings.TrimSpace(q.Get(key))
		if v == "" {
			return nil
		}
		return &v
	}

	f.Make = str("make")
	f.Model = str("model")
	f.FuelType = str("fuelType")
	f.Transmission = str("transmission")
	f.BodyType = str("bodyType")
	f.Condition = str("condition")

	var ok = true
	year := func(key string) *int {
		v := str(key)
		if v == nil {
			return nil
		}
		n, err := strconv.Atoi(*v)
		if err != nil {
			ok = false
			return nil
		}
		return &n
	}
	price := func(key string) *decimal.Decimal {
		v := str(key)
		if v == nil {
			return nil
		}
		d, err := decimal.NewFromString(*v)
		if err != nil {
			ok = false
			return nil
		}
		return &d
	}

	f.MinYear = year("minYear")
	f.MaxYear = year("maxYear")
	f.MinPrice = price("minPrice")
	f.MaxPrice = price("maxPrice")
	return f, ok
}
