package db

import (
	"context"
	"fmt"
	"strings"

	"tunibet/models"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const carColumns = `car_id, dealer_id, make, model, year, price, mileage, fuel_type, transmission,
        horsepower, body_type, color, condition, description, location, is_sold, created_at`

// CarFilter - условия фильтра, nil означает «не задано»
type CarFilter struct {
	Make         *string
	Model        *string
	MinYear      *int
	MaxYear      *int
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	FuelType     *string
	Transmission *string
	BodyType     *string
	Condition    *string
}

func (s *Storage) CreateCar(ctx context.Context, c *models.Car) error {
	query := `
        INSERT INTO cars
            (dealer_id, make, model, year, price, mileage, fuel_type, transmission,
             horsepower, body_type, color, condition, description, location)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        RETURNING car_id, is_sold, created_at`
	err := s.db.QueryRowContext(ctx, query,
		c.DealerID, c.Make, c.Model, c.Year, c.Price, c.Mileage, c.FuelType, c.Transmission,
		c.Horsepower, c.BodyType, c.Color, c.Condition, c.Description, c.Location).
		Scan(&c.ID, &c.IsSold, &c.CreatedAt)
	return classify(err)
}

func (s *Storage) GetCar(ctx context.Context, id int64) (*models.Car, error) {
	c := &models.Car{}
	query := `SELECT ` + carColumns + ` FROM cars WHERE car_id = $1`
	if err := s.db.GetContext(ctx, c, query, id); err != nil {
		return nil, classify(err)
	}
	return c, nil
}

// ListCars возвращает все объявления, включая проданные
func (s *Storage) ListCars(ctx context.Context) ([]models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars ORDER BY price DESC, car_id`
	cars := []models.Car{}
	if err := s.db.SelectContext(ctx, &cars, query); err != nil {
		return nil, err
	}
	return cars, nil
}

// RecommendedCars - самые новые (по году) непроданные автомобили
func (s *Storage) RecommendedCars(ctx context.Context, limit int) ([]models.Car, error) {
	query := `
        SELECT ` + carColumns + `
        FROM cars
        WHERE is_sold = FALSE
        ORDER BY year DESC, price DESC, car_id
        LIMIT $1`
	cars := []models.Car{}
	if err := s.db.SelectContext(ctx, &cars, query, limit); err != nil {
		return nil, err
	}
	return cars, nil
}

// SearchCars ищет подстроку в марке, модели, кузове, топливе и годе
func (s *Storage) SearchCars(ctx context.Context, text string) ([]models.Car, error) {
	query := `
        SELECT ` + carColumns + `
        FROM cars
        WHERE is_sold = FALSE
          AND (make ILIKE $1 OR
               model ILIKE $1 OR
               body_type ILIKE $1 OR
               fuel_type ILIKE $1 OR
               CAST(year AS TEXT) LIKE $1)
        ORDER BY price DESC, car_id`
	cars := []models.Car{}
	if err := s.db.SelectContext(ctx, &cars, query, "%"+escapeLike(text)+"%"); err != nil {
		return nil, err
	}
	return cars, nil
}

func (s *Storage) FilterCars(ctx context.Context, f CarFilter) ([]models.Car, error) {
	query, args := buildFilterQuery(f)
	cars := []models.Car{}
	if err := s.db.SelectContext(ctx, &cars, query, args...); err != nil {
		return nil, err
	}
	return cars, nil
}

func buildFilterQuery(f CarFilter) (string, []interface{}) {
	var (
		conds = []string{"is_sold = FALSE"}
		args  []interface{}
	)
	add := func(cond string, v interface{}) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Make != nil {
		add("make ILIKE $%d", "%"+escapeLike(*f.Make)+"%")
	}
	if f.Model != nil {
		add("model ILIKE $%d", "%"+escapeLike(*f.Model)+"%")
	}
	if f.MinYear != nil {
		add("year >= $%d", *f.MinYear)
	}
	if f.MaxYear != nil {
		add("year <= $%d", *f.MaxYear)
	}
	if f.MinPrice != nil {
		add("price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("price <= $%d", *f.MaxPrice)
	}
	if f.FuelType != nil {
		add("fuel_type = $%d", *f.FuelType)
	}
	if f.Transmission != nil {
		add("transmission = $%d", *f.Transmission)
	}
	if f.BodyType != nil {
		add("body_type = $%d", *f.BodyType)
	}
	if f.Condition != nil {
		add("condition = $%d", *f.Condition)
	}

	query := "SELECT " + carColumns + " FROM cars WHERE " + strings.Join(conds, " AND ") +
		" ORDER BY price DESC, car_id"
	return query, args
}

// DealerCars - все автомобили дилера, вместе с проданными
func (s *Storage) DealerCars(ctx context.Context, dealerID int64) ([]models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE dealer_id = $1 ORDER BY created_at DESC, car_id DESC`
	cars := []models.Car{}
	if err := s.db.SelectContext(ctx, &cars, query, dealerID); err != nil {
		return nil, err
	}
	return cars, nil
}

// CarImages возвращает фотографии для набора автомобилей одним запросом, новые первыми
func (s *Storage) CarImages(ctx context.Context, carIDs []int64) (map[int64][]string, error) {
	images := make(map[int64][]string, len(carIDs))
	if len(carIDs) == 0 {
		return images, nil
	}
	query := `
        SELECT car_id, image_url
        FROM carimages
        WHERE car_id = ANY($1)
        ORDER BY uploaded_at DESC, image_id DESC`
	rows, err := s.db.QueryxContext(ctx, query, pq.Array(carIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			carID int64
			url   string
		)
		if err := rows.Scan(&carID, &url); err != nil {
			return nil, err
		}
		images[carID] = append(images[carID], url)
	}
	return images, rows.Err()
}

func (s *Storage) AddCarImage(ctx context.Context, img *models.CarImage) error {
	query := `
        INSERT INTO carimages (car_id, image_url)
        VALUES ($1, $2)
        RETURNING image_id, uploaded_at`
	err := s.db.QueryRowContext(ctx, query, img.CarID, img.ImageURL).Scan(&img.ID, &img.UploadedAt)
	return classify(err)
}

// CountListings считает открытые и проданные объявления (для метрик)
func (s *Storage) CountListings(ctx context.Context) (open int, sold int, err error) {
	query := `
        SELECT
            COUNT(CASE WHEN is_sold = FALSE THEN 1 END),
            COUNT(CASE WHEN is_sold = TRUE THEN 1 END)
        FROM cars`
	err = s.db.QueryRowContext(ctx, query).Scan(&open, &sold)
	return
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
