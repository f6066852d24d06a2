package handlers

import (
	"net/http"

	"tunibet/internal/apperr"
	"tunibet/internal/auth"
	"tunibet/models"
)

func (h *Handler) ListCarsHandler(w http.ResponseWriter, r *http.Request) {
	listings, err := h.Cars.ListAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *Handler) RecommendedCarsHandler(w http.ResponseWriter, r *http.Request) {
	listings, err := h.Cars.Recommended(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

// SearchCarsHandler - GET /cars/search?query=
func (h *Handler) SearchCarsHandler(w http.ResponseWriter, r *http.Request) {
	listings, err := h.Cars.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

// FilterCarsHandler - GET /cars/filter?make=&minYear=&maxPrice=...
func (h *Handler) FilterCarsHandler(w http.ResponseWriter, r *http.Request) {
	listings, err := h.Cars.Filter(r.Context(), r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *Handler) GetCarHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	listing, err := h.Cars.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// CreateCarHandler - POST /cars, дилер берётся из токена
func (h *Handler) CreateCarHandler(w http.ResponseWriter, r *http.Request) {
	dealerID, err := dealerFromToken(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req models.CreateCarRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	listing, err := h.Cars.CreateCar(r.Context(), dealerID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, listing)
}

// AddCarImageHandler - POST /cars/{id}/images, multipart поле image
func (h *Handler) AddCarImageHandler(w http.ResponseWriter, r *http.Request) {
	dealerID, err := dealerFromToken(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	carID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	file, err := formFile(w, r, "image")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer file.Close()

	img, err := h.Cars.AddCarImage(r.Context(), dealerID, carID, file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, img)
}

// DealerCarsHandler - GET /dealers/{id}/cars
func (h *Handler) DealerCarsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	listings, err := h.Cars.DealerCars(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func dealerFromToken(r *http.Request) (int64, error) {
	claims, ok := auth.FromContext(r.Context())
	if !ok || claims.Role != auth.RoleDealer {
		return 0, apperr.Unauthorized("dealer token required")
	}
	id, err := claims.SubjectID()
	if err != nil {
		return 0, apperr.Unauthorized("invalid token subject")
	}
	return id, nil
}
