package handlers

import (
	"errors"
	"net/http"
	"strings"

	"tunibet/db"
	"tunibet/internal/apperr"
	"tunibet/internal/auth"
	"tunibet/internal/blobstore"
	"tunibet/internal/catalog"
	"tunibet/models"
)

// RegisterDealerHandler - POST /dealers/register
func (h *Handler) RegisterDealerHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterDealerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := models.Validate(req); err != nil {
		h.writeError(w, r, apperr.Validation(err.Error()))
		return
	}

	hash, err := h.Auth.HashPassword(req.Password)
	if err != nil {
		h.writeError(w, r, apperr.Store("hash password", err))
		return
	}

	dealer := &models.Dealer{
		DealerName:  req.DealerName,
		Email:       req.Email,
		Password:    hash,
		PhoneNumber: req.PhoneNumber,
	}
	ctx, cancel := h.storeCtx(r)
	defer cancel()
	if err := h.Store.CreateDealer(ctx, dealer); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			h.writeError(w, r, apperr.Conflict("email or phone number is already registered"))
			return
		}
		h.writeError(w, r, apperr.FromStore("create_dealer", err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Dealer registered successfully",
		"dealer":  dealer,
	})
}

// LoginDealerHandler - POST /dealers/login, выдаёт JWT с ролью dealer
func (h *Handler) LoginDealerHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := models.Validate(req); err != nil {
		h.writeError(w, r, apperr.Validation(err.Error()))
		return
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()
	dealer, err := h.Store.GetDealerByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		h.writeError(w, r, apperr.FromStore("get_dealer", err))
		return
	}
	if dealer == nil || !h.Auth.CheckPassword(dealer.Password, req.Password) {
		h.writeError(w, r, apperr.Unauthorized("invalid email or password"))
		return
	}

	token, err := h.Auth.IssueToken(dealer.ID, dealer.Email, auth.RoleDealer)
	if err != nil {
		h.writeError(w, r, apperr.Store("issue token", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
		"dealer":  dealer,
	})
}

// GetDealerHandler - GET /dealers/{id}; без своего фото отдаётся фото по умолчанию
func (h *Handler) GetDealerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()
	profile, err := h.Store.GetDealerProfile(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		h.writeError(w, r, apperr.NotFound("dealer not found"))
		return
	}
	if err != nil {
		h.writeError(w, r, apperr.FromStore("get_dealer_profile", err))
		return
	}

	image := blobstore.DefaultProfileImage
	if profile.ImageURL != nil && *profile.ImageURL != "" {
		image = *profile.ImageURL
	}
	profile.ProfileImage = h.Blobs.URL(image)
	writeJSON(w, http.StatusOK, profile)
}

// UpdateDealerHandler - PUT /dealers/{id}. Принимает JSON или multipart
// с необязательным файлом profileImage. Менять можно только свой профиль.
func (h *Handler) UpdateDealerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	tokenID, err := dealerFromToken(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if tokenID != id {
		h.writeError(w, r, apperr.Unauthorized("cannot update another dealer's profile"))
		return
	}

	var (
		req       models.UpdateDealerRequest
		imagePath string
	)
	if isMultipart(r) {
		if err := parseMultipart(w, r); err != nil {
			h.writeError(w, r, err)
			return
		}
		req = models.UpdateDealerRequest{
			DealerName:  r.FormValue("dealer_name"),
			Email:       r.FormValue("email"),
			PhoneNumber: r.FormValue("phone_number"),
			Password:    r.FormValue("password"),
		}
		if file, _, ferr := r.FormFile("profileImage"); ferr == nil {
			imagePath, err = h.Blobs.Save(file)
			file.Close()
			if err != nil {
				h.writeError(w, r, catalog.UploadError(err))
				return
			}
		}
	} else if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := models.Validate(req); err != nil {
		h.writeError(w, r, apperr.Validation(err.Error()))
		return
	}

	dealer := &models.Dealer{
		ID:          id,
		DealerName:  req.DealerName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	}
	if req.Password != "" {
		if dealer.Password, err = h.Auth.HashPassword(req.Password); err != nil {
			h.writeError(w, r, apperr.Store("hash password", err))
			return
		}
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()
	if err := h.Store.UpdateDealer(ctx, dealer); err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			h.writeError(w, r, apperr.NotFound("dealer not found"))
		case errors.Is(err, db.ErrDuplicate):
			h.writeError(w, r, apperr.Conflict("email or phone number is already registered"))
		default:
			h.writeError(w, r, apperr.FromStore("update_dealer", err))
		}
		return
	}

	if imagePath != "" {
		if err := h.Store.UpsertDealerImage(ctx, id, imagePath); err != nil {
			h.writeError(w, r, apperr.FromStore("upsert_dealer_image", err))
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"dealer":  dealer,
	})
}
