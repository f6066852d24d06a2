package handlers

import (
	"errors"
	"net/http"
	"strings"

	"tunibet/db"
	"tunibet/internal/apperr"
	"tunibet/internal/auth"
	"tunibet/internal/catalog"
	"tunibet/models"
)

// RegisterUserHandler - POST /users/register
func (h *Handler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterUserRequest
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

	user := &models.User{
		FullName:    req.FullName,
		Email:       req.Email,
		Password:    hash,
		PhoneNumber: req.PhoneNumber,
	}
	ctx, cancel := h.storeCtx(r)
	defer cancel()
	if err := h.Store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			h.writeError(w, r, apperr.Conflict("email is already registered"))
			return
		}
		h.writeError(w, r, apperr.FromStore("create_user", err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    user,
	})
}

// LoginUserHandler - POST /users/login, выдаёт JWT с ролью user
func (h *Handler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
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
	user, err := h.Store.GetUserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		h.writeError(w, r, apperr.FromStore("get_user", err))
		return
	}
	if user == nil || !h.Auth.CheckPassword(user.Password, req.Password) {
		h.writeError(w, r, apperr.Unauthorized("invalid email or password"))
		return
	}

	token, err := h.Auth.IssueToken(user.ID, user.Email, auth.RoleUser)
	if err != nil {
		h.writeError(w, r, apperr.Store("issue token", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// UploadUserProfileHandler - POST /users/upload-profile, поля id и image
func (h *Handler) UploadUserProfileHandler(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r); err != nil {
		h.writeError(w, r, err)
		return
	}
	userID, err := parseID("id", r.FormValue("id"))
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

	path, err := h.Blobs.Save(file)
	if err != nil {
		h.writeError(w, r, catalog.UploadError(err))
		return
	}

	img := &models.UserImage{UserID: userID, ImageURL: path}
	ctx, cancel := h.storeCtx(r)
	defer cancel()
	if err := h.Store.UpsertUserImage(ctx, img); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.writeError(w, r, apperr.NotFound("user not found"))
			return
		}
		h.writeError(w, r, apperr.FromStore("upsert_user_image", err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Image uploaded",
		"image":   img,
	})
}
