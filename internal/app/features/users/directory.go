package users

import (
	"errors"
	"net/http"

	userstore "github.com/dalemusser/bolola/internal/app/store/users"
	"github.com/dalemusser/bolola/internal/app/system/apperr"
	"github.com/dalemusser/bolola/internal/app/system/jsonio"
	"github.com/dalemusser/bolola/internal/app/system/timeouts"
	"github.com/dalemusser/bolola/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type createUserRequest struct {
	FirebaseUID string   `json:"firebaseUid" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Email       string   `json:"email" validate:"required"`
	PhotoURL    string   `json:"photoUrl"`
	IsAdmin     *bool    `json:"isAdmin"`
	IsActive    *bool    `json:"isActive"`
	Favorites   []string `json:"favorites"`
}

type userExistsResponse struct {
	Error string       `json:"error"`
	User  *models.User `json:"user"`
}

type updateUserRequest struct {
	FirebaseUID string  `json:"firebaseUid" validate:"required"`
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	PhotoURL    *string `json:"photoUrl"`
	IsAdmin     *bool   `json:"isAdmin"`
	IsActive    *bool   `json:"isActive"`
}

type listUsersResponse struct {
	Users []models.User `json:"users"`
	Count int           `json:"count"`
}

// HandleCreateUser handles POST /create-user.
func (h *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		jsonio.Error(w, err, h.Log)
		return
	}
	if err := h.Val.StructMessage(req, "Missing required fields: firebaseUid, name, email"); err != nil {
		jsonio.Error(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create user")
	defer cancel()

	store := userstore.New(h.DB)
	existing, err := store.GetByUID(ctx, req.FirebaseUID)
	switch {
	case err == nil:
		jsonio.Write(w, http.StatusConflict, userExistsResponse{Error: "User already exists", User: existing}, h.Log)
		return
	case !errors.Is(err, userstore.ErrNotFound):
		jsonio.Error(w, apperr.Internal(err), h.Log)
		return
	}

	u := models.User{
		FirebaseUID: req.FirebaseUID,
		Name:        req.Name,
		Email:       req.Email,
		PhotoURL:    req.PhotoURL,
		IsActive:    true,
		Favorites:   req.Favorites,
	}
	if req.IsAdmin != nil {
		u.IsAdmin = *req.IsAdmin
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	created, err := store.Create(ctx, u)
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateUser) {
			jsonio.Error(w, apperr.Conflict("User with this email or Firebase UID already exists"), h.Log)
			return
		}
		jsonio.Error(w, apperr.Internal(err), h.Log)
		return
	}

	h.Log.Info("user created", zap.String("firebase_uid", created.FirebaseUID))
	jsonio.Write(w, http.StatusCreated, created, h.Log)
}

// ServeUser handles GET /user/{firebaseUid}. Reading a profile counts as
// activity and refreshes lastLoginAt.
func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "firebaseUid")
	if uid == "" {
		jsonio.Error(w, apperr.Validation("Firebase UID is required"), h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get user")
	defer cancel()

	u, err := userstore.New(h.DB).Touch(ctx, uid)
	if err != nil {
		h.writeUserErr(w, err)
		return
	}
	jsonio.OK(w, u, h.Log)
}

// HandleUpdateUser handles POST /update-user.
func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		jsonio.Error(w, err, h.Log)
		return
	}
	if err := h.Val.StructMessage(req, "Firebase UID is required"); err != nil {
		jsonio.Error(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update user")
	defer cancel()

	u, err := userstore.New(h.DB).Update(ctx, req.FirebaseUID, userstore.Update{
		Name:     req.Name,
		Email:    req.Email,
		PhotoURL: req.PhotoURL,
		IsAdmin:  req.IsAdmin,
		IsActive: req.IsActive,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateUser) {
			jsonio.Error(w, apperr.Conflict("User with this email or Firebase UID already exists"), h.Log)
			return
		}
		h.writeUserErr(w, err)
		return
	}
	jsonio.OK(w, u, h.Log)
}

// ServeUsers handles GET /users.
func (h *Handler) ServeUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list users")
	defer cancel()

	list, err := userstore.New(h.DB).List(ctx)
	if err != nil {
		jsonio.Error(w, apperr.Internal(err), h.Log)
		return
	}
	jsonio.OK(w, listUsersResponse{Users: list, Count: len(list)}, h.Log)
}

func (h *Handler) writeUserErr(w http.ResponseWriter, err error) {
	if errors.Is(err, userstore.ErrNotFound) {
		jsonio.Error(w, apperr.NotFound("User not found"), h.Log)
		return
	}
	jsonio.Error(w, apperr.Internal(err), h.Log)
}
