package handlers

import (
	"log/slog"
	"net/http"

	"github.com/baharkarakas/rentacar-backend/internal/api/httpx"
	"github.com/baharkarakas/rentacar-backend/internal/middleware"
	"github.com/baharkarakas/rentacar-backend/internal/models"
	"github.com/baharkarakas/rentacar-backend/internal/services"
)

type UserHandler struct {
	Svc       *services.UserService
	Log       *slog.Logger
	UploadDir string
}

type userResp struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
	Role  string `json:"role"`
}

func toUserResp(u models.User) userResp {
	return userResp{ID: u.ID, Name: u.Name, Email: u.Email, Image: u.Image, Role: u.Role}
}

func sessionBody(message string, s services.Session) httpx.M {
	return httpx.M{
		"message":       message,
		"user":          toUserResp(s.User),
		"token":         s.Tokens.Access,
		"refresh_token": s.Tokens.Refresh,
		"expires_at":    s.Tokens.AccessExp,
	}
}

func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		httpx.WriteServiceError(w, r, h.Log, err)
		return
	}
	s, err := h.Svc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		httpx.WriteServiceError(w, r, h.Log, err)
		return
	}
	httpx.OK(w, http.StatusCreated, sessionBody("user created", s))
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		httpx.WriteServiceError(w, r, h.Log, err)
		return
	}
	s, err := h.Svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteServiceError(w, r, h.Log, err)
		return
	}
	httpx.OK(w, http.StatusOK, sessionBody("login successful", s))
}

func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		httpx.WriteServiceError(w, r, h.Log, err)
		return
	}
	s, err := h.Svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httpx.WriteServiceError(w, r, h.Log, err)
		return
	}
	httpx.OK(w, http.StatusOK, sessionBody("token refreshed", s))
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.Svc.Get(r.Context(), middleware.FromCtx(r.Context()).UserID)
	if err != nil {
		httpx.WriteServiceError(w, r, h.Log, err)
		return
	}
	httpx.OK(w, http.StatusOK, httpx.M{"user": toUserResp(u)})
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Svc.List(r.Context())
	if err != nil {
		httpx.WriteServiceError(w, r, h.Log, err)
		return
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResp(u))
	}
	httpx.OK(w, http.StatusOK, httpx.M{"users": out})
}

// UpdateAvatar expects a single multipart file in field "image".
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	f, err := readForm(w, r, h.UploadDir)
	if err != nil {
		httpx.WriteServiceError(w, r, h.Log, badForm(err))
		return
	}
	defer f.cleanup(h.Log)

	var file *services.UploadFile
	files := f.files("image")
	if len(files) > 1 {
		httpx.WriteError(w, http.StatusBadRequest, string(services.KindValidation), "only one image allowed", nil)
		return
	}
	if len(files) == 1 {
		file = &files[0]
	}
	u, err := h.Svc.UpdateAvatar(r.Context(), middleware.FromCtx(r.Context()).UserID, file)
	if err != nil {
		httpx.WriteServiceError(w, r, h.Log, err)
		return
	}
	httpx.OK(w, http.StatusOK, httpx.M{"message": "profile picture updated", "user": toUserResp(u)})
}
