package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/baharkarakas/rentacar-backend/internal/api/validate"
	"github.com/baharkarakas/rentacar-backend/internal/auth"
	"github.com/baharkarakas/rentacar-backend/internal/models"
	repo "github.com/baharkarakas/rentacar-backend/internal/repository"
)

const devTokenPrefix = "dev-"

type UserDeps struct {
	Users         repo.Users
	Audit         repo.AuditLogs
	Tokens        *auth.TokenManager
	Storage       Storage
	Log           *slog.Logger
	UploadTimeout time.Duration
	// DevTokens lets "dev-<user id>" act as a bearer token. Never enable
	// outside local development.
	DevTokens bool
}

type UserService struct {
	r      repo.Users
	audit  repo.AuditLogs
	tokens *auth.TokenManager
	log    *slog.Logger
	up     uploader
	dev    bool
}

func NewUserService(d UserDeps) *UserService {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.UploadTimeout <= 0 {
		d.UploadTimeout = 30 * time.Second
	}
	log := d.Log.With("component", "users")
	return &UserService{
		r:      d.Users,
		audit:  d.Audit,
		tokens: d.Tokens,
		log:    log,
		up:     uploader{store: d.Storage, timeout: d.UploadTimeout, log: log},
		dev:    d.DevTokens,
	}
}

type Session struct {
	User   models.User `json:"user"`
	Tokens auth.Pair   `json:"tokens"`
}

func (s *UserService) Register(ctx context.Context, name, email, password string) (Session, error) {
	var errs validate.Errs
	errs.Add(validate.Required("name", name))
	errs.Add(validate.Required("email", email))
	if ef := validate.Required("password", password); ef != nil {
		errs.Add(ef)
	} else {
		errs.Add(validate.MinLen("password", password, models.MinPasswordLen))
	}
	if len(errs) > 0 {
		return Session{}, validationErr("name, email and a password of at least 8 characters are required", errs)
	}

	u := models.User{Name: name, Email: email, Role: models.RoleUser}
	if err := u.Validate(); err != nil {
		return Session{}, validationErr(err.Error(), nil)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return Session{}, persistenceErr("could not hash password", err)
	}
	u.PasswordHash = hash

	created, err := s.r.Create(ctx, u)
	if errors.Is(err, repo.ErrConflict) {
		return Session{}, validationErr("user already exists", nil)
	}
	if err != nil {
		return Session{}, persistenceErr("could not create user", err)
	}
	s.log.Info("user registered", "user_id", created.ID)
	s.writeAudit(ctx, created.ID, "register")
	return s.session(created)
}

func (s *UserService) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.r.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repo.ErrNotFound) {
		return Session{}, unauthorizedErr("invalid email or password")
	}
	if err != nil {
		return Session{}, persistenceErr("could not load user", err)
	}
	if auth.VerifyPassword(password, u.PasswordHash) != nil {
		return Session{}, unauthorizedErr("invalid email or password")
	}
	return s.session(u)
}

// Refresh issues a new pair from a refresh token, reloading the user so a
// role change takes effect.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return Session{}, unauthorizedErr("invalid refresh token")
	}
	u, err := s.Get(ctx, claims.UserID)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return Session{}, unauthorizedErr("user no longer exists")
		}
		return Session{}, err
	}
	return s.session(u)
}

// Authenticate resolves a bearer token to a stored user.
func (s *UserService) Authenticate(ctx context.Context, token string) (models.User, error) {
	var userID string
	if s.dev && strings.HasPrefix(token, devTokenPrefix) {
		userID = strings.TrimPrefix(token, devTokenPrefix)
	} else {
		claims, err := s.tokens.ParseAccess(token)
		if err != nil {
			return models.User{}, unauthorizedErr("invalid or expired token")
		}
		userID = claims.UserID
	}
	u, err := s.Get(ctx, userID)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return models.User{}, unauthorizedErr("user not found")
		}
		return models.User{}, err
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	if !validate.IsUUID(id) {
		return models.User{}, notFoundErr("user not found")
	}
	u, err := s.r.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return models.User{}, notFoundErr("user not found")
	}
	if err != nil {
		return models.User{}, persistenceErr("could not load user", err)
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	out, err := s.r.List(ctx)
	if err != nil {
		return nil, persistenceErr("could not list users", err)
	}
	return out, nil
}

// UpdateAvatar replaces the profile picture. The temp file is always
// removed and the new blob is deleted if the user record cannot be saved.
func (s *UserService) UpdateAvatar(ctx context.Context, userID string, file *UploadFile) (_ models.User, err error) {
	ctx, span := startSpan(ctx, "UserService.UpdateAvatar")
	defer func() { finish(span, err) }()

	var files []UploadFile
	if file != nil {
		files = []UploadFile{*file}
	}
	defer removeTemp(s.log, files)

	if err := s.up.check(files, 1, 1); err != nil {
		return models.User{}, err
	}
	imgs, err := s.up.uploadAll(ctx, files, FolderProfilePics)
	if err != nil {
		return models.User{}, err
	}
	u, err := s.r.UpdateImage(ctx, userID, imgs[0].URL)
	if err != nil {
		s.up.discard(ctx, imgs)
		if errors.Is(err, repo.ErrNotFound) {
			return models.User{}, notFoundErr("user not found")
		}
		return models.User{}, persistenceErr("could not update profile picture", err)
	}
	s.writeAudit(ctx, userID, "avatar_update")
	return u, nil
}

func (s *UserService) session(u models.User) (Session, error) {
	pair, err := s.tokens.GeneratePair(u.ID, u.Role)
	if err != nil {
		return Session{}, persistenceErr("could not issue tokens", err)
	}
	return Session{User: u, Tokens: pair}, nil
}

func (s *UserService) writeAudit(ctx context.Context, userID, action string) {
	if s.audit == nil {
		return
	}
	err := s.audit.Create(ctx, models.AuditLog{
		EntityType: models.EntityUser,
		EntityID:   &userID,
		ActorID:    &userID,
		Action:     action,
	})
	if err != nil {
		s.log.Warn("audit write failed", "user_id", userID, "action", action, "err", err)
	}
}
