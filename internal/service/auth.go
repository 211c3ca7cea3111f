package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iliyamo/video-rental/internal/model"
	"github.com/iliyamo/video-rental/internal/utils"
	"github.com/iliyamo/video-rental/internal/validator"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// Session is a user together with a freshly issued access token.
type Session struct {
	User  model.User
	Token utils.AccessToken
}

// AuthConfig holds the token and hashing parameters.
type AuthConfig struct {
	JWTSecret    string
	AccessTTLMin int
	BcryptCost   int
	StoreTimeout time.Duration
	Log          zerolog.Logger
}

// AuthService registers users, logs them in and resolves identities.
type AuthService struct {
	users UserStore
	cfg   AuthConfig
}

func NewAuthService(users UserStore, cfg AuthConfig) *AuthService {
	return &AuthService{users: users, cfg: cfg}
}

// Register creates a non-admin user and returns a token for it.  The
// password is only ever stored as a bcrypt hash.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	v := validator.New()
	v.Check(validator.Length(in.Name, 1, 50), "name", "must be between 1 and 50 characters")
	v.Check(validator.Length(email, 5, 255), "email", "must be between 5 and 255 characters")
	v.Check(validator.IsEmail(email), "email", "must be a valid email address")
	v.Check(validator.Length(in.Password, 6, 255), "password", "must be between 6 and 255 characters")
	if !v.Valid() {
		return nil, Validation(v.Errors)
	}

	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, Internal(err)
	}
	u := &model.User{ID: uuid.NewString(), Name: in.Name, Email: email, PasswordHash: hash}
	if err := execStore(ctx, s.cfg.StoreTimeout, func(ctx context.Context) error {
		return s.users.Create(ctx, u)
	}); err != nil {
		return nil, err
	}
	s.cfg.Log.Info().Str("user_id", u.ID).Msg("user registered")
	return s.session(*u)
}

// Login checks the credentials.  An unknown email and a wrong password
// produce the same InvalidCredentials error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	v := validator.New()
	v.Check(strings.TrimSpace(in.Email) != "", "email", "is required")
	v.Check(in.Password != "", "password", "is required")
	if !v.Valid() {
		return nil, Validation(v.Errors)
	}

	u, err := callStore(ctx, s.cfg.StoreTimeout, func(ctx context.Context) (*model.User, error) {
		return s.users.GetByEmail(ctx, in.Email)
	})
	if IsKind(err, KindNotFound) {
		return nil, InvalidCredentials()
	}
	if err != nil {
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, in.Password) {
		return nil, InvalidCredentials()
	}
	return s.session(*u)
}

// Me returns the user behind an authenticated identity.
func (s *AuthService) Me(ctx context.Context, id utils.Identity) (*model.User, error) {
	u, err := callStore(ctx, s.cfg.StoreTimeout, func(ctx context.Context) (*model.User, error) {
		return s.users.GetByID(ctx, id.UserID)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate verifies a raw token for the HTTP gate and the rate
// limiter.  A missing token is Unauthorized, a bad one InvalidToken.
func (s *AuthService) Authenticate(raw string) (utils.Identity, error) {
	if raw == "" {
		return utils.Identity{}, Unauthorized()
	}
	id, err := utils.ParseAccessToken(s.cfg.JWTSecret, raw)
	if err != nil {
		return utils.Identity{}, InvalidToken(err)
	}
	return id, nil
}

func (s *AuthService) session(u model.User) (*Session, error) {
	tok, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.IsAdmin, s.cfg.AccessTTLMin)
	if err != nil {
		return nil, Internal(err)
	}
	return &Session{User: u, Token: tok}, nil
}
