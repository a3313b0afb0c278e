package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/coursehub-client/internal/models"
	appErrors "github.com/noah-isme/coursehub-client/pkg/errors"
	"github.com/noah-isme/coursehub-client/pkg/validation"
)

// Session lifecycle events recorded by AuthService.
const (
	SessionEventLogin    = "login"
	SessionEventLogout   = "logout"
	SessionEventResolved = "resolved"
)

// User-facing auth messages.
const (
	MsgEmailTaken   = "Email is already registered. Try logging in."
	MsgUserNotFound = "User not found. Please sign up."
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, req models.NewUserRequest) (*models.User, error)
}

type sessionStore interface {
	Get(ctx context.Context) (*models.Session, error)
	Set(ctx context.Context, user models.SessionUser) (*models.Session, error)
	IsLoggedIn(ctx context.Context) (bool, error)
	Clear(ctx context.Context) error
}

type sessionEventRecorder interface {
	RecordSessionEvent(event string)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	BcryptCost int
}

// AuthService provides signup, login, logout, and the current-user lookup every
// protected operation starts from.
type AuthService struct {
	users     authUserRepository
	sessions  sessionStore
	validator *validator.Validate
	logger    *zap.Logger
	metrics   sessionEventRecorder
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, sessions sessionStore, validate *validator.Validate, logger *zap.Logger, metrics sessionEventRecorder, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	if config.BcryptCost < bcrypt.MinCost || config.BcryptCost > bcrypt.MaxCost {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, sessions: sessions, validator: validate, logger: logger, metrics: metrics, config: config}
}

// Signup registers a new account. It does not log the user in.
func (s *AuthService) Signup(ctx context.Context, form validation.SignupForm) (*models.User, error) {
	if err := validation.CheckSignup(form); err != nil {
		return nil, err
	}
	f := form.Trimmed()

	existing, err := s.users.FindByEmail(ctx, f.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "failed to check email")
	}
	if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, MsgEmailTaken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(f.Password), s.config.BcryptCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	req := models.NewUserRequest{Name: f.Name, Email: f.Email, PasswordHash: string(hash)}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid signup payload")
	}

	user, err := s.users.Create(ctx, req)
	if err != nil {
		if appErrors.IsCode(err, appErrors.ErrConflict.Code) {
			return nil, appErrors.Clone(appErrors.ErrConflict, MsgEmailTaken)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "registration failed")
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

// Login checks the credentials and stores the session.
func (s *AuthService) Login(ctx context.Context, form validation.LoginForm) (*models.Session, error) {
	if err := validation.CheckLogin(form); err != nil {
		return nil, err
	}
	f := form.Trimmed()

	user, err := s.users.FindByEmail(ctx, f.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "failed to fetch user")
	}
	if user == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, MsgUserNotFound)
	}
	if user.PasswordHash == "" {
		// Accounts stored with a plaintext password are never accepted.
		s.logger.Warn("login rejected for account without password hash", zap.String("user_id", user.ID.String()))
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(f.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	session, err := s.sessions.Set(ctx, models.SessionUserFrom(*user))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store session")
	}
	s.record(SessionEventLogin)
	return session, nil
}

// Logout clears the session. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.sessions.Clear(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear session")
	}
	s.record(SessionEventLogout)
	return nil
}

// IsLoggedIn reports whether a logged-in session is stored.
func (s *AuthService) IsLoggedIn(ctx context.Context) (bool, error) {
	ok, err := s.sessions.IsLoggedIn(ctx)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read session")
	}
	return ok, nil
}

// RequireSession returns the logged-in session or NOT_AUTHENTICATED.
func (s *AuthService) RequireSession(ctx context.Context) (*models.Session, error) {
	session, err := s.sessions.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read session")
	}
	if session == nil || !session.LoggedIn {
		return nil, appErrors.Clone(appErrors.ErrNotAuthenticated, "")
	}
	return session, nil
}

// CurrentUser returns the identity of the logged-in user. Sessions that only know
// an email are completed from the users service and stored again.
func (s *AuthService) CurrentUser(ctx context.Context) (*models.SessionUser, error) {
	session, err := s.RequireSession(ctx)
	if err != nil {
		return nil, err
	}
	if !session.User.ID.IsZero() {
		user := session.User
		return &user, nil
	}

	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(session.User.Email))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "failed to resolve session user")
	}
	if user == nil {
		s.logger.Warn("session refers to an unknown account", zap.String("email", session.User.Email))
		return nil, appErrors.Clone(appErrors.ErrNotAuthenticated, "")
	}

	resolved := models.SessionUserFrom(*user)
	if _, err := s.sessions.Set(ctx, resolved); err != nil {
		s.logger.Warn("failed to store resolved session", zap.Error(err))
	} else {
		s.record(SessionEventResolved)
	}
	return &resolved, nil
}

func (s *AuthService) record(event string) {
	if s.metrics != nil {
		s.metrics.RecordSessionEvent(event)
	}
}
