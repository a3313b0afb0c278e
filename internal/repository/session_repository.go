package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-client/internal/models"
	"github.com/noah-isme/coursehub-client/pkg/storage"
)

// Storage keys. Only SessionKey is ever written; the legacy keys are read once,
// folded into SessionKey, and removed.
const (
	SessionKey           = "session"
	LegacyLoggedInKey    = "loggedIn"
	LegacyEmailKey       = "loggedInUserEmail"
	LegacyCurrentUserKey = "currentUser"

	legacyLoggedInMarker = "true"
)

var allSessionKeys = []string{SessionKey, LegacyLoggedInKey, LegacyEmailKey, LegacyCurrentUserKey}

// SessionRepository persists the logged-in session in a KV store.
type SessionRepository struct {
	kv     storage.KV
	logger *zap.Logger
	now    func() time.Time
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(kv storage.KV, logger *zap.Logger) *SessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRepository{kv: kv, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Set stores user as the logged-in identity, replacing any previous session.
func (r *SessionRepository) Set(ctx context.Context, user models.SessionUser) (*models.Session, error) {
	session := &models.Session{User: user, LoggedIn: true, CreatedAt: r.now()}
	if err := r.write(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get returns the stored session, or nil when none is stored or the stored value
// cannot be parsed. Only storage failures are returned as errors.
func (r *SessionRepository) Get(ctx context.Context) (*models.Session, error) {
	raw, err := r.kv.Get(ctx, SessionKey)
	switch {
	case err == nil:
		var session models.Session
		if err := json.Unmarshal([]byte(raw), &session); err != nil || session.User.Email == "" {
			r.logger.Warn("stored session is unreadable, treating as absent", zap.Error(err))
			return nil, nil
		}
		return &session, nil
	case errors.Is(err, storage.ErrKeyNotFound):
		return r.migrateLegacy(ctx)
	default:
		return nil, err
	}
}

// IsLoggedIn reports whether a session exists and carries the logged-in flag.
func (r *SessionRepository) IsLoggedIn(ctx context.Context) (bool, error) {
	session, err := r.Get(ctx)
	if err != nil {
		return false, err
	}
	return session != nil && session.LoggedIn, nil
}

// Clear removes the session and any legacy markers. Clearing twice is harmless.
func (r *SessionRepository) Clear(ctx context.Context) error {
	return r.kv.Delete(ctx, allSessionKeys...)
}

// migrateLegacy reads the older markers: a full "currentUser" record, or the
// "loggedIn" flag plus "loggedInUserEmail". A found session is rewritten in the
// canonical form.
func (r *SessionRepository) migrateLegacy(ctx context.Context) (*models.Session, error) {
	session, err := r.readLegacy(ctx)
	if err != nil || session == nil {
		return nil, err
	}
	if err := r.write(ctx, session); err != nil {
		return nil, err
	}
	r.logger.Info("migrated legacy session", zap.String("email", session.User.Email))
	return session, nil
}

func (r *SessionRepository) readLegacy(ctx context.Context) (*models.Session, error) {
	current, err := r.optional(ctx, LegacyCurrentUserKey)
	if err != nil {
		return nil, err
	}
	if current != "" {
		var user models.User
		if err := json.Unmarshal([]byte(current), &user); err == nil && user.Email != "" {
			return &models.Session{User: models.SessionUserFrom(user), LoggedIn: true, CreatedAt: r.now()}, nil
		}
		r.logger.Warn("legacy currentUser marker is unreadable")
	}

	email, err := r.optional(ctx, LegacyEmailKey)
	if err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}
	flag, err := r.optional(ctx, LegacyLoggedInKey)
	if err != nil {
		return nil, err
	}
	return &models.Session{
		User:      models.SessionUser{Email: email},
		LoggedIn:  flag == legacyLoggedInMarker,
		CreatedAt: r.now(),
	}, nil
}

func (r *SessionRepository) optional(ctx context.Context, key string) (string, error) {
	v, err := r.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return "", nil
	}
	return v, err
}

func (r *SessionRepository) write(ctx context.Context, session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := r.kv.Set(ctx, SessionKey, string(payload)); err != nil {
		return err
	}
	return r.kv.Delete(ctx, LegacyLoggedInKey, LegacyEmailKey, LegacyCurrentUserKey)
}
