package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/coursehub-client/internal/models"
	appErrors "github.com/noah-isme/coursehub-client/pkg/errors"
	"github.com/noah-isme/coursehub-client/pkg/validation"
)

type mockUserRepo struct {
	users     map[string]*models.User
	findErr   error
	createErr error
	created   []models.NewUserRequest
	lookups   int
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.lookups++
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.users[email], nil
}

func (m *mockUserRepo) Create(ctx context.Context, req models.NewUserRequest) (*models.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	if m.users == nil {
		m.users = make(map[string]*models.User)
	}
	m.created = append(m.created, req)
	user := &models.User{ID: models.NewID(strings.Repeat("1", len(m.created))), Name: req.Name, Email: req.Email, PasswordHash: req.PasswordHash}
	m.users[req.Email] = user
	return user, nil
}

type mockSessionStore struct {
	session  *models.Session
	getErr   error
	setErr   error
	clearErr error
	sets     int
}

func (m *mockSessionStore) Get(ctx context.Context) (*models.Session, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.session, nil
}

func (m *mockSessionStore) Set(ctx context.Context, user models.SessionUser) (*models.Session, error) {
	if m.setErr != nil {
		return nil, m.setErr
	}
	m.sets++
	m.session = &models.Session{User: user, LoggedIn: true, CreatedAt: time.Now().UTC()}
	return m.session, nil
}

func (m *mockSessionStore) IsLoggedIn(ctx context.Context) (bool, error) {
	if m.getErr != nil {
		return false, m.getErr
	}
	return m.session != nil && m.session.LoggedIn, nil
}

func (m *mockSessionStore) Clear(ctx context.Context) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.session = nil
	return nil
}

type mockSessionRecorder struct {
	events []string
}

func (m *mockSessionRecorder) RecordSessionEvent(event string) {
	m.events = append(m.events, event)
}

func newAuthFixture() (*AuthService, *mockUserRepo, *mockSessionStore, *mockSessionRecorder) {
	users := &mockUserRepo{}
	sessions := &mockSessionStore{}
	recorder := &mockSessionRecorder{}
	svc := NewAuthService(users, sessions, nil, nil, recorder, AuthConfig{BcryptCost: bcrypt.MinCost})
	return svc, users, sessions, recorder
}

func validSignup() validation.SignupForm {
	return validation.SignupForm{Name: " Ada Lovelace ", Email: "ada@example.com", Password: "abc123", ConfirmPassword: "abc123"}
}

func TestAuthServiceSignupHashesPassword(t *testing.T) {
	svc, users, sessions, _ := newAuthFixture()

	user, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", user.Name)

	require.Len(t, users.created, 1)
	hash := users.created[0].PasswordHash
	assert.NotEqual(t, "abc123", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("abc123")))
	assert.Nil(t, sessions.session, "signup must not log in")
}

func TestAuthServiceSignupValidationStopsBeforeBackend(t *testing.T) {
	svc, users, _, _ := newAuthFixture()
	form := validSignup()
	form.ConfirmPassword = "abc124"

	_, err := svc.Signup(context.Background(), form)
	require.Error(t, err)
	assert.Equal(t, "Passwords do not match.", err.Error())
	assert.Zero(t, users.lookups)
}

func TestAuthServiceSignupDuplicateEmail(t *testing.T) {
	svc, users, _, _ := newAuthFixture()
	users.users = map[string]*models.User{"ada@example.com": {ID: models.NewID("1"), Email: "ada@example.com"}}

	_, err := svc.Signup(context.Background(), validSignup())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, MsgEmailTaken, err.Error())
	assert.Empty(t, users.created)
}

func TestAuthServiceSignupBackendDown(t *testing.T) {
	svc, users, _, _ := newAuthFixture()
	users.findErr = errors.New("connection refused")

	_, err := svc.Signup(context.Background(), validSignup())
	assert.True(t, appErrors.IsCode(err, appErrors.ErrTransport.Code))
}

func TestAuthServiceLogin(t *testing.T) {
	svc, users, sessions, recorder := newAuthFixture()
	_, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	session, err := svc.Login(context.Background(), validation.LoginForm{Email: " ada@example.com ", Password: "abc123"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", session.User.Email)
	assert.False(t, session.User.ID.IsZero())
	assert.Same(t, sessions.session, session)
	assert.Equal(t, []string{SessionEventLogin}, recorder.events)
	assert.Equal(t, 2, users.lookups)
}

func TestAuthServiceLoginFailures(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("abc123"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name    string
		users   map[string]*models.User
		findErr error
		form    validation.LoginForm
		code    string
		message string
	}{
		{name: "invalid email", form: validation.LoginForm{Email: "nope", Password: "abc123"}, code: appErrors.ErrValidation.Code, message: "Please enter a valid email address."},
		{name: "unknown user", form: validation.LoginForm{Email: "ada@example.com", Password: "abc123"}, code: appErrors.ErrNotFound.Code, message: MsgUserNotFound},
		{
			name:    "wrong password",
			users:   map[string]*models.User{"ada@example.com": {ID: models.NewID("1"), Email: "ada@example.com", PasswordHash: string(hash)}},
			form:    validation.LoginForm{Email: "ada@example.com", Password: "abc124"},
			code:    appErrors.ErrInvalidCredentials.Code,
			message: "Invalid email or password.",
		},
		{
			name:    "plaintext legacy account",
			users:   map[string]*models.User{"ada@example.com": {ID: models.NewID("1"), Email: "ada@example.com", LegacyPassword: "abc123"}},
			form:    validation.LoginForm{Email: "ada@example.com", Password: "abc123"},
			code:    appErrors.ErrInvalidCredentials.Code,
			message: "Invalid email or password.",
		},
		{name: "backend down", findErr: errors.New("timeout"), form: validation.LoginForm{Email: "ada@example.com", Password: "abc123"}, code: appErrors.ErrTransport.Code},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, users, sessions, _ := newAuthFixture()
			users.users = tt.users
			users.findErr = tt.findErr

			_, err := svc.Login(context.Background(), tt.form)
			require.Error(t, err)
			assert.True(t, appErrors.IsCode(err, tt.code), err.Error())
			if tt.message != "" {
				assert.Equal(t, tt.message, err.Error())
			}
			assert.Nil(t, sessions.session)
		})
	}
}

func TestAuthServiceLogoutRevokesAccess(t *testing.T) {
	svc, _, sessions, recorder := newAuthFixture()
	sessions.session = &models.Session{User: models.SessionUser{ID: models.NewID("1"), Email: "ada@example.com"}, LoggedIn: true}
	ctx := context.Background()

	loggedIn, err := svc.IsLoggedIn(ctx)
	require.NoError(t, err)
	assert.True(t, loggedIn)

	require.NoError(t, svc.Logout(ctx))
	require.NoError(t, svc.Logout(ctx))

	loggedIn, err = svc.IsLoggedIn(ctx)
	require.NoError(t, err)
	assert.False(t, loggedIn)

	_, err = svc.RequireSession(ctx)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotAuthenticated.Code))
	_, err = svc.CurrentUser(ctx)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotAuthenticated.Code))
	assert.Equal(t, []string{SessionEventLogout, SessionEventLogout}, recorder.events)
}

func TestAuthServiceCurrentUserResolvesEmailOnlySession(t *testing.T) {
	svc, users, sessions, recorder := newAuthFixture()
	users.users = map[string]*models.User{"ada@example.com": {ID: models.NewID("7"), Name: "Ada", Email: "ada@example.com"}}
	sessions.session = &models.Session{User: models.SessionUser{Email: "ada@example.com"}, LoggedIn: true}

	user, err := svc.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.NewID("7"), user.ID)
	assert.Equal(t, models.NewID("7"), sessions.session.User.ID)
	assert.Equal(t, []string{SessionEventResolved}, recorder.events)

	_, err = svc.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, users.lookups)
}

func TestAuthServiceCurrentUserUnknownAccount(t *testing.T) {
	svc, _, sessions, _ := newAuthFixture()
	sessions.session = &models.Session{User: models.SessionUser{Email: "ghost@example.com"}, LoggedIn: true}

	_, err := svc.CurrentUser(context.Background())
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotAuthenticated.Code))
}

func TestAuthServiceStorageFailure(t *testing.T) {
	svc, _, sessions, _ := newAuthFixture()
	sessions.getErr = errors.New("disk gone")

	_, err := svc.RequireSession(context.Background())
	assert.True(t, appErrors.IsCode(err, appErrors.ErrInternal.Code))
	_, err = svc.IsLoggedIn(context.Background())
	assert.Error(t, err)
}
