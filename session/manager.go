// Package session owns the signed-in identity lifecycle: login-code
// exchange, account synthesis, profile synchronization, logout and cached
// session validation. It is the sole writer of the persisted Session.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/health-tracker-project/health-client/dispatch"
	"github.com/health-tracker-project/health-client/logger"
	"github.com/health-tracker-project/health-client/schema"
	"github.com/health-tracker-project/health-client/store"
	"github.com/health-tracker-project/health-client/types"
)

// Storage keys in the device-local store.
const (
	KeySession = "userInfo"
	KeyProfile = "userProfile"
)

// Backend user endpoints. Paths are fixed; only the base URL is
// configurable.
const usersEndpoint = "/users/"

func userEndpoint(id int64) string {
	return fmt.Sprintf("/users/%d", id)
}

// LoginCodeProvider yields a one-time, short-lived login code from the host
// platform. The code is a weak identity seed, not a credential.
type LoginCodeProvider interface {
	LoginCode(ctx context.Context) (string, error)
}

// LoginCodeFunc adapts a function to LoginCodeProvider.
type LoginCodeFunc func(ctx context.Context) (string, error)

func (f LoginCodeFunc) LoginCode(ctx context.Context) (string, error) { return f(ctx) }

// Manager establishes and maintains a single signed-in identity. Construct
// one at the composition root; it never fabricates a Session without a
// successful backend confirmation or creation.
type Manager struct {
	dispatcher *dispatch.Dispatcher
	store      store.Store
	login      LoginCodeProvider
	validator  *schema.UserValidator
	log        *logger.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger overrides the logger.
func WithLogger(l *logger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager wires a session manager over the dispatcher, store and
// platform login primitive.
func NewManager(d *dispatch.Dispatcher, st store.Store, login LoginCodeProvider, opts ...Option) (*Manager, error) {
	validator, err := schema.NewUserValidator()
	if err != nil {
		return nil, err
	}
	m := &Manager{
		dispatcher: d,
		store:      st,
		login:      login,
		validator:  validator,
		log:        logger.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// LoginResult is the outcome of LoginUser.
type LoginResult struct {
	Success   bool
	Session   *types.Session
	IsNewUser bool
	Error     *types.RequestError
}

// UpdateResult is the outcome of UpdateUserProfile.
type UpdateResult struct {
	Success bool
	Session *types.Session
	Error   error
}

// LogoutResult is the outcome of LogoutUser.
type LogoutResult struct {
	Success bool
	Error   error
}

// Status is the outcome of CheckLoginStatus.
type Status struct {
	IsLoggedIn bool
	User       *types.Session
	Error      error
}

// LoginUser signs the device in. A cached session whose stored login code
// matches the fresh one is re-validated against the backend and reused;
// otherwise a new account is synthesized and created. The existence check
// is best effort: the backend has no code-to-identity lookup, so a cache
// miss simply falls through to account creation.
func (m *Manager) LoginUser(ctx context.Context) LoginResult {
	code, err := m.login.LoginCode(ctx)
	if err != nil || code == "" {
		m.log.Error("platform login primitive failed", err)
		return LoginResult{Error: types.WrapRequestError(types.ErrorTypeLoginFailed,
			"failed to obtain login code", err)}
	}

	if cached, ok := m.readSession(); ok && cached.WxCode == code {
		if sess, ok := m.confirmExisting(ctx, cached.ID, code); ok {
			m.log.Infof("login reused existing account %d", sess.ID)
			return LoginResult{Success: true, Session: sess, IsNewUser: false}
		}
	}

	account := SynthesizeAccount("", code)
	if err := m.validator.ValidateCreate(account); err != nil {
		return LoginResult{Error: types.WrapRequestError(types.ErrorTypeLoginFailed,
			"synthesized account failed validation", err)}
	}

	outcome := m.dispatcher.Request(ctx, usersEndpoint, http.MethodPost, account, nil)
	if !outcome.Success {
		m.log.Error("account creation failed", outcome.Error)
		return LoginResult{Error: outcome.Error}
	}

	user, err := decodeUser(outcome)
	if err != nil {
		return LoginResult{Error: types.WrapRequestError(types.ErrorTypeLoginFailed,
			"unexpected account creation response", err)}
	}

	sess := types.SessionFromUser(user, code)
	if err := m.persistSession(sess); err != nil {
		return LoginResult{Error: types.WrapRequestError(types.ErrorTypeLoginFailed,
			"failed to persist session", err)}
	}

	m.log.Infof("created account %d (%s)", sess.ID, sess.Username)
	return LoginResult{Success: true, Session: &sess, IsNewUser: true}
}

// confirmExisting verifies the cached account still exists server-side and
// refreshes the persisted copy.
func (m *Manager) confirmExisting(ctx context.Context, id int64, code string) (*types.Session, bool) {
	outcome := m.dispatcher.Get(ctx, userEndpoint(id))
	if !outcome.Success {
		return nil, false
	}
	user, err := decodeUser(outcome)
	if err != nil {
		return nil, false
	}
	sess := types.SessionFromUser(user, code)
	if err := m.persistSession(sess); err != nil {
		return nil, false
	}
	return &sess, true
}

// UpdateUserProfile PUTs partial fields to the backend and, on success,
// overwrites the persisted Session with the server's representation. The
// server is authoritative for every identity field; only the locally-held
// login code is carried over.
func (m *Manager) UpdateUserProfile(ctx context.Context, id int64, fields types.UserUpdate) UpdateResult {
	if err := m.validator.ValidateUpdate(fields); err != nil {
		return UpdateResult{Error: err}
	}

	outcome := m.dispatcher.Request(ctx, userEndpoint(id), http.MethodPut, fields, nil)
	if !outcome.Success {
		return UpdateResult{Error: outcome.Error}
	}

	user, err := decodeUser(outcome)
	if err != nil {
		return UpdateResult{Error: fmt.Errorf("unexpected profile update response: %w", err)}
	}

	wxCode := ""
	if cached, ok := m.readSession(); ok {
		wxCode = cached.WxCode
	}
	sess := types.SessionFromUser(user, wxCode)
	if err := m.persistSession(sess); err != nil {
		return UpdateResult{Error: err}
	}
	return UpdateResult{Success: true, Session: &sess}
}

// LogoutUser clears the persisted Session and any cached profile entry.
// Calling it on an already signed-out device succeeds.
func (m *Manager) LogoutUser() LogoutResult {
	var firstErr error
	for _, key := range []string{KeySession, KeyProfile} {
		if err := m.store.Delete(key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return LogoutResult{Error: firstErr}
	}
	return LogoutResult{Success: true}
}

// CheckLoginStatus reads the persisted Session and confirms the account
// still exists server-side. The check runs with a single attempt: session
// checks favour latency over resilience. A failed confirmation invalidates
// the persisted Session.
func (m *Manager) CheckLoginStatus(ctx context.Context) Status {
	cached, ok := m.readSession()
	if !ok || cached.ID == 0 {
		return Status{IsLoggedIn: false}
	}

	outcome := m.dispatcher.Request(ctx, userEndpoint(cached.ID), http.MethodGet, nil,
		&dispatch.RequestOptions{MaxRetries: 1})
	if !outcome.Success {
		m.log.Warnf("session validation failed for account %d: %s", cached.ID, outcome.Error.Error())
		m.LogoutUser()
		return Status{IsLoggedIn: false, Error: outcome.Error}
	}

	user, err := decodeUser(outcome)
	if err != nil {
		m.LogoutUser()
		return Status{IsLoggedIn: false, Error: err}
	}

	sess := types.SessionFromUser(user, cached.WxCode)
	if err := m.persistSession(sess); err != nil {
		return Status{IsLoggedIn: false, Error: err}
	}
	return Status{IsLoggedIn: true, User: &sess}
}

// CacheProfile stores page-level profile data next to the session. It is
// cleared on logout together with the session.
func (m *Manager) CacheProfile(data []byte) error {
	return m.store.Set(KeyProfile, data)
}

// CachedProfile returns previously cached profile data, if any.
func (m *Manager) CachedProfile() ([]byte, bool, error) {
	return m.store.Get(KeyProfile)
}

func (m *Manager) readSession() (types.Session, bool) {
	data, ok, err := m.store.Get(KeySession)
	if err != nil || !ok {
		return types.Session{}, false
	}
	var sess types.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return types.Session{}, false
	}
	return sess, true
}

func (m *Manager) persistSession(sess types.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return m.store.Set(KeySession, data)
}

// decodeUser unwraps a user from the backend's {data, message} envelope,
// falling back to a bare user object for older deployments.
func decodeUser(outcome types.RequestOutcome) (types.User, error) {
	var envelope types.UserResponse
	if err := outcome.Decode(&envelope); err == nil && envelope.Data.ID != 0 {
		return envelope.Data, nil
	}
	var user types.User
	if err := outcome.Decode(&user); err != nil {
		return types.User{}, err
	}
	if user.ID == 0 {
		return types.User{}, fmt.Errorf("response carries no user id")
	}
	return user, nil
}
