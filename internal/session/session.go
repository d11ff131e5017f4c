package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/nutrisnap/internal/api"
	"github.com/julianstephens/nutrisnap/internal/constants"
	apperr "github.com/julianstephens/nutrisnap/internal/errors"
	"github.com/julianstephens/nutrisnap/internal/keyring"
	"github.com/julianstephens/nutrisnap/internal/logger"
	"github.com/julianstephens/nutrisnap/internal/models"
	"github.com/julianstephens/nutrisnap/internal/notifier"
	"github.com/julianstephens/nutrisnap/internal/router"
	"github.com/julianstephens/nutrisnap/internal/state"
	"github.com/julianstephens/nutrisnap/internal/validation"
)

// Backend is the part of the API client the controller needs
type Backend interface {
	Health(ctx context.Context) (*api.HealthResponse, error)
	Login(ctx context.Context, creds api.Credentials) (*api.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*api.AuthResponse, error)
	Logout(ctx context.Context) error
	AdvancedStats(ctx context.Context) (*api.StatsResponse, error)
	SessionCookie() string
	RestoreSession(serialized string) error
	ClearSession()
}

// ErrNoSession is returned by CheckAuth when the backend has no session for us
var ErrNoSession = errors.New("not signed in")

// Controller owns the session lifecycle
type Controller struct {
	client   Backend
	store    *state.Store
	notify   *notifier.Notifier
	validate *validation.Validator
	now      func() time.Time

	checkDelay     time.Duration
	secondaryDelay time.Duration
	secondary      func(ctx context.Context)

	// keyringURL scopes the remembered cookie; empty disables the keyring
	keyringURL string
	remember   bool

	once     sync.Once
	checked  chan struct{}
	checkRes *models.Session
	checkErr error

	mu      sync.Mutex
	pending []*time.Timer
	cancel  context.CancelFunc
}

type Option func(*Controller)

// WithDelays overrides the startup auth check delay and the post-login
// secondary load delay
func WithDelays(check, secondary time.Duration) Option {
	return func(c *Controller) {
		c.checkDelay = check
		c.secondaryDelay = secondary
	}
}

// WithSecondaryLoad sets what runs shortly after a successful login
func WithSecondaryLoad(fn func(ctx context.Context)) Option {
	return func(c *Controller) { c.secondary = fn }
}

// WithKeyring remembers session cookies for apiURL in the OS keyring.
// When remember is false an existing cookie is still restored and cleared
// but new ones are not written.
func WithKeyring(apiURL string, remember bool) Option {
	return func(c *Controller) {
		c.keyringURL = apiURL
		c.remember = remember
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func New(client Backend, store *state.Store, notify *notifier.Notifier, opts ...Option) *Controller {
	c := &Controller{
		client:         client,
		store:          store,
		notify:         notify,
		now:            time.Now,
		checkDelay:     constants.CheckAuthDelay,
		secondaryDelay: constants.SecondaryLoadDelay,
		checked:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.validate = validation.New().WithClock(c.now)
	return c
}

// Login signs in with the draft's credentials
func (c *Controller) Login(ctx context.Context, d models.LoginDraft) (*models.Session, error) {
	if err := c.validate.Login(d).Err(); err != nil {
		c.notify.Error(apperr.Message(err))
		return nil, err
	}

	res, err := c.client.Login(ctx, api.Credentials{Email: strings.TrimSpace(d.Email), Password: d.Password})
	if err != nil {
		logger.Warn("Login failed", "error", err)
		c.notify.Error(apperr.Message(err))
		return nil, err
	}

	sess := models.Session{User: res.User}
	c.begin(sess, state.FormLogin, fmt.Sprintf(constants.MsgWelcomeBack, res.User.Username))
	return &sess, nil
}

// Register creates an account and signs in
func (c *Controller) Register(ctx context.Context, d models.RegisterDraft) (*models.Session, error) {
	req, result := c.validate.Register(d)
	if err := result.Err(); err != nil {
		c.notify.Error(apperr.Message(err))
		return nil, err
	}

	res, err := c.client.Register(ctx, req)
	if err != nil {
		logger.Warn("Registration failed", "error", err)
		c.notify.Error(apperr.Message(err))
		return nil, err
	}

	sess := models.Session{User: res.User}
	c.begin(sess, state.FormRegister, fmt.Sprintf(constants.MsgWelcome, res.User.Username))
	return &sess, nil
}

func (c *Controller) begin(sess models.Session, form state.Form, greeting string) {
	logger.Info("Session started", "user", sess.User.Username)
	c.store.Dispatch(state.SessionStarted{Session: sess})
	c.store.Dispatch(state.DraftReset{Form: form})
	c.store.Dispatch(state.Navigated{View: router.Screen(router.Dashboard)})
	c.notify.Success(greeting)
	c.rememberCookie()
	c.scheduleSecondary()
}

// Logout ends the session locally whatever the backend says
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.client.Logout(ctx); err != nil {
		logger.Warn("Logout request failed", "error", err)
	}
	c.client.ClearSession()
	c.cancelPending()
	c.forgetCookie()

	c.notify.Reset()
	c.store.Dispatch(state.LoggedOut{Today: c.now().Format(constants.DateFormat)})
	c.notify.Success(constants.MsgSignedOut)
	logger.Info("Session ended")
	return nil
}

// Start schedules the one-time auth check
func (c *Controller) Start(ctx context.Context) {
	t := time.AfterFunc(c.checkDelay, func() {
		_, _ = c.CheckAuth(ctx)
	})
	c.track(t)
}

// checkDone is closed once the startup auth check has finished
func (c *Controller) checkDone() <-chan struct{} {
	return c.checked
}

// CheckAuth restores an existing session. It talks to the backend only on
// the first call; later calls return the first result.
func (c *Controller) CheckAuth(ctx context.Context) (*models.Session, error) {
	c.once.Do(func() {
		defer close(c.checked)
		c.checkRes, c.checkErr = c.checkAuth(ctx)
	})
	return c.checkRes, c.checkErr
}

func (c *Controller) checkAuth(ctx context.Context) (*models.Session, error) {
	c.restoreCookie()

	if _, err := c.client.Health(ctx); err != nil {
		logger.Warn("Backend health check failed", "error", err)
		if api.IsKind(err, api.KindNetwork) {
			c.notify.Error(constants.MsgServerUnreachable)
		}
		c.store.Dispatch(state.Navigated{View: router.Screen(router.Login)})
		return nil, err
	}

	stats, err := c.client.AdvancedStats(ctx)
	if err != nil {
		logger.Debug("No existing session", "error", err)
		c.store.Dispatch(state.Navigated{View: router.Screen(router.Login)})
		return nil, fmt.Errorf("%w: %w", ErrNoSession, err)
	}

	sess := models.Session{User: stats.User, Stats: stats.Stats()}
	c.store.Dispatch(state.SessionStarted{Session: sess})
	c.store.Dispatch(state.Navigated{View: router.Screen(router.Dashboard)})
	logger.Info("Session restored", "user", sess.User.Username)
	return &sess, nil
}

// RefreshStats reloads the session's stats block
func (c *Controller) RefreshStats(ctx context.Context) error {
	owner := c.store.Snapshot().Owner()
	stats, err := c.client.AdvancedStats(ctx)
	if err != nil {
		return err
	}
	c.store.Dispatch(state.UserUpdated{Owner: owner, User: stats.User})
	c.store.Dispatch(state.StatsUpdated{Owner: owner, Stats: stats.Stats()})
	return nil
}

// Close stops any scheduled work
func (c *Controller) Close() {
	c.cancelPending()
}

func (c *Controller) scheduleSecondary() {
	if c.secondary == nil {
		return
	}
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()

	t := time.AfterFunc(c.secondaryDelay, func() { c.secondary(ctx) })
	c.track(t)
}

func (c *Controller) track(t *time.Timer) {
	c.mu.Lock()
	c.pending = append(c.pending, t)
	c.mu.Unlock()
}

func (c *Controller) cancelPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.pending {
		t.Stop()
	}
	c.pending = nil
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) restoreCookie() {
	if c.keyringURL == "" {
		return
	}
	cookie, err := keyring.GetSession(c.keyringURL)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			logger.Warn("Could not read remembered session", "error", err)
		}
		return
	}
	if err := c.client.RestoreSession(cookie); err != nil {
		logger.Warn("Remembered session is unusable", "error", err)
	}
}

func (c *Controller) rememberCookie() {
	if c.keyringURL == "" || !c.remember {
		return
	}
	cookie := c.client.SessionCookie()
	if cookie == "" {
		return
	}
	if err := keyring.SetSession(c.keyringURL, cookie); err != nil {
		logger.Warn("Could not remember session", "error", err)
	}
}

func (c *Controller) forgetCookie() {
	if c.keyringURL == "" {
		return
	}
	if err := keyring.DeleteSession(c.keyringURL); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		logger.Warn("Could not forget session", "error", err)
	}
}
