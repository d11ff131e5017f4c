package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/nutrisnap/internal/api"
	"github.com/julianstephens/nutrisnap/internal/config"
	"github.com/julianstephens/nutrisnap/internal/constants"
	"github.com/julianstephens/nutrisnap/internal/datasync"
	apperr "github.com/julianstephens/nutrisnap/internal/errors"
	"github.com/julianstephens/nutrisnap/internal/logger"
	"github.com/julianstephens/nutrisnap/internal/media"
	"github.com/julianstephens/nutrisnap/internal/models"
	"github.com/julianstephens/nutrisnap/internal/notifier"
	"github.com/julianstephens/nutrisnap/internal/router"
	"github.com/julianstephens/nutrisnap/internal/session"
	"github.com/julianstephens/nutrisnap/internal/state"
	"github.com/julianstephens/nutrisnap/internal/storage"
)

// App ties the store to everything that feeds it. The TUI and the CLI
// commands both drive the client through it.
type App struct {
	Config  config.Config
	Store   *state.Store
	Client  *api.Client
	Notify  *notifier.Notifier
	Session *session.Controller
	Sync    *datasync.Synchronizer
	Camera  *media.Adapter
	Prefs   storage.Provider

	unwatch []func()

	mu  sync.Mutex
	cam *media.CameraSession
}

type options struct {
	device     media.Device
	prefs      storage.Provider
	httpOpts   []api.Option
	now        func() time.Time
	remember   bool
	noKeyring  bool
	checkDelay time.Duration
	secondary  time.Duration
	debounce   time.Duration
	ttlSuccess time.Duration
	ttlError   time.Duration
}

type Option func(*options)

// WithDevice replaces the capture command with another camera device
func WithDevice(d media.Device) Option {
	return func(o *options) { o.device = d }
}

// WithPreferences uses an already opened preferences store
func WithPreferences(p storage.Provider) Option {
	return func(o *options) { o.prefs = p }
}

// WithHTTP passes options through to the API client
func WithHTTP(opts ...api.Option) Option {
	return func(o *options) { o.httpOpts = append(o.httpOpts, opts...) }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithRemember stores new session cookies in the OS keyring
func WithRemember(remember bool) Option {
	return func(o *options) { o.remember = remember }
}

// WithoutKeyring never touches the OS keyring
func WithoutKeyring() Option {
	return func(o *options) { o.noKeyring = true }
}

// WithTimings overrides the auth check delay, the post-login load delay and
// the view fetch debounce
func WithTimings(check, secondary, debounce time.Duration) Option {
	return func(o *options) {
		o.checkDelay = check
		o.secondary = secondary
		o.debounce = debounce
	}
}

// WithBannerTTL overrides how long banners stay up
func WithBannerTTL(success, err time.Duration) Option {
	return func(o *options) {
		o.ttlSuccess = success
		o.ttlError = err
	}
}

func New(cfg config.Config, opts ...Option) (*App, error) {
	o := options{
		now:        time.Now,
		checkDelay: constants.CheckAuthDelay,
		secondary:  constants.SecondaryLoadDelay,
		debounce:   constants.ViewFetchDebounce,
		ttlSuccess: constants.SuccessNotifyTTL,
		ttlError:   constants.ErrorNotificationTTL,
	}
	for _, opt := range opts {
		opt(&o)
	}

	prefs := o.prefs
	if prefs == nil {
		p, err := storage.Open(cfg.StorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open preferences: %w", err)
		}
		prefs = p
	}
	if saved, err := prefs.GetPreferences(); err == nil {
		cfg = cfg.WithRemembered(saved.APIURL)
	}

	httpOpts := append([]api.Option{api.WithTimeout(cfg.Timeout)}, o.httpOpts...)
	client, err := api.New(cfg.APIURL, httpOpts...)
	if err != nil {
		if o.prefs == nil {
			prefs.Close()
		}
		return nil, err
	}

	store := state.NewStore(state.Initial(o.now().Format(constants.DateFormat)))
	notify := notifier.New(
		notifier.WithTTL(o.ttlSuccess, o.ttlError),
		notifier.WithSink(func(kind notifier.Kind, gen uint64, n *notifier.Notification) {
			store.Dispatch(state.NotificationChanged{Kind: kind, Gen: gen, Note: n})
		}),
	)

	syncer := datasync.New(client, store, notify,
		datasync.WithDebounce(o.debounce),
		datasync.WithClock(o.now),
	)

	sessOpts := []session.Option{
		session.WithDelays(o.checkDelay, o.secondary),
		session.WithSecondaryLoad(syncer.LoadSecondary),
		session.WithClock(o.now),
	}
	if !o.noKeyring {
		sessOpts = append(sessOpts, session.WithKeyring(cfg.APIURL, o.remember))
	}

	device := o.device
	if device == nil {
		device = media.ParseCommand(cfg.CameraCmd)
	}

	a := &App{
		Config:  cfg,
		Store:   store,
		Client:  client,
		Notify:  notify,
		Session: session.New(client, store, notify, sessOpts...),
		Sync:    syncer,
		Camera:  media.NewAdapter(device),
		Prefs:   prefs,
	}
	a.unwatch = []func(){syncer.Watch(), store.Subscribe(a.releaseCamera)}
	logger.Debug("App ready", "api", cfg.APIURL, "store", prefs.GetConfigPath())
	return a, nil
}

// Start schedules the startup auth check
func (a *App) Start(ctx context.Context) {
	a.Session.Start(ctx)
}

// Navigate moves to v after the session gate and returns where it landed
func (a *App) Navigate(v router.View) router.View {
	target := router.Resolve(v, a.Store.Snapshot().Authenticated())
	a.Store.Dispatch(state.Navigated{View: target})
	return target
}

// NavigateTo navigates by view name
func (a *App) NavigateTo(id string) router.View {
	return a.Navigate(router.Parse(id))
}

// Back goes to the parent of the current view
func (a *App) Back() router.View {
	return a.Navigate(router.Parent(a.Store.Snapshot().View))
}

// SelectDate changes the daily log date and remembers it
func (a *App) SelectDate(date string) error {
	if err := a.Sync.SelectDate(date); err != nil {
		a.Notify.Error(apperr.Message(err))
		return err
	}
	if err := a.Prefs.TouchDate(date); err != nil {
		logger.Warn("Failed to record recent date", "date", date, "error", err)
	}
	return nil
}

// StartCamera opens the camera view. When no camera can be opened the file
// picker is requested instead and ErrCameraUnavailable is returned.
func (a *App) StartCamera(ctx context.Context) error {
	a.Navigate(router.Screen(router.CameraCapture))

	cam, err := a.Camera.StartCamera(ctx)
	if err != nil {
		a.Store.Dispatch(state.FilePickerRequested{On: true})
		return err
	}

	a.mu.Lock()
	if a.Store.Snapshot().View.ID() != router.CameraCapture {
		a.mu.Unlock()
		cam.Stop()
		return media.ErrSessionClosed
	}
	prev := a.cam
	a.cam = cam
	a.mu.Unlock()
	if prev != nil {
		prev.Stop()
	}
	return nil
}

// StopCamera releases the camera if one is open
func (a *App) StopCamera() {
	a.mu.Lock()
	cam := a.cam
	a.cam = nil
	a.mu.Unlock()
	if cam != nil {
		cam.Stop()
	}
}

// releaseCamera stops the camera once the store leaves the camera view,
// whether by navigation, logout or a write that moved the view
func (a *App) releaseCamera(s state.State) {
	if s.View == nil || s.View.ID() != router.CameraCapture {
		a.StopCamera()
	}
}

// CameraActive reports whether a camera session is open
func (a *App) CameraActive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cam != nil && a.cam.Active()
}

// CaptureAndAnalyze takes a photo with the open camera and sends it for
// food analysis
func (a *App) CaptureAndAnalyze(ctx context.Context) (models.Analysis, error) {
	a.mu.Lock()
	cam := a.cam
	a.cam = nil
	a.mu.Unlock()
	if cam == nil {
		a.Store.Dispatch(state.FilePickerRequested{On: true})
		return models.Analysis{}, media.ErrSessionClosed
	}

	blob, err := cam.Capture(ctx)
	if err != nil {
		a.Notify.Error(fmt.Sprintf(constants.MsgAnalysisFailed, err))
		return models.Analysis{}, err
	}
	return a.Sync.AnalyzeFood(ctx, blob)
}

// AnalyzeFile sends a picked image file for food analysis
func (a *App) AnalyzeFile(ctx context.Context, path string) (models.Analysis, error) {
	a.Store.Dispatch(state.FilePickerRequested{On: false})
	blob, err := a.LoadImage(path)
	if err != nil {
		return models.Analysis{}, err
	}
	return a.Sync.AnalyzeFood(ctx, blob)
}

// LoadImage reads an image file, raising an error banner when it cannot
func (a *App) LoadImage(path string) (media.Blob, error) {
	blob, err := media.FromFile(path)
	if err != nil {
		msg := fmt.Sprintf("Could not read image: %v", err)
		if errors.Is(err, media.ErrNotImage) {
			msg = "Please choose an image file"
		}
		a.Notify.Error(msg)
		return media.Blob{}, err
	}
	return blob, nil
}

// Preferences returns the saved preferences, or the defaults when they
// cannot be read
func (a *App) Preferences() storage.Preferences {
	p, err := a.Prefs.GetPreferences()
	if err != nil {
		logger.Warn("Failed to read preferences", "error", err)
		return storage.DefaultPreferences()
	}
	return p
}

// UpdatePreferences applies fn to the saved preferences and stores them
func (a *App) UpdatePreferences(fn func(*storage.Preferences)) error {
	p := a.Preferences()
	fn(&p)
	if err := a.Prefs.SavePreferences(p); err != nil {
		a.Notify.Error("Failed to save settings")
		return err
	}
	return nil
}

// RememberAPIURL saves the current API URL as the default for later runs
func (a *App) RememberAPIURL() error {
	return a.UpdatePreferences(func(p *storage.Preferences) { p.APIURL = a.Client.BaseURL() })
}

// Close releases the camera, stops background work and closes the
// preferences store
func (a *App) Close() error {
	for _, stop := range a.unwatch {
		stop()
	}
	a.StopCamera()
	a.Session.Close()
	a.Sync.Close()
	a.Notify.Close()
	return a.Prefs.Close()
}
