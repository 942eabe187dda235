package deeplink

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Resolver defaults.
const (
	DefaultDetectTimeout = 2 * time.Second
	DefaultSettleDelay   = 500 * time.Millisecond
	DefaultFreshness     = 5 * time.Minute
	DefaultOrigin        = "/"
)

var (
	// ErrAlreadyStarted - Run was called twice on one Resolver.
	ErrAlreadyStarted = errors.New("resolver already started")
	// ErrNoFallback - Download was called while no download fallback is shown.
	ErrNoFallback = errors.New("download fallback is not shown")
)

// State is a Resolver state.
type State int

const (
	Idle State = iota
	ResolvingToken
	Failed
	RedirectedToOrigin
	Resolved
	Navigating
	AttemptingNativeOpen
	DetectedOpen
	TimedOut
	ShowDownloadFallback
	Resuming
)

var stateNames = [...]string{
	Idle:                 "idle",
	ResolvingToken:       "resolving-token",
	Failed:               "failed",
	RedirectedToOrigin:   "redirected-to-origin",
	Resolved:             "resolved",
	Navigating:           "navigating",
	AttemptingNativeOpen: "attempting-native-open",
	DetectedOpen:         "detected-open",
	TimedOut:             "timed-out",
	ShowDownloadFallback: "show-download-fallback",
	Resuming:             "resuming",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no further transition happens without user action.
func (s State) Terminal() bool {
	switch s {
	case RedirectedToOrigin, Navigating, DetectedOpen:
		return true
	}
	return false
}

// Browser performs navigation side effects.
type Browser interface {
	// Navigate replaces the current page.
	Navigate(url string) error
	// OpenNewContext opens url without leaving the current page.
	OpenNewContext(url string) error
	// OpenNative asks the OS to open a native app URL.
	OpenNative(url string) error
}

// Redeemer exchanges a handoff token for a destination URL.
type Redeemer interface {
	Redeem(ctx context.Context, token string) (string, error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithApp overrides the LINE app profile.
func WithApp(app App) Option {
	return func(r *Resolver) { r.app = app }
}

// WithDetectTimeout sets how long to wait for the page to lose focus.
func WithDetectTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.detectTimeout = d }
}

// WithSettleDelay sets the pause before navigating after a resumed open.
func WithSettleDelay(d time.Duration) Option {
	return func(r *Resolver) { r.settleDelay = d }
}

// WithFreshness sets how long a pending handoff may be resumed.
func WithFreshness(d time.Duration) Option {
	return func(r *Resolver) { r.freshness = d }
}

// WithOrigin sets the funnel origin users are sent back to on failure.
func WithOrigin(origin string) Option {
	return func(r *Resolver) { r.origin = origin }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithLogger sets the logger.
func WithLogger(sugar *zap.SugaredLogger) Option {
	return func(r *Resolver) { r.sugar = sugar }
}

type detectResult int

const (
	detectOpened detectResult = iota
	detectTimedOut
	detectBusy
)

// Resolver drives one resolution view: redeem the token, then hand the
// destination to the browser or the native app.
type Resolver struct {
	platform Platform
	app      App
	browser  Browser
	store    HandoffStore
	redeemer Redeemer
	sugar    *zap.SugaredLogger

	detectTimeout time.Duration
	settleDelay   time.Duration
	freshness     time.Duration
	origin        string
	now           func() time.Time

	mu            sync.Mutex
	state         State
	started       bool
	destination   string
	storeURL      string
	fallbackShown bool
	// blur is the one-shot focus-loss signal of the running detection, nil when idle.
	blur chan struct{}
}

// NewResolver creates a Resolver for a client with the given User-Agent.
func NewResolver(userAgent string, browser Browser, store HandoffStore, redeemer Redeemer, opts ...Option) *Resolver {
	r := &Resolver{
		platform:      DetectPlatform(userAgent),
		app:           LINE,
		browser:       browser,
		store:         store,
		redeemer:      redeemer,
		sugar:         zap.NewNop().Sugar(),
		detectTimeout: DefaultDetectTimeout,
		settleDelay:   DefaultSettleDelay,
		freshness:     DefaultFreshness,
		origin:        DefaultOrigin,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current state.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Platform returns the detected client platform.
func (r *Resolver) Platform() Platform { return r.platform }

// Destination returns the destination being handed off, empty before resolution.
func (r *Resolver) Destination() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destination
}

// StoreURL returns the download page offered by the fallback.
func (r *Resolver) StoreURL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.storeURL
}

// Run executes the resolution view once: a pending handoff left by an earlier
// load is replayed first; otherwise token is redeemed and its destination handed off.
// Run returns when the view reaches a terminal state or shows the download fallback.
func (r *Resolver) Run(ctx context.Context, token string) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return ErrAlreadyStarted
	}
	r.started = true
	r.mu.Unlock()

	replayed, err := r.replayPending(ctx)
	if err != nil || replayed {
		return err
	}

	if token == "" {
		r.sugar.Infow("no token, back to origin")
		return r.toOrigin()
	}

	r.setState(ResolvingToken)
	dest, err := r.redeemer.Redeem(ctx, token)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.sugar.Warnw("token not redeemed", "error", err)
		return r.toOrigin()
	}
	if dest == "" {
		r.sugar.Warnw("token redeemed to an empty destination")
		return r.toOrigin()
	}

	r.mu.Lock()
	r.destination = dest
	r.state = Resolved
	r.mu.Unlock()

	return r.handOff(ctx, dest)
}

// NotifyBlur reports that the page lost focus. It resolves the running
// detection as opened and is a no-op when none is running.
func (r *Resolver) NotifyBlur() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.blur != nil {
		close(r.blur)
		r.blur = nil
	}
}

// OnVisible handles the page becoming visible again. Only a view that has shown
// the download fallback resumes: a fresh pending handoff is retried, a stale one dropped.
func (r *Resolver) OnVisible(ctx context.Context) error {
	r.mu.Lock()
	resume := r.fallbackShown && r.state == ShowDownloadFallback
	r.mu.Unlock()
	if !resume {
		return nil
	}

	p, ok := r.loadPending()
	if !ok {
		return nil
	}
	if !p.Fresh(r.now(), r.freshness) {
		r.sugar.Infow("stale pending handoff dropped", "destination", p.DestinationURL)
		return r.deletePending()
	}

	r.setState(Resuming)
	res, err := r.detect(ctx, p.DestinationURL)
	if err != nil {
		r.setState(ShowDownloadFallback)
		return err
	}

	switch res {
	case detectOpened:
		// a cancelled settle keeps the record so the next return can resume
		if err := sleepCtx(ctx, r.settleDelay); err != nil {
			r.setState(ShowDownloadFallback)
			return err
		}
		if err := r.deletePending(); err != nil {
			return err
		}
		return r.navigate(p.DestinationURL)
	case detectBusy:
		return nil
	default:
		r.setState(ShowDownloadFallback)
		return nil
	}
}

// Download is the user action on the fallback: it refreshes the pending
// handoff and opens the store page in a new browsing context.
func (r *Resolver) Download() error {
	r.mu.Lock()
	if r.state != ShowDownloadFallback {
		r.mu.Unlock()
		return ErrNoFallback
	}
	dest, storeURL := r.destination, r.storeURL
	r.mu.Unlock()

	if err := r.store.Save(NewPendingHandoff(dest, r.now())); err != nil {
		return fmt.Errorf("save pending handoff: %w", err)
	}
	if err := r.browser.OpenNewContext(storeURL); err != nil {
		return fmt.Errorf("open store page: %w", err)
	}
	return nil
}

// replayPending resumes a handoff persisted by an earlier load. It reports
// whether the view was settled by the replay.
func (r *Resolver) replayPending(ctx context.Context) (bool, error) {
	p, ok := r.loadPending()
	if !ok {
		return false, nil
	}
	if !p.Fresh(r.now(), r.freshness) || !r.app.Capable(p.DestinationURL) {
		return false, r.deletePending()
	}

	r.sugar.Infow("replaying pending handoff", "destination", p.DestinationURL)
	r.mu.Lock()
	r.destination = p.DestinationURL
	r.mu.Unlock()

	r.setState(AttemptingNativeOpen)
	res, err := r.detect(ctx, p.DestinationURL)
	if err != nil {
		return true, err
	}
	if res == detectOpened {
		if err := r.deletePending(); err != nil {
			return true, err
		}
		return true, r.navigate(p.DestinationURL)
	}
	r.setState(TimedOut)
	r.showFallback()
	return true, nil
}

// handOff moves a resolved destination to the browser or the native app.
func (r *Resolver) handOff(ctx context.Context, dest string) error {
	if !r.app.Capable(dest) {
		if err := r.deletePending(); err != nil {
			return err
		}
		return r.navigate(dest)
	}

	r.setState(AttemptingNativeOpen)
	res, err := r.detect(ctx, dest)
	if err != nil {
		return err
	}

	if res == detectOpened {
		if err := r.deletePending(); err != nil {
			return err
		}
		if !r.platform.Mobile() {
			return r.navigate(dest)
		}
		r.setState(DetectedOpen)
		r.sugar.Infow("native app opened", "destination", dest, "platform", r.platform)
		return nil
	}

	r.setState(TimedOut)
	if err := r.store.Save(NewPendingHandoff(dest, r.now())); err != nil {
		return fmt.Errorf("save pending handoff: %w", err)
	}
	r.showFallback()
	return nil
}

// detect attempts the native open and waits for focus loss. Desktop succeeds
// at once. A cancelled ctx abandons the attempt and is returned as the error.
func (r *Resolver) detect(ctx context.Context, dest string) (detectResult, error) {
	if !r.platform.Mobile() {
		return detectOpened, nil
	}

	r.mu.Lock()
	if r.blur != nil {
		r.mu.Unlock()
		return detectBusy, nil
	}
	blur := make(chan struct{})
	r.blur = blur
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		if r.blur == blur {
			r.blur = nil
		}
		r.mu.Unlock()
	}()

	native := r.app.NativeURL(dest, r.platform)
	if err := r.browser.OpenNative(native); err != nil {
		r.sugar.Warnw("native open failed", "url", native, "error", err)
		return detectTimedOut, nil
	}

	timer := time.NewTimer(r.detectTimeout)
	defer timer.Stop()

	select {
	case <-blur:
		return detectOpened, nil
	case <-timer.C:
		return detectTimedOut, nil
	case <-ctx.Done():
		return detectTimedOut, ctx.Err()
	}
}

func (r *Resolver) showFallback() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storeURL = r.app.StoreURL(r.platform)
	r.fallbackShown = true
	r.state = ShowDownloadFallback
}

func (r *Resolver) navigate(dest string) error {
	r.setState(Navigating)
	if err := r.browser.Navigate(dest); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}
	return nil
}

func (r *Resolver) toOrigin() error {
	r.setState(Failed)
	if err := r.browser.Navigate(r.origin); err != nil {
		return fmt.Errorf("navigate to origin: %w", err)
	}
	r.setState(RedirectedToOrigin)
	return nil
}

func (r *Resolver) setState(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.Terminal() {
		return
	}
	r.state = s
}

// loadPending reads the pending handoff; a corrupt record is dropped.
func (r *Resolver) loadPending() (PendingHandoff, bool) {
	p, ok, err := r.store.Load()
	if err != nil {
		r.sugar.Warnw("pending handoff unreadable, dropped", "error", err)
		_ = r.store.Delete()
		return PendingHandoff{}, false
	}
	return p, ok
}

func (r *Resolver) deletePending() error {
	if err := r.store.Delete(); err != nil {
		return fmt.Errorf("delete pending handoff: %w", err)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
