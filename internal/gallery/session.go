// Package gallery implements the server side of a mounted gallery page.
//
// Each page view owns one Session: a goroutine that holds the loaded
// artworks, layout items, and loading flags, and processes every event for
// that page in order. Scroll events are debounced and evaluated against the
// state the goroutine holds when the timer fires, so a check never sees a
// stale cursor. Fetches run on their own goroutines and post their results
// back; results arriving after Close are dropped.
package gallery

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/DukeRupert/youkai/internal/domain"
	"github.com/DukeRupert/youkai/internal/metrics"
	"github.com/DukeRupert/youkai/internal/service"
)

// ErrClosed is returned by Session methods after Close.
var ErrClosed = errors.New("gallery session closed")

// Default scroll behavior.
const (
	DefaultThreshold = 1000
	DefaultDebounce  = 150 * time.Millisecond
)

// Phase is the lifecycle state of a gallery session.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseError
	PhaseEmpty
	PhaseLoaded
	PhaseLoadingMore
	PhaseExhausted
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseError:
		return "error"
	case PhaseEmpty:
		return "empty"
	case PhaseLoaded:
		return "loaded"
	case PhaseLoadingMore:
		return "loading_more"
	case PhaseExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Fetcher fetches gallery pages.
type Fetcher interface {
	FetchInitial(ctx context.Context) (*service.GalleryPage, error)
	FetchMore(ctx context.Context, loaded []domain.Artwork) (*service.GalleryPage, error)
}

// Config controls scroll handling.
type Config struct {
	// Threshold is the distance in pixels from the bottom of the document
	// at which the next page is requested.
	Threshold int

	// Debounce is the quiet period after the last scroll event before the
	// position is evaluated. Zero evaluates immediately.
	Debounce time.Duration
}

// ScrollPosition is a scroll measurement reported by the browser.
type ScrollPosition struct {
	Top      int // scrollTop
	Viewport int // innerHeight
	Document int // document scrollHeight
}

// NearBottom reports whether the viewport is within threshold of the end.
func (p ScrollPosition) NearBottom(threshold int) bool {
	return p.Top+p.Viewport >= p.Document-threshold
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	ID       string
	Phase    Phase
	Artworks []domain.Artwork
	Items    []domain.LayoutItem
	HasMore  bool
	Error    string
	URL      string
	Selected string
}

// Delta is what one incremental fetch changed.
type Delta struct {
	Items   []domain.LayoutItem
	HasMore bool
	Phase   Phase
	Error   string
}

// Session is the state owner for one mounted gallery page.
type Session struct {
	id      string
	fetcher Fetcher
	cfg     Config
	logger  *slog.Logger

	events    chan any
	done      chan struct{}
	closeOnce sync.Once
	cancel    context.CancelFunc
}

// state is only touched by the session goroutine.
type state struct {
	phase    Phase
	started  bool
	artworks []domain.Artwork
	items    []domain.LayoutItem
	hasMore  bool
	err      string
	inFlight bool
	router   *Router

	lastScroll   ScrollPosition
	scrollReply  chan *Delta // most recent scroll caller awaiting the debounce
	fetchReply   chan *Delta // caller awaiting the in-flight incremental fetch
	loadWaiters  []chan Snapshot
	debounce     *time.Timer
	debounceFire <-chan time.Time
}

// Events handled by the session goroutine.
type (
	loadEvent struct {
		reply chan Snapshot
	}
	scrollEvent struct {
		pos   ScrollPosition
		reply chan *Delta
	}
	snapshotEvent struct {
		reply chan Snapshot
	}
	navigateEvent struct {
		url     string
		replace bool
		reply   chan error
	}
	initialResult struct {
		page *service.GalleryPage
		err  error
	}
	moreResult struct {
		page *service.GalleryPage
		err  error
	}
)

// NewSession starts a session positioned at rawURL.
func NewSession(id, rawURL string, fetcher Fetcher, cfg Config, logger *slog.Logger) *Session {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Debounce < 0 {
		cfg.Debounce = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:      id,
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger.With("session_id", id),
		events:  make(chan any),
		done:    make(chan struct{}),
		cancel:  cancel,
	}

	metrics.GallerySessionsActive.Inc()
	go s.run(ctx, &state{phase: PhaseLoading, router: NewRouter(rawURL)})
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Load mounts the page, or retries from Error or Empty, and waits for the
// initial fetch to settle. In any other phase it returns the current state
// without fetching.
func (s *Session) Load(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	if err := s.send(ctx, loadEvent{reply: reply}); err != nil {
		return Snapshot{}, err
	}
	return await(ctx, s.done, reply)
}

// Scroll records a scroll position. After the debounce period the latest
// recorded position is checked; if it is near the bottom and the session can
// load more, the next page is fetched. The returned Delta is nil when this
// call was superseded by a later scroll, when no fetch was needed, or when a
// fetch was already in flight.
func (s *Session) Scroll(ctx context.Context, pos ScrollPosition) (*Delta, error) {
	reply := make(chan *Delta, 1)
	if err := s.send(ctx, scrollEvent{pos: pos, reply: reply}); err != nil {
		return nil, err
	}
	return await(ctx, s.done, reply)
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	if err := s.send(ctx, snapshotEvent{reply: reply}); err != nil {
		return Snapshot{}, err
	}
	return await(ctx, s.done, reply)
}

// Select opens the overlay for slug by navigating to the gallery URL that
// carries it. Loaded artworks are untouched.
func (s *Session) Select(ctx context.Context, slug string) error {
	return s.navigate(ctx, SelectionURL(slug), false)
}

// CloseOverlay navigates back to the bare gallery path.
func (s *Session) CloseOverlay(ctx context.Context) error {
	return s.navigate(ctx, GalleryPath, false)
}

// Navigate follows a browser-driven URL change such as back or forward.
func (s *Session) Navigate(ctx context.Context, rawURL string) error {
	return s.navigate(ctx, rawURL, true)
}

func (s *Session) navigate(ctx context.Context, target string, replace bool) error {
	reply := make(chan error, 1)
	if err := s.send(ctx, navigateEvent{url: target, replace: replace, reply: reply}); err != nil {
		return err
	}
	err, waitErr := await(ctx, s.done, reply)
	if waitErr != nil {
		return waitErr
	}
	return err
}

// Close unmounts the session. Fetches still in flight are cancelled and
// their results discarded. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.cancel()
		metrics.GallerySessionsActive.Dec()
		s.logger.Debug("gallery session closed")
	})
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Session) send(ctx context.Context, ev any) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post delivers a fetch result to the session goroutine, or drops it once
// the session is closed.
func (s *Session) post(ev any) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

func await[T any](ctx context.Context, done <-chan struct{}, reply <-chan T) (T, error) {
	var zero T
	select {
	case v := <-reply:
		return v, nil
	case <-done:
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// =============================================================================
// Session goroutine
// =============================================================================

func (s *Session) run(ctx context.Context, st *state) {
	defer st.stopDebounce()

	for {
		select {
		case <-s.done:
			return
		case ev := <-s.events:
			if s.Closed() {
				return
			}
			s.handle(ctx, st, ev)
		case <-st.debounceFire:
			st.debounceFire = nil
			s.evaluateScroll(ctx, st)
		}
	}
}

func (s *Session) handle(ctx context.Context, st *state, ev any) {
	switch ev := ev.(type) {
	case loadEvent:
		s.handleLoad(ctx, st, ev)
	case scrollEvent:
		s.handleScroll(st, ev)
	case snapshotEvent:
		ev.reply <- s.snapshot(st)
	case navigateEvent:
		ev.reply <- s.handleNavigate(st, ev)
	case initialResult:
		s.handleInitial(st, ev)
	case moreResult:
		s.handleMore(st, ev)
	}
}

func (s *Session) handleLoad(ctx context.Context, st *state, ev loadEvent) {
	switch {
	case !st.started, st.phase == PhaseError, st.phase == PhaseEmpty:
		st.started = true
		st.phase = PhaseLoading
		st.err = ""
		st.artworks = nil
		st.items = nil
		st.hasMore = false
		st.loadWaiters = append(st.loadWaiters, ev.reply)

		s.logger.Debug("fetching initial gallery page")
		go func() {
			page, err := s.fetcher.FetchInitial(ctx)
			s.post(initialResult{page: page, err: err})
		}()
	case st.phase == PhaseLoading:
		st.loadWaiters = append(st.loadWaiters, ev.reply)
	default:
		ev.reply <- s.snapshot(st)
	}
}

func (s *Session) handleInitial(st *state, res initialResult) {
	switch {
	case res.err != nil:
		s.logger.Error("initial gallery load failed", "error", res.err)
		st.phase = PhaseError
		st.err = domain.ErrorMessage(res.err)
	case len(res.page.Artworks) == 0:
		st.phase = PhaseEmpty
	default:
		st.artworks = res.page.Artworks
		st.items = res.page.Items
		st.hasMore = res.page.HasMore
		st.phase = PhaseLoaded
		if !st.hasMore {
			st.phase = PhaseExhausted
		}
	}

	snap := s.snapshot(st)
	for _, w := range st.loadWaiters {
		w <- snap
	}
	st.loadWaiters = nil
}

func (s *Session) handleScroll(st *state, ev scrollEvent) {
	st.lastScroll = ev.pos
	if st.scrollReply != nil {
		metrics.ScrollDecision("coalesced")
		st.scrollReply <- nil
	}
	st.scrollReply = ev.reply

	st.stopDebounce()
	if s.cfg.Debounce == 0 {
		st.debounceFire = closedTimeChan()
		return
	}
	st.debounce = time.NewTimer(s.cfg.Debounce)
	st.debounceFire = st.debounce.C
}

// evaluateScroll runs when the debounce timer fires. It reads the latest
// position and the current phase, never values captured when the scroll
// event arrived.
func (s *Session) evaluateScroll(ctx context.Context, st *state) {
	reply := st.scrollReply
	st.scrollReply = nil
	if reply == nil {
		return
	}

	if !st.lastScroll.NearBottom(s.cfg.Threshold) {
		metrics.ScrollDecision("below_threshold")
		reply <- nil
		return
	}
	if st.phase != PhaseLoaded || st.inFlight || !st.hasMore {
		metrics.ScrollDecision("gated")
		reply <- nil
		return
	}

	metrics.ScrollDecision("fetch")
	st.phase = PhaseLoadingMore
	st.inFlight = true
	st.err = ""
	st.fetchReply = reply

	loaded := append([]domain.Artwork(nil), st.artworks...)
	go func() {
		page, err := s.fetcher.FetchMore(ctx, loaded)
		s.post(moreResult{page: page, err: err})
	}()
}

func (s *Session) handleMore(st *state, res moreResult) {
	st.inFlight = false
	delta := &Delta{}

	if res.err != nil {
		s.logger.Error("incremental gallery load failed", "error", res.err)
		st.phase = PhaseLoaded
		st.err = domain.ErrorMessage(res.err)
		delta.Error = st.err
	} else {
		st.artworks = append(st.artworks, res.page.Artworks...)
		st.items = append(st.items, res.page.Items...)
		st.hasMore = res.page.HasMore
		st.phase = PhaseLoaded
		if !st.hasMore {
			st.phase = PhaseExhausted
		}
		delta.Items = res.page.Items
	}
	delta.HasMore = st.hasMore
	delta.Phase = st.phase

	if st.fetchReply != nil {
		st.fetchReply <- delta
		st.fetchReply = nil
	}
}

func (s *Session) handleNavigate(st *state, ev navigateEvent) error {
	if ev.replace {
		return st.router.Replace(ev.url)
	}
	return st.router.Push(ev.url)
}

func (s *Session) snapshot(st *state) Snapshot {
	return Snapshot{
		ID:       s.id,
		Phase:    st.phase,
		Artworks: append([]domain.Artwork(nil), st.artworks...),
		Items:    append([]domain.LayoutItem(nil), st.items...),
		HasMore:  st.hasMore,
		Error:    st.err,
		URL:      st.router.String(),
		Selected: st.router.Selected(),
	}
}

func (st *state) stopDebounce() {
	if st.debounce != nil {
		st.debounce.Stop()
		st.debounce = nil
	}
	st.debounceFire = nil
}

func closedTimeChan() <-chan time.Time {
	c := make(chan time.Time)
	close(c)
	return c
}
