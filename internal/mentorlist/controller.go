// Package mentorlist holds the state of a searchable, paginated mentor list:
// the committed search payload, the fetched mentors, the current page and
// the outcome of the last processed fetch.
package mentorlist

import (
	"context"
	"sync"

	"github.com/getmentor/mentor-finder/internal/models"
	"github.com/getmentor/mentor-finder/pkg/logger"
	"github.com/getmentor/mentor-finder/pkg/metrics"
	"github.com/getmentor/mentor-finder/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultPageSize is used when Config.PageSize is not positive
const DefaultPageSize = 10

// Config tunes a controller. It is fixed for the controller's lifetime.
type Config struct {
	PageSize int
	// DiscardStale drops results of fetches superseded by a newer commit.
	// When false the last processed result wins, whatever its commit.
	DiscardStale bool
	// ResetPageOnFilter moves back to page 1 on every commit
	ResetPageOnFilter bool
}

// Deps are the collaborators of a controller
type Deps struct {
	Searcher MentorSearcher
	// Tokens may be nil, in which case searches are sent without a token
	Tokens TokenSource
	// ViewerClassID is the class of the user looking at the list, nil if unknown
	ViewerClassID *int64
}

// Controller is the state machine behind one mentor list view. Event
// methods are serialised; fetches run in the background and are applied
// as they complete.
type Controller struct {
	mu   sync.Mutex
	cfg  Config
	deps Deps
	log  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool

	payload      models.SearchPayload
	lastURLSkill string
	currentPage  int
	scrollToTop  bool

	mentors []*models.Mentor
	state   models.ViewState
	errMsg  string

	generation uint64
	latestDone bool
	pending    int
	idle       chan struct{}
}

// New mounts a view. The skill from the URL, if any, seeds the skill filter
// and the initial payload is committed, which starts the first fetch.
func New(ctx context.Context, cfg Config, deps Deps, skillFromURL string) *Controller {
	return mount(ctx, cfg, deps, models.NewSearchPayload(skillFromURL), skillFromURL)
}

// NewWithPayload mounts a view whose first fetch already carries payload.
// It serves one-shot requests that know the whole filter up front.
func NewWithPayload(ctx context.Context, cfg Config, deps Deps, payload models.SearchPayload) *Controller {
	return mount(ctx, cfg, deps, payload.Normalize(), "")
}

func mount(ctx context.Context, cfg Config, deps Deps, payload models.SearchPayload, urlSkill string) *Controller {
	if cfg.PageSize < 1 {
		cfg.PageSize = DefaultPageSize
	}

	rootCtx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		cfg:          cfg,
		deps:         deps,
		log:          logger.With(zap.String("component", "mentor_list")),
		ctx:          rootCtx,
		cancel:       cancel,
		payload:      payload,
		lastURLSkill: urlSkill,
		currentPage:  1,
		mentors:      []*models.Mentor{},
		state:        models.ViewStateIdle,
		idle:         make(chan struct{}),
	}
	close(c.idle)

	metrics.MentorListEvents.WithLabelValues("mount").Inc()

	c.mu.Lock()
	c.commitLocked(ctx)
	c.mu.Unlock()

	return c
}

// ApplyFilter replaces the search payload wholesale and fetches once
func (c *Controller) ApplyFilter(ctx context.Context, payload models.SearchPayload) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	metrics.MentorListEvents.WithLabelValues("filter").Inc()
	c.payload = payload.Normalize()
	c.commitLocked(ctx)
}

// SyncSkillFromURL reacts to a change of the URL skill parameter. A
// non-empty value that differs from the last one seen replaces the skill
// filter, keeps name and date, and fetches once. A cleared parameter is
// remembered without touching the filter, so the same skill coming back
// counts as a change. It reports whether a fetch was started.
func (c *Controller) SyncSkillFromURL(ctx context.Context, skill string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || skill == c.lastURLSkill {
		return false
	}
	c.lastURLSkill = skill
	if skill == "" {
		return false
	}

	metrics.MentorListEvents.WithLabelValues("url_skill").Inc()
	c.payload = c.payload.WithSkill(skill)
	c.commitLocked(ctx)
	return true
}

// SetPage moves to page (clamped to 1) and asks the view to scroll to the
// top. No fetch is made; the page is cut from the mentors already held.
func (c *Controller) SetPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if page < 1 {
		page = 1
	}

	metrics.MentorListEvents.WithLabelValues("page").Inc()
	c.currentPage = page
	c.scrollToTop = true
}

// Snapshot returns everything needed to paint the view
func (c *Controller) Snapshot() models.MentorListSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	visible := Paginate(c.mentors, c.currentPage, c.cfg.PageSize)
	items := make([]models.MentorListItem, 0, len(visible))
	for _, m := range visible {
		items = append(items, m.ToListItem(c.deps.ViewerClassID))
	}

	snap := models.MentorListSnapshot{
		State:         c.state,
		SearchPayload: c.payload.Normalize(),
		CurrentPage:   c.currentPage,
		Items:         items,
		TotalMentors:  len(c.mentors),
		Error:         c.errMsg,
		ScrollToTop:   c.scrollToTop,
	}
	if len(items) == 0 {
		snap.EmptyMessage = models.EmptyResultsMessage
	} else {
		snap.Pagination = &models.PaginationControl{
			Current:  c.currentPage,
			PageSize: c.cfg.PageSize,
			Total:    len(c.mentors),
		}
	}

	return snap
}

// Wait blocks until every fetch started so far has been applied, or ctx is done
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close unmounts the view. Outstanding fetches are cancelled and their
// results dropped. Close waits for fetch goroutines to exit.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancel()
	c.mu.Unlock()

	metrics.MentorListEvents.WithLabelValues("unmount").Inc()
	c.wg.Wait()

	c.mu.Lock()
	c.pending = 0
	c.signalIdleLocked()
	c.mu.Unlock()
}

// commitLocked starts the one fetch that belongs to the current payload.
// c.mu must be held.
func (c *Controller) commitLocked(ctx context.Context) {
	c.generation++
	c.latestDone = false
	c.state = models.ViewStateLoading
	c.scrollToTop = false
	if c.cfg.ResetPageOnFilter {
		c.currentPage = 1
	}

	if c.pending == 0 {
		c.idle = make(chan struct{})
	}
	c.pending++
	c.wg.Add(1)

	// Keep the caller's trace but not its cancellation: the fetch outlives
	// the request that committed it.
	fetchCtx := trace.ContextWithSpanContext(c.ctx, trace.SpanContextFromContext(ctx))
	go c.fetch(fetchCtx, c.generation, c.payload.Normalize())
}

func (c *Controller) fetch(ctx context.Context, gen uint64, payload models.SearchPayload) {
	defer c.wg.Done()

	res := c.runFetch(ctx, payload)
	c.apply(gen, res)
}

func (c *Controller) runFetch(ctx context.Context, payload models.SearchPayload) fetchResult {
	ctx, span := tracing.StartSpan(ctx, "mentorlist.fetch",
		attribute.Int("mentor.filter.skill_count", len(payload.Skill)),
		attribute.Bool("mentor.filter.name", payload.Name != ""),
	)
	defer span.End()

	params, err := BuildSearchParams(payload)
	if err != nil {
		tracing.RecordError(span, err)
		return fetchResult{err: err}
	}

	token := ""
	if c.deps.Tokens != nil {
		token, err = c.deps.Tokens.Token(ctx)
		if err != nil {
			tracing.RecordError(span, err)
			return fetchResult{err: err}
		}
	}

	resp, err := c.deps.Searcher.Search(ctx, params, token)
	if err != nil {
		tracing.RecordError(span, err)
	}
	return fetchResult{resp: resp, err: err}
}

func (c *Controller) apply(gen uint64, res fetchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.pending--
	defer func() {
		if c.pending == 0 {
			c.signalIdleLocked()
		}
	}()

	latest := gen == c.generation
	if !latest && c.cfg.DiscardStale {
		metrics.MentorListFetches.WithLabelValues("discarded").Inc()
		c.log.Debug("Discarded stale mentor fetch",
			zap.Uint64("generation", gen),
			zap.Uint64("latest", c.generation))
		return
	}
	if latest {
		c.latestDone = true
	}

	var outcome models.ViewState
	switch {
	case res.err != nil:
		c.errMsg = errorMessage(res.err)
		outcome = models.ViewStateError
		c.log.Warn("Mentor fetch failed", zap.Error(res.err), zap.Uint64("generation", gen))
	case res.resp == nil || res.resp.StatusCode != 200:
		c.mentors = []*models.Mentor{}
		outcome = models.ViewStateEmpty
		if res.resp != nil {
			c.log.Debug("Mentor search answered without results",
				zap.Int("status_code", res.resp.StatusCode),
				zap.String("message", res.resp.Message))
		}
	default:
		c.mentors = res.resp.MentorsDTOList
		if c.mentors == nil {
			c.mentors = []*models.Mentor{}
		}
		outcome = models.ViewStateLoaded
		if len(c.mentors) == 0 {
			outcome = models.ViewStateEmpty
		}
	}

	if outcome != models.ViewStateError {
		metrics.MentorListResults.Observe(float64(len(c.mentors)))
	}
	metrics.MentorListFetches.WithLabelValues(string(outcome)).Inc()

	// A fetch for the newest commit still in flight keeps the view loading
	if c.latestDone {
		c.state = outcome
	}
}

// signalIdleLocked releases Wait callers. c.mu must be held.
func (c *Controller) signalIdleLocked() {
	select {
	case <-c.idle:
	default:
		close(c.idle)
	}
}
