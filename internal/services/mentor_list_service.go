package services

import (
	"context"
	"time"

	"github.com/getmentor/mentor-finder/config"
	"github.com/getmentor/mentor-finder/internal/cache"
	"github.com/getmentor/mentor-finder/internal/mentorlist"
	"github.com/getmentor/mentor-finder/internal/models"
	"github.com/getmentor/mentor-finder/internal/tokenstore"
	apperrors "github.com/getmentor/mentor-finder/pkg/errors"
	"github.com/getmentor/mentor-finder/pkg/logger"
	"go.uber.org/zap"
)

// viewTokenTTL bounds how long a caller token outlives a view that was
// never unmounted cleanly (e.g. after a crash)
const viewTokenTTL = 24 * time.Hour

// Viewer identifies who is looking at a mentor list
type Viewer struct {
	// Token is the caller's bearer token, forwarded to the mentor API
	Token string
	// ClassID is the caller's assigned class, nil when unknown
	ClassID *int64
}

// BrowseQuery is a one-shot mentor list request
type BrowseQuery struct {
	Skill string
	Name  string
	From  time.Time
	To    time.Time
	Page  int
}

// MentorListService mounts mentor list views and routes view events to them
type MentorListService struct {
	views       *cache.ViewCache
	searcher    mentorlist.MentorSearcher
	store       tokenstore.Store
	listCfg     mentorlist.Config
	tokenKey    string
	fallback    string
	waitTimeout time.Duration
}

// NewMentorListService creates the service. Views are kept for
// cfg.SessionTTL() after their last use.
func NewMentorListService(cfg *config.Config, searcher mentorlist.MentorSearcher, store tokenstore.Store) *MentorListService {
	s := &MentorListService{
		searcher: searcher,
		store:    store,
		listCfg: mentorlist.Config{
			PageSize:          cfg.MentorList.PageSize,
			DiscardStale:      cfg.MentorList.DiscardStale,
			ResetPageOnFilter: cfg.MentorList.ResetPageOnFilter,
		},
		tokenKey:    cfg.Redis.TokenKey,
		fallback:    cfg.MentorAPI.ServiceToken,
		waitTimeout: cfg.WaitTimeout(),
	}
	s.views = cache.NewViewCache(cfg.SessionTTL(), s.forgetViewToken)
	return s
}

// Mount creates a view seeded with the URL skill and starts its first fetch
func (s *MentorListService) Mount(ctx context.Context, viewer Viewer, skillFromURL string) models.MentorListSnapshot {
	id, view := s.views.Add(func(id string) *mentorlist.Controller {
		s.refreshViewToken(ctx, id, viewer.Token)
		return mentorlist.New(ctx, s.listCfg, mentorlist.Deps{
			Searcher:      s.searcher,
			Tokens:        tokenstore.NewKeyTokenSource(s.store, s.fallback, tokenstore.ViewTokenKey(s.tokenKey, id), s.tokenKey),
			ViewerClassID: viewer.ClassID,
		}, skillFromURL)
	})

	logger.Info("Mentor list view mounted",
		zap.String("view_id", id),
		zap.String("skill", skillFromURL),
		zap.Bool("has_token", viewer.Token != ""))

	return s.snapshot(id, view)
}

// Snapshot returns the view's current state. With wait set it first waits
// for outstanding fetches, bounded by the configured wait timeout.
func (s *MentorListService) Snapshot(ctx context.Context, id string, wait bool) (models.MentorListSnapshot, error) {
	view, err := s.get(id)
	if err != nil {
		return models.MentorListSnapshot{}, err
	}
	if wait {
		s.wait(ctx, id, view)
	}
	return s.snapshot(id, view), nil
}

// ApplyFilter commits a new search payload to the view
func (s *MentorListService) ApplyFilter(ctx context.Context, id string, viewer Viewer, payload models.SearchPayload) (models.MentorListSnapshot, error) {
	view, err := s.get(id)
	if err != nil {
		return models.MentorListSnapshot{}, err
	}
	s.refreshViewToken(ctx, id, viewer.Token)

	view.ApplyFilter(ctx, payload)
	return s.snapshot(id, view), nil
}

// SyncLocation tells the view the URL skill parameter changed
func (s *MentorListService) SyncLocation(ctx context.Context, id string, viewer Viewer, skill string) (models.MentorListSnapshot, error) {
	view, err := s.get(id)
	if err != nil {
		return models.MentorListSnapshot{}, err
	}
	s.refreshViewToken(ctx, id, viewer.Token)

	view.SyncSkillFromURL(ctx, skill)
	return s.snapshot(id, view), nil
}

// SetPage moves the view to page
func (s *MentorListService) SetPage(id string, page int) (models.MentorListSnapshot, error) {
	view, err := s.get(id)
	if err != nil {
		return models.MentorListSnapshot{}, err
	}

	view.SetPage(page)
	return s.snapshot(id, view), nil
}

// Unmount closes the view and forgets its token
func (s *MentorListService) Unmount(id string) error {
	if !s.views.Remove(id) {
		return apperrors.NotFoundError("view")
	}
	logger.Info("Mentor list view unmounted", zap.String("view_id", id))
	return nil
}

// Browse answers a one-shot request: mount with the full filter, page,
// wait for the single fetch, unmount. Nothing is kept afterwards.
func (s *MentorListService) Browse(ctx context.Context, viewer Viewer, q BrowseQuery) models.MentorListSnapshot {
	var tokens mentorlist.TokenSource = tokenstore.NewKeyTokenSource(s.store, s.fallback, s.tokenKey)
	if viewer.Token != "" {
		tokens = staticTokenSource(viewer.Token)
	}

	payload := models.NewSearchPayload(q.Skill)
	payload.Name = q.Name
	if !q.From.IsZero() || !q.To.IsZero() {
		payload.Date = []time.Time{q.From, q.To}
	}

	view := mentorlist.NewWithPayload(ctx, s.listCfg, mentorlist.Deps{
		Searcher:      s.searcher,
		Tokens:        tokens,
		ViewerClassID: viewer.ClassID,
	}, payload)
	defer view.Close()

	if q.Page > 0 {
		view.SetPage(q.Page)
	}

	s.wait(ctx, "", view)
	return view.Snapshot()
}

// ViewCount returns the number of mounted views
func (s *MentorListService) ViewCount() int {
	return s.views.Count()
}

// Close unmounts every view
func (s *MentorListService) Close() {
	s.views.Close()
}

func (s *MentorListService) get(id string) (*mentorlist.Controller, error) {
	view, ok := s.views.Get(id)
	if !ok {
		return nil, apperrors.NotFoundError("view")
	}
	return view, nil
}

func (s *MentorListService) snapshot(id string, view *mentorlist.Controller) models.MentorListSnapshot {
	snap := view.Snapshot()
	snap.ViewID = id
	return snap
}

func (s *MentorListService) wait(ctx context.Context, id string, view *mentorlist.Controller) {
	waitCtx, cancel := context.WithTimeout(ctx, s.waitTimeout)
	defer cancel()

	if err := view.Wait(waitCtx); err != nil {
		logger.Debug("Stopped waiting for mentor fetch",
			zap.String("view_id", id), zap.Error(err))
	}
}

// refreshViewToken stores the caller's token for the view. Later fetches
// of the view read it, so a rotated token takes effect on the next commit.
func (s *MentorListService) refreshViewToken(ctx context.Context, id, token string) {
	if token == "" {
		return
	}
	if err := s.store.Set(ctx, tokenstore.ViewTokenKey(s.tokenKey, id), token, viewTokenTTL); err != nil {
		logger.Warn("Failed to store viewer token, the shared token will be used",
			zap.String("view_id", id), zap.Error(err))
	}
}

func (s *MentorListService) forgetViewToken(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.store.Delete(ctx, tokenstore.ViewTokenKey(s.tokenKey, id)); err != nil {
		logger.Warn("Failed to delete viewer token", zap.String("view_id", id), zap.Error(err))
	}
}

type staticTokenSource string

func (t staticTokenSource) Token(context.Context) (string, error) { return string(t), nil }
