package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/getmentor/mentor-finder/config"
	"github.com/getmentor/mentor-finder/internal/models"
	"github.com/getmentor/mentor-finder/internal/services"
	"github.com/getmentor/mentor-finder/internal/tokenstore"
	apperrors "github.com/getmentor/mentor-finder/pkg/errors"
	"github.com/getmentor/mentor-finder/pkg/mentorapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		MentorAPI:  config.MentorAPIConfig{ServiceToken: "service-token"},
		MentorList: config.MentorListConfig{PageSize: 10},
		Sessions:   config.SessionsConfig{TTLMinutes: 30, WaitTimeoutSeconds: 5},
		Redis:      config.RedisConfig{TokenKey: "token"},
	}
}

func mentors(n int) []*models.Mentor {
	out := make([]*models.Mentor, n)
	for i := range out {
		out[i] = &models.Mentor{ID: int64(i + 1), MentorCode: fmt.Sprintf("M%02d", i)}
	}
	return out
}

func withName(name string) interface{} {
	return mock.MatchedBy(func(p mentorapi.SearchParams) bool { return p.Name == name })
}

func newService(t *testing.T, searcher *MockMentorSearcher, store tokenstore.Store) *services.MentorListService {
	t.Helper()
	svc := services.NewMentorListService(testConfig(), searcher, store)
	t.Cleanup(svc.Close)
	return svc
}

func TestMentorListService_MountAndWait(t *testing.T) {
	searcher := new(MockMentorSearcher)
	searcher.On("Search", mock.Anything, withName(""), "caller-token").
		Return(&mentorapi.SearchResponse{StatusCode: 200, MentorsDTOList: mentors(15)}, nil).Once()

	svc := newService(t, searcher, tokenstore.NewMemoryStore())
	ctx := context.Background()

	snap := svc.Mount(ctx, services.Viewer{Token: "caller-token"}, "java")
	require.NotEmpty(t, snap.ViewID)
	assert.Equal(t, []string{"java"}, snap.SearchPayload.Skill)
	assert.Equal(t, 1, svc.ViewCount())

	snap, err := svc.Snapshot(ctx, snap.ViewID, true)
	require.NoError(t, err)
	assert.Equal(t, models.ViewStateLoaded, snap.State)
	assert.Len(t, snap.Items, 10)
	assert.Equal(t, 15, snap.Pagination.Total)

	snap, err = svc.SetPage(snap.ViewID, 2)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 5)
	assert.True(t, snap.ScrollToTop)

	searcher.AssertExpectations(t)
}

func TestMentorListService_SharedTokenAndRotation(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "token", "shared-token", 0))

	searcher := new(MockMentorSearcher)
	searcher.On("Search", mock.Anything, withName(""), "shared-token").
		Return(&mentorapi.SearchResponse{StatusCode: 200}, nil).Once()
	searcher.On("Search", mock.Anything, withName("An"), "rotated-token").
		Return(&mentorapi.SearchResponse{StatusCode: 200}, nil).Once()

	svc := newService(t, searcher, store)

	snap := svc.Mount(ctx, services.Viewer{}, "")
	id := snap.ViewID
	_, err := svc.Snapshot(ctx, id, true)
	require.NoError(t, err)

	_, err = svc.ApplyFilter(ctx, id, services.Viewer{Token: "rotated-token"}, models.SearchPayload{Name: "An"})
	require.NoError(t, err)
	_, err = svc.Snapshot(ctx, id, true)
	require.NoError(t, err)

	searcher.AssertExpectations(t)

	require.NoError(t, svc.Unmount(id))
	_, err = store.Get(ctx, tokenstore.ViewTokenKey("token", id))
	assert.ErrorIs(t, err, tokenstore.ErrNotFound)
}

func TestMentorListService_ServiceTokenFallback(t *testing.T) {
	searcher := new(MockMentorSearcher)
	searcher.On("Search", mock.Anything, mock.Anything, "service-token").
		Return(&mentorapi.SearchResponse{StatusCode: 404}, nil).Once()

	svc := newService(t, searcher, tokenstore.NewMemoryStore())
	ctx := context.Background()

	snap := svc.Mount(ctx, services.Viewer{}, "")
	snap, err := svc.Snapshot(ctx, snap.ViewID, true)
	require.NoError(t, err)
	assert.Equal(t, models.ViewStateEmpty, snap.State)
	assert.Equal(t, models.EmptyResultsMessage, snap.EmptyMessage)
	searcher.AssertExpectations(t)
}

func TestMentorListService_SyncLocation(t *testing.T) {
	searcher := new(MockMentorSearcher)
	searcher.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(&mentorapi.SearchResponse{StatusCode: 200, MentorsDTOList: mentors(1)}, nil)

	svc := newService(t, searcher, tokenstore.NewMemoryStore())
	ctx := context.Background()

	id := svc.Mount(ctx, services.Viewer{}, "java").ViewID
	snap, err := svc.SyncLocation(ctx, id, services.Viewer{}, "go")
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, snap.SearchPayload.Skill)

	_, err = svc.Snapshot(ctx, id, true)
	require.NoError(t, err)
	searcher.AssertNumberOfCalls(t, "Search", 2)
}

func TestMentorListService_UnknownView(t *testing.T) {
	svc := newService(t, new(MockMentorSearcher), tokenstore.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Snapshot(ctx, "missing", false)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	_, err = svc.ApplyFilter(ctx, "missing", services.Viewer{}, models.SearchPayload{})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	_, err = svc.SyncLocation(ctx, "missing", services.Viewer{}, "go")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	_, err = svc.SetPage("missing", 2)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	assert.True(t, apperrors.Is(svc.Unmount("missing"), apperrors.ErrNotFound))
}

func TestMentorListService_Browse(t *testing.T) {
	from := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.June, 2, 11, 0, 0, 0, time.UTC)

	searcher := new(MockMentorSearcher)
	searcher.On("Search", mock.Anything, mock.MatchedBy(func(p mentorapi.SearchParams) bool {
		return p.Name == "An" && p.Skills != nil && *p.Skills == "java" &&
			p.AvailableFrom != nil && *p.AvailableFrom == "02-06-2025 09:00"
	}), "caller").
		Return(&mentorapi.SearchResponse{StatusCode: 200, MentorsDTOList: mentors(12)}, nil).Once()

	svc := newService(t, searcher, tokenstore.NewMemoryStore())

	snap := svc.Browse(context.Background(), services.Viewer{Token: "caller"}, services.BrowseQuery{
		Skill: "java",
		Name:  "An",
		From:  from,
		To:    to,
		Page:  2,
	})

	assert.Empty(t, snap.ViewID)
	assert.Equal(t, models.ViewStateLoaded, snap.State)
	assert.Equal(t, 2, snap.CurrentPage)
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, 12, snap.Pagination.Total)
	assert.Equal(t, 0, svc.ViewCount())
	searcher.AssertExpectations(t)
	searcher.AssertNumberOfCalls(t, "Search", 1)
}
