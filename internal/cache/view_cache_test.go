package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/getmentor/mentor-finder/internal/mentorlist"
	"github.com/getmentor/mentor-finder/internal/models"
	"github.com/getmentor/mentor-finder/pkg/mentorapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSearcher struct {
	calls atomic.Int32
}

func (s *countingSearcher) Search(context.Context, mentorapi.SearchParams, string) (*mentorapi.SearchResponse, error) {
	s.calls.Add(1)
	return &mentorapi.SearchResponse{StatusCode: 200, MentorsDTOList: []*models.Mentor{{ID: 1}}}, nil
}

func newView(t *testing.T, s mentorlist.MentorSearcher) func(id string) *mentorlist.Controller {
	t.Helper()
	return func(string) *mentorlist.Controller {
		c := mentorlist.New(context.Background(), mentorlist.Config{}, mentorlist.Deps{Searcher: s}, "")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, c.Wait(ctx))
		return c
	}
}

func TestViewCache_AddGetRemove(t *testing.T) {
	var unmounted []string
	vc := NewViewCache(time.Minute, func(id string) { unmounted = append(unmounted, id) })
	defer vc.Close()

	searcher := &countingSearcher{}
	var builtFor string
	id, view := vc.Add(func(id string) *mentorlist.Controller {
		builtFor = id
		return newView(t, searcher)(id)
	})
	assert.NotEmpty(t, id)
	assert.Equal(t, id, builtFor)
	assert.Equal(t, 1, vc.Count())

	got, ok := vc.Get(id)
	require.True(t, ok)
	assert.Same(t, view, got)

	_, ok = vc.Get("missing")
	assert.False(t, ok)

	assert.True(t, vc.Remove(id))
	assert.False(t, vc.Remove(id))
	assert.Equal(t, 0, vc.Count())
	assert.Equal(t, []string{id}, unmounted)

	// Removed views are closed and ignore further events
	view.ApplyFilter(context.Background(), models.SearchPayload{Name: "x"})
	assert.Equal(t, int32(1), searcher.calls.Load())
}

func TestViewCache_DistinctIDs(t *testing.T) {
	vc := NewViewCache(time.Minute, nil)
	defer vc.Close()

	searcher := &countingSearcher{}
	a, _ := vc.Add(newView(t, searcher))
	b, _ := vc.Add(newView(t, searcher))
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, vc.Count())
}

func TestViewCache_IdleViewsExpire(t *testing.T) {
	unmounted := make(chan string, 1)
	vc := newViewCache(50*time.Millisecond, 10*time.Millisecond, func(id string) { unmounted <- id })
	defer vc.Close()

	searcher := &countingSearcher{}
	id, view := vc.Add(newView(t, searcher))

	select {
	case got := <-unmounted:
		assert.Equal(t, id, got)
	case <-time.After(2 * time.Second):
		t.Fatal("idle view was not evicted")
	}
	assert.Equal(t, 0, vc.Count())

	_, ok := vc.Get(id)
	assert.False(t, ok)

	view.ApplyFilter(context.Background(), models.SearchPayload{Name: "x"})
	assert.Equal(t, int32(1), searcher.calls.Load())
}

func TestViewCache_GetExtendsLifetime(t *testing.T) {
	vc := newViewCache(150*time.Millisecond, 10*time.Millisecond, nil)
	defer vc.Close()

	id, _ := vc.Add(newView(t, &countingSearcher{}))

	for i := 0; i < 5; i++ {
		time.Sleep(60 * time.Millisecond)
		_, ok := vc.Get(id)
		require.True(t, ok, "view expired despite being used (iteration %d)", i)
	}
}

func TestViewCache_CloseUnmountsAll(t *testing.T) {
	vc := NewViewCache(time.Minute, nil)

	searcher := &countingSearcher{}
	_, view := vc.Add(newView(t, searcher))
	vc.Add(newView(t, searcher))

	vc.Close()
	assert.Equal(t, 0, vc.Count())

	view.ApplyFilter(context.Background(), models.SearchPayload{Name: "x"})
	assert.Equal(t, int32(2), searcher.calls.Load())
}
