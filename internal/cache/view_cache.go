package cache

import (
	"time"

	"github.com/getmentor/mentor-finder/internal/mentorlist"
	"github.com/getmentor/mentor-finder/pkg/logger"
	"github.com/getmentor/mentor-finder/pkg/metrics"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	viewCacheName       = "mentor_list_view"
	viewCleanupInterval = time.Minute
)

// ViewCache holds the mounted mentor list views by id. Views idle for
// longer than the TTL are evicted and closed.
type ViewCache struct {
	cache     *gocache.Cache
	ttl       time.Duration
	onUnmount func(id string)
}

// NewViewCache creates a view registry with a sliding ttl. onUnmount, if
// set, runs after a view is closed, whether removed or expired.
func NewViewCache(ttl time.Duration, onUnmount func(id string)) *ViewCache {
	return newViewCache(ttl, viewCleanupInterval, onUnmount)
}

func newViewCache(ttl, cleanupInterval time.Duration, onUnmount func(id string)) *ViewCache {
	vc := &ViewCache{
		cache:     gocache.New(ttl, cleanupInterval),
		ttl:       ttl,
		onUnmount: onUnmount,
	}
	vc.cache.OnEvicted(vc.onEvicted)
	return vc
}

// Add allocates a view id, builds the view for it and registers it
func (vc *ViewCache) Add(build func(id string) *mentorlist.Controller) (string, *mentorlist.Controller) {
	id := uuid.NewString()
	view := build(id)
	vc.cache.Set(id, view, gocache.DefaultExpiration)
	metrics.CacheSize.WithLabelValues(viewCacheName).Set(float64(vc.cache.ItemCount()))

	logger.Debug("Mounted mentor list view", zap.String("view_id", id))
	return id, view
}

// Get returns the view and restarts its idle timer
func (vc *ViewCache) Get(id string) (*mentorlist.Controller, bool) {
	data, found := vc.cache.Get(id)
	if !found {
		metrics.CacheMisses.WithLabelValues(viewCacheName).Inc()
		return nil, false
	}

	view, ok := data.(*mentorlist.Controller)
	if !ok {
		logger.Error("Invalid cache data type", zap.String("view_id", id))
		vc.cache.Delete(id)
		return nil, false
	}

	// Replace fails if the entry expired in between; treat that as a miss
	if err := vc.cache.Replace(id, view, gocache.DefaultExpiration); err != nil {
		metrics.CacheMisses.WithLabelValues(viewCacheName).Inc()
		return nil, false
	}

	metrics.CacheHits.WithLabelValues(viewCacheName).Inc()
	return view, true
}

// Remove unmounts the view. It reports whether the view existed.
func (vc *ViewCache) Remove(id string) bool {
	if _, found := vc.cache.Get(id); !found {
		return false
	}
	vc.cache.Delete(id)
	return true
}

// Count returns the number of mounted views
func (vc *ViewCache) Count() int {
	return vc.cache.ItemCount()
}

// Close unmounts every view
func (vc *ViewCache) Close() {
	for id := range vc.cache.Items() {
		vc.cache.Delete(id)
	}
	logger.Info("Closed all mentor list views")
}

func (vc *ViewCache) onEvicted(id string, data interface{}) {
	if view, ok := data.(*mentorlist.Controller); ok {
		view.Close()
	}
	if vc.onUnmount != nil {
		vc.onUnmount(id)
	}
	metrics.CacheSize.WithLabelValues(viewCacheName).Set(float64(vc.cache.ItemCount()))
	logger.Debug("Unmounted mentor list view", zap.String("view_id", id))
}
