package services

import (
	"context"

	"github.com/getmentor/mentor-finder/internal/models"
)

// MentorListServiceInterface defines the mentor list view operations
type MentorListServiceInterface interface {
	Mount(ctx context.Context, viewer Viewer, skillFromURL string) models.MentorListSnapshot
	Snapshot(ctx context.Context, id string, wait bool) (models.MentorListSnapshot, error)
	ApplyFilter(ctx context.Context, id string, viewer Viewer, payload models.SearchPayload) (models.MentorListSnapshot, error)
	SyncLocation(ctx context.Context, id string, viewer Viewer, skill string) (models.MentorListSnapshot, error)
	SetPage(id string, page int) (models.MentorListSnapshot, error)
	Unmount(id string) error
	Browse(ctx context.Context, viewer Viewer, q BrowseQuery) models.MentorListSnapshot
	ViewCount() int
}

var _ MentorListServiceInterface = (*MentorListService)(nil)
