package services_test

import (
	"context"

	"github.com/getmentor/mentor-finder/pkg/mentorapi"
	"github.com/stretchr/testify/mock"
)

// MockMentorSearcher is a mock implementation of mentorlist.MentorSearcher
type MockMentorSearcher struct {
	mock.Mock
}

func (m *MockMentorSearcher) Search(ctx context.Context, params mentorapi.SearchParams, token string) (*mentorapi.SearchResponse, error) {
	args := m.Called(ctx, params, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mentorapi.SearchResponse), args.Error(1)
}
