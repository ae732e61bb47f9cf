package mentorlist

import (
	"context"
	"fmt"
	"strings"

	"github.com/getmentor/mentor-finder/internal/models"
	apperrors "github.com/getmentor/mentor-finder/pkg/errors"
	"github.com/getmentor/mentor-finder/pkg/mentorapi"
)

// DateLayout is the availability format the mentor API expects (DD-MM-YYYY HH:mm)
const DateLayout = "02-01-2006 15:04"

const defaultErrorMessage = "An error occurred"

// MentorSearcher runs a mentor search against the remote API
type MentorSearcher interface {
	Search(ctx context.Context, params mentorapi.SearchParams, token string) (*mentorapi.SearchResponse, error)
}

// TokenSource yields the auth token to send with a search. It is asked on
// every fetch so token rotation is picked up without re-creating views.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// BuildSearchParams derives query parameters from a committed payload.
// Skills are joined with commas and omitted when empty. Dates are sent only
// when both ends are set. A date list that is neither empty nor a pair is
// rejected.
func BuildSearchParams(payload models.SearchPayload) (mentorapi.SearchParams, error) {
	params := mentorapi.SearchParams{Name: payload.Name}

	if len(payload.Skill) > 0 {
		skills := strings.Join(payload.Skill, ",")
		params.Skills = &skills
	}

	switch len(payload.Date) {
	case 0:
	case 2:
		from, to := payload.Date[0], payload.Date[1]
		if !from.IsZero() && !to.IsZero() {
			f := from.Format(DateLayout)
			t := to.Format(DateLayout)
			params.AvailableFrom = &f
			params.AvailableTo = &t
		}
	default:
		return params, apperrors.InvalidInputError("date", fmt.Sprintf("expected a [start, end] pair, got %d values", len(payload.Date)))
	}

	return params, nil
}

// fetchResult is what one fetch hands back to the controller
type fetchResult struct {
	resp *mentorapi.SearchResponse
	err  error
}

// errorMessage turns a fetch failure into the text shown to the user
func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return defaultErrorMessage
}
