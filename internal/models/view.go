package models

// ViewState is the coarse state of a mentor list view
type ViewState string

const (
	ViewStateIdle    ViewState = "idle"
	ViewStateLoading ViewState = "loading"
	ViewStateLoaded  ViewState = "loaded"
	ViewStateEmpty   ViewState = "empty"
	ViewStateError   ViewState = "error"
)

// EmptyResultsMessage is shown instead of list items when the page is empty
const EmptyResultsMessage = "No instructors were found."

// PaginationControl drives the pagination widget. Total is the size of the
// whole fetched set, not of the visible page.
type PaginationControl struct {
	Current  int `json:"current"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

// MentorListSnapshot is everything needed to paint the mentor list
type MentorListSnapshot struct {
	ViewID        string             `json:"viewId,omitempty"`
	State         ViewState          `json:"state"`
	SearchPayload SearchPayload      `json:"searchPayload"`
	CurrentPage   int                `json:"currentPage"`
	Items         []MentorListItem   `json:"items"`
	// TotalMentors counts the whole fetched set, also when the page is empty
	TotalMentors  int                `json:"totalMentors"`
	Pagination    *PaginationControl `json:"pagination,omitempty"`
	EmptyMessage  string             `json:"emptyMessage,omitempty"`
	Error         string             `json:"error,omitempty"`
	ScrollToTop   bool               `json:"scrollToTop,omitempty"`
}
