package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/getmentor/mentor-finder/internal/middleware"
	"github.com/getmentor/mentor-finder/internal/models"
	"github.com/getmentor/mentor-finder/internal/services"
	"github.com/gin-gonic/gin"
)

// FilterRequest is the body of a filter change. Dates are RFC 3339.
type FilterRequest struct {
	Name  string      `json:"name" binding:"max=200"`
	Skill []string    `json:"skill" binding:"max=50,dive,max=100"`
	Date  []time.Time `json:"date"`
}

// PageRequest is the body of a page change
type PageRequest struct {
	Page int `json:"page" binding:"required,min=1"`
}

// BrowseRequest are the query parameters of a one-shot list request
type BrowseRequest struct {
	Skill string    `form:"skill" binding:"max=100"`
	Name  string    `form:"name" binding:"max=200"`
	From  time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To    time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Page  int       `form:"page" binding:"omitempty,min=1"`
}

type MentorListHandler struct {
	service services.MentorListServiceInterface
}

func NewMentorListHandler(service services.MentorListServiceInterface) *MentorListHandler {
	return &MentorListHandler{service: service}
}

// RegisterRoutes wires the view routes under rg
func (h *MentorListHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/mentor-list", h.Browse)

	views := rg.Group("/mentor-list/views")
	views.POST("", h.Mount)
	views.GET("/:id", h.GetSnapshot)
	views.PUT("/:id/filter", h.ApplyFilter)
	views.PUT("/:id/location", h.SyncLocation)
	views.PUT("/:id/page", h.SetPage)
	views.DELETE("/:id", h.Unmount)
}

// Mount creates a view for the caller, seeded with ?skill=
func (h *MentorListHandler) Mount(c *gin.Context) {
	snap := h.service.Mount(c.Request.Context(), viewerFrom(c), c.Query("skill"))

	c.Header("Location", c.Request.URL.Path+"/"+snap.ViewID)
	c.JSON(http.StatusCreated, snap)
}

// GetSnapshot returns the view; ?wait=true waits for outstanding fetches
func (h *MentorListHandler) GetSnapshot(c *gin.Context) {
	wait, _ := strconv.ParseBool(c.Query("wait"))

	snap, err := h.service.Snapshot(c.Request.Context(), c.Param("id"), wait)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

func (h *MentorListHandler) ApplyFilter(c *gin.Context) {
	var req FilterRequest
	if !bindJSON(c, &req) {
		return
	}

	payload := models.SearchPayload{Name: req.Name, Skill: req.Skill, Date: req.Date}
	snap, err := h.service.ApplyFilter(c.Request.Context(), c.Param("id"), viewerFrom(c), payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// SyncLocation reports a change of the page URL's ?skill= parameter
func (h *MentorListHandler) SyncLocation(c *gin.Context) {
	snap, err := h.service.SyncLocation(c.Request.Context(), c.Param("id"), viewerFrom(c), c.Query("skill"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

func (h *MentorListHandler) SetPage(c *gin.Context) {
	var req PageRequest
	if !bindJSON(c, &req) {
		return
	}

	snap, err := h.service.SetPage(c.Param("id"), req.Page)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

func (h *MentorListHandler) Unmount(c *gin.Context) {
	if err := h.service.Unmount(c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Browse answers a one-shot list request without keeping a view
func (h *MentorListHandler) Browse(c *gin.Context) {
	var req BrowseRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	snap := h.service.Browse(c.Request.Context(), viewerFrom(c), services.BrowseQuery{
		Skill: req.Skill,
		Name:  req.Name,
		From:  req.From,
		To:    req.To,
		Page:  req.Page,
	})

	c.JSON(http.StatusOK, snap)
}

func viewerFrom(c *gin.Context) services.Viewer {
	return services.Viewer{
		Token:   middleware.GetBearerToken(c),
		ClassID: middleware.GetViewerClassID(c),
	}
}

// bindJSON decodes the body into req, answering 400/413 on failure
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func respondBindError(c *gin.Context, err error) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		respondError(c, http.StatusRequestEntityTooLarge, "Request body too large", err)
	case errors.Is(err, io.EOF):
		respondError(c, http.StatusBadRequest, "Request body is required", err)
	default:
		if details := ParseValidationErrors(err); len(details) > 0 {
			respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", details, err)
			return
		}
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
	}
}
