package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/getmentor/mentor-finder/config"
	"github.com/getmentor/mentor-finder/internal/models"
	"github.com/getmentor/mentor-finder/internal/services"
	"github.com/getmentor/mentor-finder/pkg/logger"
	"github.com/getmentor/mentor-finder/pkg/metrics"
	"go.uber.org/zap"
)

const (
	protocolVersion = "2024-11-05"
	toolSearch      = "search_mentors"

	searchTimeoutMessage = "The mentor search did not finish in time, try again"
)

// errInvalidArgs marks tool arguments the caller has to fix
var errInvalidArgs = errors.New("invalid arguments")

// Browser answers one-shot mentor list requests
type Browser interface {
	Browse(ctx context.Context, viewer services.Viewer, q services.BrowseQuery) models.MentorListSnapshot
}

// Server represents an MCP server instance
type Server struct {
	browser Browser
	name    string
	version string
}

// NewServer creates a new MCP server
func NewServer(browser Browser, cfg *config.Config) *Server {
	return &Server{
		browser: browser,
		name:    cfg.Observability.ServiceName + "-mcp",
		version: cfg.Observability.ServiceVersion,
	}
}

// HandleRequest processes an MCP JSON-RPC request on behalf of viewer
func (s *Server) HandleRequest(ctx context.Context, viewer services.Viewer, req Request) Response {
	if req.JSONRPC != "2.0" {
		metrics.MCPErrors.WithLabelValues("invalid_request").Inc()
		return s.errorResponse(req.ID, InvalidRequest, "Invalid JSON-RPC version")
	}

	switch req.Method {
	case "initialize":
		return s.result(req.ID, InitializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities:    Capabilities{Tools: map[string]any{}},
			ServerInfo:      ServerInfo{Name: s.name, Version: s.version},
		})
	case "tools/list":
		return s.result(req.ID, ToolsListResult{Tools: tools()})
	case "tools/call":
		return s.handleToolCall(ctx, viewer, req)
	default:
		metrics.MCPErrors.WithLabelValues("method_not_found").Inc()
		return s.errorResponse(req.ID, MethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
	}
}

func tools() []Tool {
	return []Tool{
		{
			Name: toolSearch,
			Description: "List mentors, optionally filtered by skill, name and an availability window. " +
				"Results are paginated; each page holds up to the configured page size.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"skill": {Type: "string", Description: "Skill name the mentor must have"},
					"name":  {Type: "string", Description: "Part of the mentor's name"},
					"from":  {Type: "string", Format: "date-time", Description: "Start of the availability window"},
					"to":    {Type: "string", Format: "date-time", Description: "End of the availability window"},
					"page":  {Type: "integer", Description: "1-based page number", Default: 1},
				},
			},
		},
	}
}

func (s *Server) handleToolCall(ctx context.Context, viewer services.Viewer, req Request) Response {
	start := time.Now()

	var params ToolCallParams
	if err := remarshal(req.Params, &params); err != nil {
		metrics.MCPErrors.WithLabelValues("invalid_params").Inc()
		return s.errorResponse(req.ID, InvalidParams, "Invalid params structure")
	}

	if params.Name != toolSearch {
		metrics.MCPErrors.WithLabelValues("tool_not_found").Inc()
		return s.errorResponse(req.ID, MethodNotFound, fmt.Sprintf("Tool not found: %s", params.Name))
	}

	result, err := s.searchMentors(ctx, viewer, params.Arguments)
	metrics.MCPToolDuration.WithLabelValues(params.Name).Observe(metrics.MeasureDuration(start))

	if err != nil {
		logger.Warn("MCP tool call rejected", zap.String("tool", params.Name), zap.Error(err))
		metrics.MCPToolInvocations.WithLabelValues(params.Name, "invalid").Inc()
		metrics.MCPErrors.WithLabelValues("invalid_params").Inc()
		return s.errorResponse(req.ID, InvalidParams, err.Error())
	}

	status := "success"
	if result.IsError {
		status = "error"
	}
	metrics.MCPToolInvocations.WithLabelValues(params.Name, status).Inc()

	return s.result(req.ID, result)
}

// searchMentors runs the search_mentors tool. Argument errors are returned;
// a failed mentor fetch is reported inside the result.
func (s *Server) searchMentors(ctx context.Context, viewer services.Viewer, args map[string]any) (ToolCallResult, error) {
	var searchArgs SearchMentorsArgs
	if err := remarshal(args, &searchArgs); err != nil {
		return ToolCallResult{}, fmt.Errorf("%w: %v", errInvalidArgs, err)
	}

	q, err := searchArgs.query()
	if err != nil {
		return ToolCallResult{}, err
	}

	snap := s.browser.Browse(ctx, viewer, q)
	switch snap.State {
	case models.ViewStateError:
		return toolError(snap.Error), nil
	case models.ViewStateLoading, models.ViewStateIdle:
		// The wait gave up before the fetch finished
		logger.Warn("MCP search_mentors timed out", zap.String("state", string(snap.State)))
		return toolError(searchTimeoutMessage), nil
	}

	out := SearchMentorsResult{
		Page:    snap.CurrentPage,
		Total:   snap.TotalMentors,
		Mentors: make([]MentorSearchResult, 0, len(snap.Items)),
		Message: snap.EmptyMessage,
	}
	for i := range snap.Items {
		out.Mentors = append(out.Mentors, toSearchResult(&snap.Items[i]))
	}

	text, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return ToolCallResult{}, fmt.Errorf("failed to format results: %w", err)
	}

	logger.Info("MCP search_mentors completed",
		zap.Int("results_count", len(out.Mentors)),
		zap.Int("total", out.Total),
		zap.Int("page", out.Page))

	return ToolCallResult{Content: []Content{{Type: "text", Text: string(text)}}}, nil
}

func toolError(text string) ToolCallResult {
	return ToolCallResult{
		Content: []Content{{Type: "text", Text: text}},
		IsError: true,
	}
}

func (a SearchMentorsArgs) query() (services.BrowseQuery, error) {
	q := services.BrowseQuery{Skill: a.Skill, Name: a.Name, Page: a.Page}
	if a.Page < 0 {
		return q, fmt.Errorf("%w: page must be positive", errInvalidArgs)
	}

	var err error
	if a.From != "" {
		if q.From, err = time.Parse(time.RFC3339, a.From); err != nil {
			return q, fmt.Errorf("%w: from must be an RFC 3339 timestamp", errInvalidArgs)
		}
	}
	if a.To != "" {
		if q.To, err = time.Parse(time.RFC3339, a.To); err != nil {
			return q, fmt.Errorf("%w: to must be an RFC 3339 timestamp", errInvalidArgs)
		}
	}
	return q, nil
}

func toSearchResult(item *models.MentorListItem) MentorSearchResult {
	r := MentorSearchResult{
		ID:        item.Key,
		Name:      item.Name,
		Role:      item.RoleItem,
		Skills:    item.Specialized,
		Star:      item.Star,
		Code:      item.Code,
		SameClass: item.SameClass,
	}
	for _, slot := range item.Schedule {
		r.Schedule = append(r.Schedule, slot.StartTime+" - "+slot.EndTime)
	}
	return r
}

// remarshal converts a decoded JSON value into a typed struct
func remarshal(in, out any) error {
	if in == nil {
		return nil
	}
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (s *Server) result(id, result any) Response {
	return Response{JSONRPC: "2.0", ID: id, Result: result}
}

func (s *Server) errorResponse(id any, code int, message string) Response {
	return Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &RPCError{
			Code:    code,
			Message: message,
		},
	}
}
