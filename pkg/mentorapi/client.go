// Package mentorapi is the client of the remote mentor-search API.
package mentorapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/getmentor/mentor-finder/internal/models"
	"github.com/getmentor/mentor-finder/pkg/circuitbreaker"
	apperrors "github.com/getmentor/mentor-finder/pkg/errors"
	"github.com/getmentor/mentor-finder/pkg/httpclient"
	"github.com/getmentor/mentor-finder/pkg/logger"
	"github.com/getmentor/mentor-finder/pkg/metrics"
	"github.com/getmentor/mentor-finder/pkg/tracing"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	serviceName     = "mentor-api"
	searchOperation = "search_mentors"
	maxBodyBytes    = 10 << 20
)

// SearchParams are the query parameters of a mentor search. Nil pointers are
// left out of the request.
type SearchParams struct {
	Name          string
	Skills        *string
	AvailableFrom *string
	AvailableTo   *string
}

// Query encodes the parameters. name is always sent, possibly empty.
func (p SearchParams) Query() url.Values {
	q := url.Values{}
	q.Set("name", p.Name)
	if p.Skills != nil {
		q.Set("skills", *p.Skills)
	}
	if p.AvailableFrom != nil {
		q.Set("availableFrom", *p.AvailableFrom)
	}
	if p.AvailableTo != nil {
		q.Set("availableTo", *p.AvailableTo)
	}
	return q
}

// SearchResponse is the API envelope
type SearchResponse struct {
	StatusCode     int              `json:"statusCode"`
	Message        string           `json:"message,omitempty"`
	MentorsDTOList []*models.Mentor `json:"mentorsDTOList"`
}

// Client calls the mentor-search endpoint
type Client struct {
	httpClient httpclient.Client
	searchURL  string
	breaker    *gobreaker.CircuitBreaker
}

// NewClient creates a client for baseURL+searchPath
func NewClient(baseURL, searchPath string, httpClient httpclient.Client) *Client {
	cfg := circuitbreaker.DefaultConfig(serviceName)
	// Envelope-level failures (non-200 statusCode) are answers, not outages
	cfg.IsSuccessful = func(err error) bool { return err == nil }

	return &Client{
		httpClient: httpClient,
		searchURL:  baseURL + searchPath,
		breaker:    circuitbreaker.NewCircuitBreaker(cfg),
	}
}

// BreakerState reports the circuit breaker state for health checks
func (c *Client) BreakerState() string {
	return circuitbreaker.GetState(c.breaker)
}

// Search runs a mentor search on behalf of the holder of token.
//
// The envelope's statusCode is authoritative; when it is missing the HTTP
// status is used instead. A non-2xx reply whose body is not an envelope is
// returned as a bare status response, not as an error. Transport failures,
// undecodable 2xx bodies and an open breaker are errors.
func (c *Client) Search(ctx context.Context, params SearchParams, token string) (*SearchResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "mentorapi.Search",
		attribute.Bool("mentor.filter.skills", params.Skills != nil),
		attribute.Bool("mentor.filter.dates", params.AvailableFrom != nil && params.AvailableTo != nil),
	)
	defer span.End()

	start := time.Now()
	resp, err := circuitbreaker.Execute(c.breaker, func() (*SearchResponse, error) {
		return c.doSearch(ctx, params, token)
	})
	duration := metrics.MeasureDuration(start)

	status := "success"
	if err != nil {
		status = "error"
		tracing.RecordError(span, err)
	} else {
		span.SetAttributes(
			attribute.Int("mentor.response.status_code", resp.StatusCode),
			attribute.Int("mentor.response.count", len(resp.MentorsDTOList)),
		)
	}

	metrics.MentorAPIRequestDuration.WithLabelValues(searchOperation, status).Observe(duration)
	metrics.MentorAPIRequestTotal.WithLabelValues(searchOperation, status).Inc()

	if err != nil {
		logger.LogAPICall(ctx, serviceName, searchOperation, status, duration, zap.Error(err))
		return nil, apperrors.UpstreamError(serviceName, err)
	}

	logger.LogAPICall(ctx, serviceName, searchOperation, status, duration,
		zap.Int("status_code", resp.StatusCode),
		zap.Int("count", len(resp.MentorsDTOList)))

	return resp, nil
}

func (c *Client) doSearch(ctx context.Context, params SearchParams, token string) (*SearchResponse, error) {
	reqURL := c.searchURL + "?" + params.Query().Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	ok := httpResp.StatusCode >= 200 && httpResp.StatusCode < 300

	var envelope SearchResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		if ok {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return &SearchResponse{StatusCode: httpResp.StatusCode}, nil
	}

	if envelope.StatusCode == 0 {
		envelope.StatusCode = httpResp.StatusCode
	}

	return &envelope, nil
}
