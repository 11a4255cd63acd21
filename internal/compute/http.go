package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/agenthands/rotcurve/internal/core/model"
	"github.com/agenthands/rotcurve/internal/metrics"
)

// HTTPClient is the Client for a JSON-over-HTTP backend.
type HTTPClient struct {
	baseURL      string
	http         *retryablehttp.Client
	maxErrorBody int
	logger       *zap.Logger
}

var _ Client = (*HTTPClient)(nil)

func (c *HTTPClient) BaseURL() string { return c.baseURL }

// do sends one request and returns the body of a 2xx answer. Anything else
// is a *RemoteCallError.
func (c *HTTPClient) do(ctx context.Context, method, endpoint string, payload interface{}) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", endpoint, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, &RemoteCallError{Method: method, Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.RemoteCallSeconds.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RemoteCalls.WithLabelValues(endpoint, metrics.OutcomeFailed).Inc()
		c.logger.Error("backend unreachable", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, &RemoteCallError{Method: method, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RemoteCalls.WithLabelValues(endpoint, metrics.OutcomeFailed).Inc()
		return nil, &RemoteCallError{Method: method, Endpoint: endpoint, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RemoteCalls.WithLabelValues(endpoint, metrics.OutcomeFailed).Inc()
		c.logger.Error("backend call failed",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode))
		return nil, &RemoteCallError{
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       truncate(data, c.maxErrorBody),
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	metrics.RemoteCalls.WithLabelValues(endpoint, metrics.OutcomeOK).Inc()
	return data, nil
}

// Health reports the backend's own "ok" flag.
func (c *HTTPClient) Health(ctx context.Context) (bool, error) {
	data, err := c.do(ctx, http.MethodGet, EndpointHealth, nil)
	if err != nil {
		return false, err
	}
	return gjson.GetBytes(data, "ok").Bool(), nil
}

func (c *HTTPClient) Compute(ctx context.Context, entry model.GalaxyEntry) (*model.GalaxyResult, error) {
	data, err := c.do(ctx, http.MethodPost, EndpointCompute, NewGalaxyPayload(entry))
	if err != nil {
		return nil, err
	}
	res, err := Decode(EndpointCompute, data)
	if err != nil {
		return nil, err
	}
	if res.Kind != model.KindGalaxy {
		return nil, &ResponseShapeError{Endpoint: EndpointCompute, Reason: "expected a macro block"}
	}
	if res.Galaxy.Galaxy == "" {
		res.Galaxy.Galaxy = entry.Name
	}
	return res.Galaxy, nil
}

// Aggregate submits every entry in one bulk request.
func (c *HTTPClient) Aggregate(ctx context.Context, kind model.AggregateKind, entries []model.GalaxyEntry) (*model.AggregateResult, error) {
	endpoint, ok := AggregateEndpoint(kind)
	if !ok {
		return nil, fmt.Errorf("unknown aggregate kind %q", kind)
	}
	data, err := c.do(ctx, http.MethodPost, endpoint, NewBulkPayload(entries))
	if err != nil {
		return nil, err
	}
	res, err := Decode(endpoint, data)
	if err != nil {
		return nil, err
	}
	if res.Kind != model.KindAggregate {
		return nil, &ResponseShapeError{Endpoint: endpoint, Reason: "expected a " + string(kind) + " block"}
	}
	return res.Aggregate, nil
}
