package compute

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/agenthands/rotcurve/internal/config"
	"github.com/agenthands/rotcurve/internal/logging"
)

// NewClient builds the HTTP client for the configured backend. Retries
// follow retryablehttp's default policy and are off unless retry_max > 0.
func NewClient(cfg config.BackendConfig, logger *zap.Logger) (*HTTPClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", cfg.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported backend url scheme: %q", u.Scheme)
	}

	logger = logging.Or(logger).Named("compute")

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = leveledLogger{logger.Sugar()}
	rc.HTTPClient = &http.Client{Timeout: cfg.Timeout.Std()}

	maxBody := cfg.MaxErrorBody
	if maxBody < 1 {
		maxBody = 300
	}

	return &HTTPClient{
		baseURL:      base,
		http:         rc,
		maxErrorBody: maxBody,
		logger:       logger,
	}, nil
}

// leveledLogger routes retryablehttp's request logs into zap.
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
