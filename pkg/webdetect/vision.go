package webdetect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/picturepolice/pkg/metrics"
	"github.com/codeGROOVE-dev/retry"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

// ProbeImageURL is a stable public image used to check that an API key works.
const ProbeImageURL = "https://www.redditstatic.com/desktop2x/img/favicon/android-icon-192x192.png"

const defaultMaxResults = 20

// StatusError is a per-image error reported inside a successful batch response.
type StatusError struct {
	Code    int64
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("vision status %d: %s", e.Code, e.Message)
}

type visionConfig struct {
	logger     *slog.Logger
	endpoint   string
	maxResults int
}

// Option configures a Vision detector.
type Option func(*visionConfig)

// WithLogger sets a logger for the detector.
func WithLogger(logger *slog.Logger) Option {
	return func(c *visionConfig) { c.logger = logger }
}

// WithEndpoint overrides the Vision API base URL.
func WithEndpoint(endpoint string) Option {
	return func(c *visionConfig) { c.endpoint = endpoint }
}

// WithMaxResults sets the WEB_DETECTION maxResults field.
func WithMaxResults(n int) Option {
	return func(c *visionConfig) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

// Vision is a Detector backed by the Google Cloud Vision API.
type Vision struct {
	svc        *vision.Service
	logger     *slog.Logger
	maxResults int
}

// NewVision creates a Cloud Vision detector authenticated with an API key.
func NewVision(ctx context.Context, apiKey string, opts ...Option) (*Vision, error) {
	if apiKey == "" {
		return nil, errors.New("vision: api key is required")
	}
	cfg := &visionConfig{logger: slog.Default(), maxResults: defaultMaxResults}
	for _, opt := range opts {
		opt(cfg)
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if cfg.endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.endpoint))
	}
	svc, err := vision.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create vision service: %w", err)
	}
	return &Vision{svc: svc, logger: cfg.logger, maxResults: cfg.maxResults}, nil
}

// Detect runs WEB_DETECTION for imageURL.
func (v *Vision) Detect(ctx context.Context, imageURL string) (*Detection, error) {
	start := time.Now()
	resp, err := v.annotate(ctx, imageURL)
	metrics.DetectionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DetectionsTotal.WithLabelValues(metrics.StatusError).Inc()
		return nil, err
	}

	d := FromVision(resp.WebDetection)
	if d == nil {
		metrics.DetectionsTotal.WithLabelValues(metrics.StatusEmpty).Inc()
		return nil, ErrNoResult
	}
	metrics.DetectionsTotal.WithLabelValues(metrics.StatusOK).Inc()
	v.logger.DebugContext(ctx, "web detection", "image", imageURL, "pages", len(d.Pages))
	return d, nil
}

// Validate checks the API key by annotating a known public image. An empty
// result still counts as success; only transport and API errors fail.
func (v *Vision) Validate(ctx context.Context) error {
	if _, err := v.annotate(ctx, ProbeImageURL); err != nil {
		return fmt.Errorf("validate api key: %w", err)
	}
	return nil
}

func (v *Vision) annotate(ctx context.Context, imageURL string) (*vision.AnnotateImageResponse, error) {
	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image: &vision.Image{Source: &vision.ImageSource{ImageUri: imageURL}},
			Features: []*vision.Feature{{
				Type:       "WEB_DETECTION",
				MaxResults: int64(v.maxResults),
			}},
		}},
	}

	return retry.DoWithData(
		func() (*vision.AnnotateImageResponse, error) {
			batch, err := v.svc.Images.Annotate(req).Context(ctx).Do()
			if err != nil {
				return nil, fmt.Errorf("annotate %s: %w", imageURL, err)
			}
			if len(batch.Responses) == 0 || batch.Responses[0] == nil {
				return nil, ErrNoResult
			}
			r := batch.Responses[0]
			if r.Error != nil && r.Error.Code != 0 {
				return nil, &StatusError{Code: r.Error.Code, Message: r.Error.Message}
			}
			return r, nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.MaxJitter(250*time.Millisecond),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			v.logger.WarnContext(ctx, "retrying web detection", "attempt", n+1, "image", imageURL, "error", err)
		}),
	)
}

// isRetryable reports whether a Vision API error is transient.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	return false
}
