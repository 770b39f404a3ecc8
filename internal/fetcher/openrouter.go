package fetcher

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/everstacklabs/modelpick/internal/catalog"
	"github.com/everstacklabs/modelpick/internal/httpclient"
	"github.com/everstacklabs/modelpick/internal/validate"
)

const (
	// DefaultBaseURL is the OpenRouter API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	// ModelsEndpoint is appended to the base URL to list models.
	ModelsEndpoint = "/models"
	// APIKeyEnv is consulted when no API key is passed to New.
	APIKeyEnv = "OPENROUTER_API_KEY"
)

// OpenRouter fetches the model catalog from the OpenRouter API.
type OpenRouter struct {
	apiKey  string
	baseURL string
	client  *httpclient.Client
	log     *slog.Logger
}

// Option configures the fetcher.
type Option func(*OpenRouter)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(o *OpenRouter) {
		if u != "" {
			o.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient sets the transport used for the catalog request.
func WithHTTPClient(c *httpclient.Client) Option {
	return func(o *OpenRouter) { o.client = c }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *OpenRouter) {
		if l != nil {
			o.log = l
		}
	}
}

// New creates a fetcher. When apiKey is empty the key is read from
// OPENROUTER_API_KEY; if neither is set a *catalog.ConfigError is returned.
func New(apiKey string, opts ...Option) (*OpenRouter, error) {
	if apiKey == "" {
		apiKey = os.Getenv(APIKeyEnv)
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, &catalog.ConfigError{
			Field: "api_key",
			Msg:   "must be provided directly or via the " + APIKeyEnv + " environment variable",
		}
	}

	o := &OpenRouter{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.client == nil {
		o.client = httpclient.New()
	}
	return o, nil
}

// URL returns the catalog endpoint.
func (o *OpenRouter) URL() string {
	return o.baseURL + ModelsEndpoint
}

func (o *OpenRouter) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + o.apiKey,
		"Content-Type":  "application/json",
	}
}

// Fetch performs one request to the catalog endpoint and returns the decoded,
// validated catalog. It does not retry and touches no cache.
func (o *OpenRouter) Fetch(ctx context.Context) (catalog.Catalog, error) {
	body, err := o.fetchBody(ctx)
	if err != nil {
		return nil, err
	}
	return o.Decode(body)
}

// Inspect fetches the catalog and validates every record without stopping at
// the first problem. Only transport failures and an undecodable envelope are
// returned as errors.
func (o *OpenRouter) Inspect(ctx context.Context) (catalog.Catalog, *validate.Result, error) {
	body, err := o.fetchBody(ctx)
	if err != nil {
		return nil, nil, err
	}

	records, err := splitRecords(body)
	if err != nil {
		return nil, nil, err
	}

	// A record that failed to decode is only partly populated, so the field
	// rules would repeat its decode error with zero values.
	result := &validate.Result{}
	models := make(catalog.Catalog, len(records))
	for i, raw := range records {
		m, err := decodeRecord(i, raw)
		models[i] = m
		if se, ok := asSchemaError(err); ok {
			result.Issues = append(result.Issues, validate.Issue{
				Severity: validate.SeverityError,
				Index:    i,
				Model:    se.ModelID,
				Field:    se.Field,
				Message:  se.Msg,
			})
			continue
		}
		result.Issues = append(result.Issues, validate.ValidateModel(&models[i], i).Issues...)
	}
	result.Issues = append(result.Issues, validate.DuplicateIDs(models)...)
	for i := range models {
		models[i].Pricing.ApplyDefaults()
	}
	return models, result, nil
}

func (o *OpenRouter) fetchBody(ctx context.Context) ([]byte, error) {
	fetchID := uuid.NewString()
	url := o.URL()
	start := time.Now()

	o.log.Debug("fetching model catalog", "fetch_id", fetchID, "url", url)

	resp, err := o.client.Get(ctx, url, o.headers())
	if err != nil {
		o.log.Warn("model catalog fetch failed", "fetch_id", fetchID, "url", url, "error", err)
		return nil, err
	}

	o.log.Info("model catalog fetched",
		"fetch_id", fetchID,
		"status", resp.StatusCode,
		"bytes", len(resp.Body),
		"duration", time.Since(start))
	return resp.Body, nil
}
