package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golf-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// BlobStore syncs against an anonymous HTTP blob service that stores one
// JSON document per sync key. Knowledge of the key is the only access
// control; the service authenticates nothing.
type BlobStore struct {
	baseURL string
	client  *fasthttp.Client
	logger  zerolog.Logger
}

func NewBlobStore(baseURL string, logger zerolog.Logger) *BlobStore {
	return &BlobStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &fasthttp.Client{
			MaxConnsPerHost:     10,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

func (s *BlobStore) Fetch(ctx context.Context, syncKey string) (*domain.RoundCollection, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.blobURL(syncKey))
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := s.do(ctx, req, resp); err != nil {
		return nil, err
	}

	if resp.StatusCode() == fasthttp.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("blob store returned %d", resp.StatusCode())
	}

	var c domain.RoundCollection
	if err := json.Unmarshal(resp.Body(), &c); err != nil {
		return nil, fmt.Errorf("failed to decode remote snapshot: %w", err)
	}
	return &c, nil
}

func (s *BlobStore) Put(ctx context.Context, syncKey string, c *domain.RoundCollection) error {
	body, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.blobURL(syncKey))
	req.Header.SetMethod(fasthttp.MethodPut)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := s.do(ctx, req, resp); err != nil {
		return err
	}

	switch resp.StatusCode() {
	case fasthttp.StatusOK, fasthttp.StatusCreated, fasthttp.StatusNoContent:
		s.logger.Debug().Int("bytes", len(body)).Msg("snapshot uploaded to blob store")
		return nil
	default:
		return fmt.Errorf("blob store returned %d", resp.StatusCode())
	}
}

func (s *BlobStore) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if deadline, ok := ctx.Deadline(); ok {
		return s.client.DoDeadline(req, resp, deadline)
	}
	return s.client.Do(req, resp)
}

func (s *BlobStore) blobURL(syncKey string) string {
	return s.baseURL + "/" + url.PathEscape(syncKey)
}
