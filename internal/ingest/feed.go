package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/gcbaptista/card-catalog/config"
	"github.com/gcbaptista/card-catalog/model"
	"github.com/gcbaptista/card-catalog/services"
)

const (
	// MaxResponseSize is the largest feed response accepted (100MB)
	MaxResponseSize = 100 * 1024 * 1024

	// UserAgent is sent with every feed request
	UserAgent = "card-catalog/1.0"
)

// Feed is the remote source of the catalog.
type Feed interface {
	// Version returns the current version string of the named dataset.
	Version(ctx context.Context, name string) (string, error)
	// Cards returns the raw card payload.
	Cards(ctx context.Context) ([]byte, error)
}

// HTTPError is a feed response with an unexpected status.
type HTTPError struct {
	StatusCode int
	URL        string
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %s", e.URL, e.Status)
}

// retryable reports whether a request that failed with this status may
// succeed when repeated.
func (e *HTTPError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// HTTPFeed reads the feed over HTTP, retrying transient failures with
// exponential backoff.
type HTTPFeed struct {
	client   *http.Client
	settings config.SyncSettings
	logger   *zap.Logger

	// newBackOff builds the retry schedule of one request.
	newBackOff func() backoff.BackOff
}

// NewHTTPFeed creates a feed client from the sync settings.
func NewHTTPFeed(settings config.SyncSettings, logger *zap.Logger) *HTTPFeed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPFeed{
		client:   &http.Client{Timeout: settings.Timeout},
		settings: settings,
		logger:   logger,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
}

// Version fetches the version record of name. The endpoint may answer with
// one record or with an array of records; an array is searched by name.
func (f *HTTPFeed) Version(ctx context.Context, name string) (string, error) {
	if f.settings.VersionURL == "" {
		return "", errors.New("sync.version_url is not configured")
	}
	body, err := f.get(ctx, f.settings.VersionURL)
	if err != nil {
		return "", err
	}
	return DecodeVersion(body, name)
}

// Cards fetches the card payload.
func (f *HTTPFeed) Cards(ctx context.Context) ([]byte, error) {
	if f.settings.CardsURL == "" {
		return nil, errors.New("sync.cards_url is not configured")
	}
	return f.get(ctx, f.settings.CardsURL)
}

func (f *HTTPFeed) get(ctx context.Context, url string) ([]byte, error) {
	tries := uint(f.settings.Retries) + 1
	attempt := 0

	operation := func() ([]byte, error) {
		attempt++
		body, err := f.getOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && !httpErr.retryable() {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	notify := func(err error, wait time.Duration) {
		f.logger.Warn("feed request failed, retrying",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(f.newBackOff()),
		backoff.WithMaxTries(tries),
		backoff.WithNotify(notify),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch %s after %d attempt(s): %w", url, attempt, err)
	}
	return body, nil
}

func (f *HTTPFeed) getOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range f.settings.Headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url, Status: resp.Status}
	}
	if resp.ContentLength > MaxResponseSize {
		return nil, backoff.Permanent(fmt.Errorf("response size %d bytes exceeds maximum allowed size of %d bytes",
			resp.ContentLength, MaxResponseSize))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, backoff.Permanent(fmt.Errorf("response size exceeds maximum allowed size of %d bytes", MaxResponseSize))
	}
	return body, nil
}

// versionRecord is one row of the remote version table.
type versionRecord struct {
	Name      string `json:"name"`
	UpdatedAt string `json:"updated_at"`
}

// DecodeVersion extracts the version of name from a version payload: either
// a single record or an array of records.
func DecodeVersion(payload []byte, name string) (string, error) {
	payload = bytes.TrimSpace(payload)
	var records []versionRecord
	if len(payload) > 0 && payload[0] == '[' {
		if err := json.Unmarshal(payload, &records); err != nil {
			return "", fmt.Errorf("decode version records: %w", err)
		}
	} else {
		var one versionRecord
		if err := json.Unmarshal(payload, &one); err != nil {
			return "", fmt.Errorf("decode version record: %w", err)
		}
		records = []versionRecord{one}
	}

	for _, r := range records {
		if (r.Name == name || (r.Name == "" && len(records) == 1)) && r.UpdatedAt != "" {
			return r.UpdatedAt, nil
		}
	}
	return "", fmt.Errorf("no version record for '%s'", name)
}

// decodeFeed splits a feed payload into card records. The payload is a JSON
// array of cards or an object holding that array under "data". A record that
// does not decode as a card is returned as a failure.
func decodeFeed(payload []byte) (records []record, failures []services.ImportFailure, total int, err error) {
	payload = bytes.TrimSpace(payload)
	var raw []json.RawMessage
	if len(payload) > 0 && payload[0] == '{' {
		var envelope struct {
			Data []json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(payload, &envelope); err != nil {
			return nil, nil, 0, fmt.Errorf("decode feed envelope: %w", err)
		}
		raw = envelope.Data
	} else if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, nil, 0, fmt.Errorf("decode feed: %w", err)
	}

	records = make([]record, 0, len(raw))
	for pos, msg := range raw {
		var c model.Card
		if err := json.Unmarshal(msg, &c); err != nil {
			failures = append(failures, services.ImportFailure{Position: pos, CardNo: peekCardNo(msg), Error: err.Error()})
			continue
		}
		records = append(records, record{position: pos, card: c})
	}
	return records, failures, len(raw), nil
}

// DecodeCards decodes a feed payload, dropping records that do not decode.
func DecodeCards(payload []byte) ([]model.Card, error) {
	records, _, _, err := decodeFeed(payload)
	if err != nil {
		return nil, err
	}
	cards := make([]model.Card, len(records))
	for i, r := range records {
		cards[i] = r.card
	}
	return cards, nil
}

// peekCardNo returns the card number of an undecodable record, if it has one.
func peekCardNo(msg json.RawMessage) string {
	var probe struct {
		CardNo any `json:"card_no"`
	}
	if err := json.Unmarshal(msg, &probe); err != nil || probe.CardNo == nil {
		return ""
	}
	return fmt.Sprint(probe.CardNo)
}
