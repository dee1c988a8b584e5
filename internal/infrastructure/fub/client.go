package fub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client errors
var (
	ErrAuthentication = errors.New("fub authentication failed")
	ErrNotFound       = errors.New("fub resource not found")
	ErrUnavailable    = errors.New("fub api unavailable")
)

// Tokens is the OAuth token pair for one connected account
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// Config holds Follow Up Boss client settings
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	SystemName   string
	SystemKey    string
	Timeout      time.Duration
}

// Client calls the Follow Up Boss REST API on behalf of a connected account.
// A 401 triggers a single token refresh and retry; rotated tokens are
// returned to the caller for persistence.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a Follow Up Boss API client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.followupboss.com/v1"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.TokenURL == "" {
		cfg.TokenURL = strings.TrimSuffix(cfg.BaseURL, "/v1") + "/oauth/token"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Person is a lead record
type Person struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Stage   string  `json:"stage"`
	Source  string  `json:"source"`
	Created string  `json:"created"`
	Emails  []Email `json:"emails"`
	Phones  []Phone `json:"phones"`
}

// Email is one email address on a person
type Email struct {
	Value string `json:"value"`
}

// Phone is one phone number on a person
type Phone struct {
	Value string `json:"value"`
}

// PrimaryEmail returns the first email on the record, if any
func (p *Person) PrimaryEmail() string {
	if len(p.Emails) == 0 {
		return ""
	}
	return p.Emails[0].Value
}

// PrimaryPhone returns the first phone on the record, if any
func (p *Person) PrimaryPhone() string {
	if len(p.Phones) == 0 {
		return ""
	}
	return p.Phones[0].Value
}

// Activity is one timeline event on a person
type Activity struct {
	ID      int64  `json:"id"`
	Type    string `json:"type"`
	Created string `json:"created"`
}

type activitiesResponse struct {
	Activities []Activity `json:"activities"`
}

// Note is a note attached to a person
type Note struct {
	ID       int64  `json:"id"`
	PersonID int64  `json:"personId"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Created  string `json:"created"`
}

// GetPerson fetches a lead record
func (c *Client) GetPerson(ctx context.Context, tokens Tokens, personID string) (*Person, Tokens, error) {
	var person Person
	tokens, err := c.doJSON(ctx, tokens, http.MethodGet, "/people/"+url.PathEscape(personID), nil, nil, &person)
	if err != nil {
		return nil, tokens, err
	}
	return &person, tokens, nil
}

// ListActivities fetches the most recent timeline events for a lead
func (c *Client) ListActivities(ctx context.Context, tokens Tokens, personID string, limit int) ([]Activity, Tokens, error) {
	if limit <= 0 {
		limit = 20
	}
	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", limit))
	query.Set("sort", "-created")

	var resp activitiesResponse
	tokens, err := c.doJSON(ctx, tokens, http.MethodGet, "/people/"+url.PathEscape(personID)+"/activities", query, nil, &resp)
	if err != nil {
		return nil, tokens, err
	}
	return resp.Activities, tokens, nil
}

// CreateNote attaches a note to a lead
func (c *Client) CreateNote(ctx context.Context, tokens Tokens, personID, subject, body string) (*Note, Tokens, error) {
	payload := map[string]string{
		"subject": subject,
		"body":    body,
	}

	var note Note
	tokens, err := c.doJSON(ctx, tokens, http.MethodPost, "/people/"+url.PathEscape(personID)+"/notes", nil, payload, &note)
	if err != nil {
		return nil, tokens, err
	}
	return &note, tokens, nil
}

// RefreshTokens exchanges the refresh token for a new token pair.
// FUB may omit the refresh token from the response when it does not rotate.
func (c *Client) RefreshTokens(ctx context.Context, tokens Tokens) (Tokens, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", tokens.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return tokens, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return tokens, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
		return tokens, ErrAuthentication
	}
	if resp.StatusCode != http.StatusOK {
		return tokens, fmt.Errorf("%w: token endpoint returned %d", ErrUnavailable, resp.StatusCode)
	}

	var body struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return tokens, fmt.Errorf("%w: decoding token response: %v", ErrUnavailable, err)
	}
	if body.AccessToken == "" {
		return tokens, ErrAuthentication
	}

	refreshed := Tokens{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = tokens.RefreshToken
	}
	return refreshed, nil
}

// doJSON performs an authenticated request, refreshing the token pair once
// when the API answers 401. The possibly-rotated tokens are always returned.
func (c *Client) doJSON(ctx context.Context, tokens Tokens, method, path string, query url.Values, payload, out any) (Tokens, error) {
	status, body, err := c.send(ctx, tokens, method, path, query, payload)
	if err != nil {
		return tokens, err
	}

	if status == http.StatusUnauthorized {
		c.logger.Debug("FUB access token rejected, refreshing",
			zap.String("path", path))

		refreshed, err := c.RefreshTokens(ctx, tokens)
		if err != nil {
			return tokens, err
		}
		tokens = refreshed

		status, body, err = c.send(ctx, tokens, method, path, query, payload)
		if err != nil {
			return tokens, err
		}
		if status == http.StatusUnauthorized {
			return tokens, ErrAuthentication
		}
	}

	switch {
	case status == http.StatusNotFound:
		return tokens, ErrNotFound
	case status >= 500:
		return tokens, fmt.Errorf("%w: status %d", ErrUnavailable, status)
	case status >= 400:
		return tokens, fmt.Errorf("fub api error: status %d: %s", status, truncateBody(body))
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return tokens, fmt.Errorf("decoding fub response: %w", err)
		}
	}
	return tokens, nil
}

func (c *Client) send(ctx context.Context, tokens Tokens, method, path string, query url.Values, payload any) (int, []byte, error) {
	endpoint := c.cfg.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.SystemName != "" {
		req.Header.Set("X-System", c.cfg.SystemName)
	}
	if c.cfg.SystemKey != "" {
		req.Header.Set("X-System-Key", c.cfg.SystemKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}
	return resp.StatusCode, body, nil
}

func truncateBody(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
