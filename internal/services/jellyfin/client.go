package jellyfin

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
	"sync"

	"jellypot/internal/config"
	"jellypot/internal/services"
)

// Client identification sent in the authorization header.
const (
	ClientName    = "JellyPot"
	ClientVersion = "1.0.0"
)

// HTTPDoer describes the HTTP client used by the Jellyfin client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Username   string
	Password   string
	DeviceID   string
	DeviceName string
	HTTP       HTTPDoer
}

// Client talks to one Jellyfin server as one user.
type Client struct {
	baseURL    string
	username   string
	password   string
	deviceID   string
	deviceName string
	http       HTTPDoer

	mu        sync.Mutex
	token     string
	userID    string
	sessionID string
}

// New constructs a Client.
func New(opts Options) *Client {
	doer := opts.HTTP
	if doer == nil {
		doer = http.DefaultClient
	}
	deviceName := strings.TrimSpace(opts.DeviceName)
	if deviceName == "" {
		deviceName = ClientName
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		username:   strings.TrimSpace(opts.Username),
		password:   opts.Password,
		deviceID:   strings.TrimSpace(opts.DeviceID),
		deviceName: deviceName,
		http:       doer,
	}
}

// NewFromConfig builds a client from configuration. password overrides the
// configured password when non-empty, which is how keyring secrets arrive.
func NewFromConfig(cfg *config.Config, password string) *Client {
	if password == "" {
		password = cfg.Jellyfin.Password
	}
	return New(Options{
		BaseURL:    cfg.Jellyfin.URL,
		Username:   cfg.Jellyfin.Username,
		Password:   password,
		DeviceID:   cfg.Jellyfin.DeviceID,
		DeviceName: cfg.Jellyfin.DeviceName,
		HTTP:       &http.Client{Timeout: cfg.RequestTimeout()},
	})
}

// Authenticate signs in with the configured username and password.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.baseURL == "" {
		return services.Wrap(services.ErrConfiguration, "jellyfin", "authenticate", "server url is empty", nil)
	}
	payload := map[string]string{"Username": c.username, "Pw": c.password}

	var resp struct {
		AccessToken string `json:"AccessToken"`
		User        struct {
			ID string `json:"Id"`
		} `json:"User"`
		SessionInfo struct {
			ID     string `json:"Id"`
			UserID string `json:"UserId"`
		} `json:"SessionInfo"`
	}
	if err := c.send(ctx, http.MethodPost, "/Users/AuthenticateByName", nil, payload, &resp, ""); err != nil {
		return err
	}
	if resp.AccessToken == "" {
		return services.Wrap(services.ErrUpstream, "jellyfin", "authenticate", "response carried no access token", nil)
	}
	userID := resp.SessionInfo.UserID
	if userID == "" {
		userID = resp.User.ID
	}

	c.mu.Lock()
	c.token = resp.AccessToken
	c.userID = userID
	c.sessionID = resp.SessionInfo.ID
	c.mu.Unlock()
	return nil
}

// UserID returns the signed-in user's id, authenticating if needed.
func (c *Client) UserID(ctx context.Context) (string, error) {
	if _, err := c.ensureToken(ctx); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID, nil
}

// Token returns the current access token, authenticating if needed.
func (c *Client) Token(ctx context.Context) (string, error) {
	return c.ensureToken(ctx)
}

// GetItem fetches an item as the signed-in user.
func (c *Client) GetItem(ctx context.Context, itemID string) (MediaItem, error) {
	userID, err := c.UserID(ctx)
	if err != nil {
		return MediaItem{}, err
	}
	return c.GetUserItem(ctx, userID, itemID)
}

// GetUserItem fetches an item as userID.
func (c *Client) GetUserItem(ctx context.Context, userID, itemID string) (MediaItem, error) {
	var item MediaItem
	path := "/Users/" + url.PathEscape(userID) + "/Items/" + url.PathEscape(itemID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &item); err != nil {
		return MediaItem{}, err
	}
	return item, nil
}

// NextUp lists the next episodes to watch in a series.
func (c *Client) NextUp(ctx context.Context, seriesID, userID string) (ItemsResponse, error) {
	query := url.Values{"SeriesId": {seriesID}, "UserId": {userID}}
	var out ItemsResponse
	err := c.do(ctx, http.MethodGet, "/Shows/NextUp", query, nil, &out)
	return out, err
}

// Children lists the direct children of a season or collection.
func (c *Client) Children(ctx context.Context, userID, parentID string) (ItemsResponse, error) {
	query := url.Values{"ParentId": {parentID}}
	var out ItemsResponse
	err := c.do(ctx, http.MethodGet, "/Users/"+url.PathEscape(userID)+"/Items", query, nil, &out)
	return out, err
}

// StreamURL returns a direct download URL for the item that a player can
// open without further authentication.
func (c *Client) StreamURL(ctx context.Context, itemID string) (string, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return "", err
	}
	query := url.Values{"api_key": {token}}
	return c.baseURL + "/Items/" + url.PathEscape(itemID) + "/Download?" + query.Encode(), nil
}

func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		return token, nil
	}
	if err := c.Authenticate(ctx); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, nil
}

func (c *Client) clearToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// do sends an authenticated request.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}
	return c.send(ctx, method, path, query, body, out, token)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, out any, token string) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build jellyfin request: %w", err)
	}
	req.Header.Set("Authorization", c.authorization(token))
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return services.Wrap(services.ErrUpstream, "jellyfin", method+" "+path, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.clearToken()
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return services.Wrap(services.ErrUpstream, "jellyfin", method+" "+path,
			fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))), nil)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrUpstream, "jellyfin", method+" "+path, "decode response", err)
	}
	return nil
}

// authorization renders the MediaBrowser authorization header.
func (c *Client) authorization(token string) string {
	fields := fmt.Sprintf("Client=%q, Device=%q, DeviceId=%q, Version=%q", ClientName, c.deviceName, c.deviceID, ClientVersion)
	if token == "" {
		return "MediaBrowser " + fields
	}
	return fmt.Sprintf("MediaBrowser Token=%q, %s", token, fields)
}
