// Package roomclient is the Go client for the dablu backend. It mirrors the
// behavior of the web client: one shared HTTP client with a hard timeout and
// no retries, bearer-token auth, session expiry signalling on 401, and typed
// settlement conflicts on 409.
package roomclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dablu-app/dablu_backend/internal/apperrors"
	"github.com/dablu-app/dablu_backend/internal/core/domain"
	"github.com/dablu-app/dablu_backend/internal/dto"
)

// defaultTimeout bounds every request. Requests that exceed it fail, they
// are never retried.
const defaultTimeout = 30 * time.Second

// Config configures a Client.
type Config struct {
	// BaseURL is the backend root, e.g. "https://api.dablu.app".
	BaseURL string

	// Token is the bearer token to authenticate with. It can be set later
	// via SetToken after a login.
	Token string

	// OnSessionExpired is invoked once per 401 response, before the call
	// returns ErrUnauthorized. Callers typically clear their stored
	// session here.
	OnSessionExpired func()

	// HTTPClient overrides the default client. Mostly for tests.
	HTTPClient *http.Client
}

// Client is a backend API client. It is safe for concurrent use.
type Client struct {
	baseURL          string
	httpClient       *http.Client
	onSessionExpired func()

	mu    sync.RWMutex
	token string
}

// New creates a Client from cfg.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:       httpClient,
		token:            cfg.Token,
		onSessionExpired: cfg.OnSessionExpired,
	}
}

// SetToken replaces the bearer token used for subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearerToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// errorBody is the standard error envelope. The settlement conflict fields
// are only present on typed 409 responses.
type errorBody struct {
	Error                   string     `json:"error"`
	Type                    string     `json:"type"`
	Suggestion              string     `json:"suggestion"`
	LastSettlement          *time.Time `json:"lastSettlement"`
	TimeSinceLastSettlement string     `json:"timeSinceLastSettlement"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.bearerToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onSessionExpired != nil {
			c.onSessionExpired()
		}
		return apperrors.ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)

		if resp.StatusCode == http.StatusConflict && eb.Type != "" {
			return &apperrors.SettlementConflictError{
				Type:                    eb.Type,
				Suggestion:              eb.Suggestion,
				LastSettlement:          eb.LastSettlement,
				TimeSinceLastSettlement: eb.TimeSinceLastSettlement,
			}
		}
		if eb.Error == "" {
			eb.Error = resp.Status
		}
		return fmt.Errorf("%s %s: %s", method, path, eb.Error)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Login authenticates with email and password and stores the returned token
// on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	var resp dto.LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", dto.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error) {
	var resp dto.UserResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRoom fetches the current room snapshot.
func (c *Client) GetRoom(ctx context.Context, roomID string) (*dto.RoomResponse, error) {
	var resp dto.RoomResponse
	if err := c.do(ctx, http.MethodGet, "/room/"+roomID, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateRoom creates a room with the caller as admin.
func (c *Client) CreateRoom(ctx context.Context, req dto.CreateRoomRequest) (*dto.RoomResponse, error) {
	var resp dto.RoomResponse
	if err := c.do(ctx, http.MethodPost, "/rooms", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// JoinRoom adds userID to the room's member list.
func (c *Client) JoinRoom(ctx context.Context, roomID, userID string) (*dto.RoomResponse, error) {
	var resp dto.RoomResponse
	if err := c.do(ctx, http.MethodPost, "/rooms/"+roomID+"/join", dto.JoinRoomRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListRooms fetches all rooms the user belongs to.
func (c *Client) ListRooms(ctx context.Context, userID string) ([]dto.RoomResponse, error) {
	var resp dto.ListRoomsResponse
	if err := c.do(ctx, http.MethodGet, "/rooms/user/"+userID, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Rooms, nil
}

// AddExpense submits an expense to the room.
func (c *Client) AddExpense(ctx context.Context, roomID string, req dto.AddExpenseRequest) (*dto.RoomResponse, error) {
	var resp dto.RoomResponse
	if err := c.do(ctx, http.MethodPost, "/rooms/"+roomID+"/expense", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CalculateSettlement asks the backend to rederive the room's transfer list.
func (c *Client) CalculateSettlement(ctx context.Context, roomID string) ([]domain.Transfer, error) {
	var resp dto.CalculateSettlementResponse
	if err := c.do(ctx, http.MethodGet, "/room/"+roomID+"/calculate-settlement", nil, &resp); err != nil {
		return nil, err
	}
	return resp.PayerList, nil
}

// UpdatePayerList pushes a client-computed transfer list to the backend.
func (c *Client) UpdatePayerList(ctx context.Context, roomID string, payerList []domain.Transfer) (*dto.RoomResponse, error) {
	var resp dto.RoomResponse
	if err := c.do(ctx, http.MethodPost, "/room/"+roomID+"/update-payerlist", dto.UpdatePayerListRequest{PayerList: payerList}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MarkReceived confirms receipt of a single transfer.
func (c *Client) MarkReceived(ctx context.Context, roomID string, req dto.MarkReceivedRequest) error {
	var resp dto.MarkReceivedResponse
	return c.do(ctx, http.MethodPost, "/room/"+roomID+"/mark-received", req, &resp)
}

// Settle commits the current settlement round. A 409 comes back as a
// *apperrors.SettlementConflictError.
func (c *Client) Settle(ctx context.Context, roomID string, req dto.SettleRequest) (*dto.RoomResponse, error) {
	var resp dto.RoomResponse
	if err := c.do(ctx, http.MethodPost, "/room/settle/"+roomID, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteRoom removes the room. Admin only.
func (c *Client) DeleteRoom(ctx context.Context, roomID string) error {
	return c.do(ctx, http.MethodDelete, "/room/"+roomID, nil, nil)
}

// LookupUsers resolves user IDs to display names.
func (c *Client) LookupUsers(ctx context.Context, userIDs []string) ([]dto.UserResponse, error) {
	var resp struct {
		Users []dto.UserResponse `json:"users"`
	}
	if err := c.do(ctx, http.MethodPost, "/users", dto.LookupUsersRequest{UserIDs: userIDs}, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}
