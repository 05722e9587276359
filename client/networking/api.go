package networking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultRequestTimeout = 15 * time.Second

// TokenProvider supplies the auth token attached to every battle request.
// The battle client never touches token storage itself; whoever owns the
// session (the app shell, a test) injects one of these.
type TokenProvider interface {
	Token() string
}

// StaticToken is a TokenProvider for a fixed token. An empty StaticToken
// sends unauthenticated requests, which the practice server accepts.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// APIError is a structured rejection from the battle server. The message is
// surfaced verbatim so the UI can show exactly what the server said.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Client talks to the remote battle endpoint. Raw responses come back as
// undecoded maps so the normalizer owns all shape handling.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
}

func NewClient(baseURL string, tokens TokenProvider) *Client {
	if tokens == nil {
		tokens = StaticToken("")
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
		tokens: tokens,
	}
}

func (c *Client) StartBattle(ctx context.Context, mode string) (map[string]any, error) {
	return c.post(ctx, "/api/battle/start", map[string]any{"mode": mode})
}

func (c *Client) SubmitMove(ctx context.Context, battleID, move string, moveIdx *int) (map[string]any, error) {
	payload := map[string]any{
		"battle_id": battleID,
		"move":      move,
	}
	// move_idx only travels for attacks
	if moveIdx != nil {
		payload["move_idx"] = *moveIdx
	}
	return c.post(ctx, "/api/battle/move", payload)
}

func (c *Client) SwitchPokemon(ctx context.Context, battleID string, newIdx int) (map[string]any, error) {
	return c.post(ctx, "/api/battle/switch", map[string]any{
		"battle_id": battleID,
		"new_idx":   newIdx,
	})
}

func (c *Client) BattleState(ctx context.Context, battleID string) (map[string]any, error) {
	return c.get(ctx, "/api/battle/state?battle_id="+url.QueryEscape(battleID))
}

func (c *Client) SelectReward(ctx context.Context, battleID string, pokemonIdx int) (map[string]any, error) {
	return c.post(ctx, "/api/battle/select-reward", map[string]any{
		"battle_id":     battleID,
		"pokemon_index": pokemonIdx,
	})
}

func (c *Client) post(ctx context.Context, path string, payload any) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("could not encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	return c.do(req)
}

func (c *Client) do(req *http.Request) (map[string]any, error) {
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("battle request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read battle response: %w", err)
	}

	var decoded map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("could not decode battle response: %w", err)
		}
	}

	if resp.StatusCode >= 400 {
		apiErr := decodeError(resp.StatusCode, decoded)
		log.Warn().
			Str("path", req.URL.Path).
			Int("status", resp.StatusCode).
			Str("message", apiErr.Message).
			Msg("battle server rejected request")
		return nil, apiErr
	}

	return decoded, nil
}

// decodeError handles both server error envelopes: the structured
// {error: {code, message}} and the bare {error: "..."} string.
func decodeError(status int, decoded map[string]any) *APIError {
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}

	switch errVal := decoded["error"].(type) {
	case string:
		apiErr.Message = errVal
	case map[string]any:
		if code, ok := errVal["code"].(string); ok {
			apiErr.Code = code
		}
		if msg, ok := errVal["message"].(string); ok {
			apiErr.Message = msg
		}
	}

	return apiErr
}
