package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// SessionServiceURL is the Mojang endpoint used to verify that a
// connecting client holds a valid authenticated session (spec §6).
const SessionServiceURL = "https://sessionserver.mojang.com/session/minecraft/hasJoined"

// Property is a named, opaquely-signed piece of profile data — used here
// to carry skin/cape textures through to the embedder.
type Property struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Signature string `json:"signature,omitempty"`
}

// Profile is the authoritative identity the session service hands back
// for a successful hasJoined check.
type Profile struct {
	ID         uuid.UUID
	Name       string
	Properties []Property
}

type hasJoinedResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Properties []Property `json:"properties"`
}

// ErrNotAuthenticated is returned when the session service responds with
// anything other than 200 OK, meaning the client does not hold a valid
// session for the claimed username/server hash pair.
var ErrNotAuthenticated = fmt.Errorf("session service: client is not authenticated")

// Client queries the Mojang session service. The zero value is ready to
// use; Client embeds no per-call state, so one instance is shared across
// every login on the server.
type Client struct {
	HTTP *http.Client
}

// NewClient returns a Client with a bounded per-request timeout, matching
// the "don't hold a lock across this call" guidance in spec §9 — the
// caller is expected to have already moved this call onto the bounded
// worker pool (limbo.Server.RunAuth in internal/limbo) before invoking it.
func NewClient() *Client {
	return &Client{HTTP: &http.Client{Timeout: 10 * time.Second}}
}

// HasJoined performs the hasJoined check for username against the given
// server hash and returns the authoritative profile on success.
func (c *Client) HasJoined(ctx context.Context, username, serverHash string) (*Profile, error) {
	u := SessionServiceURL + "?" + url.Values{
		"username": {username},
		"serverId": {serverHash},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("auth: building session request: %w", err)
	}

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: session service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrNotAuthenticated
	}

	var body hasJoinedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("auth: decoding session response: %w", err)
	}

	id, err := parseUndashedUUID(body.ID)
	if err != nil {
		return nil, fmt.Errorf("auth: parsing profile uuid %q: %w", body.ID, err)
	}

	return &Profile{ID: id, Name: body.Name, Properties: body.Properties}, nil
}

// parseUndashedUUID parses the hyphen-free hex UUID form the session
// service returns (spec §6: "id: hex-uuid-no-hyphens").
func parseUndashedUUID(s string) (uuid.UUID, error) {
	if len(s) == 32 {
		s = s[0:8] + "-" + s[8:12] + "-" + s[12:16] + "-" + s[16:20] + "-" + s[20:32]
	}
	return uuid.Parse(s)
}
