package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spread-puzzle/puzzle-board-api/internal/config"
)

var (
	ErrRoomAuthFailed   = errors.New("room credential issuer call failed")
	ErrInvalidRoomToken = errors.New("invalid room token")
)

// RoomUserInfo is the display metadata attached to a room credential.
type RoomUserInfo struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar,omitempty"`
}

// RoomService talks to the external collaboration-room credential issuer and
// validates room tokens presented back to us.
type RoomService struct {
	authURL   string
	secretKey string
	client    *http.Client
}

// NewRoomService creates a new RoomService.
func NewRoomService(cfg *config.Config) *RoomService {
	return &RoomService{
		authURL:   cfg.RoomAuthURL,
		secretKey: cfg.RoomSecretKey,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Authorize requests a signed room token granting the permissions on the
// room from the external issuer.
func (s *RoomService) Authorize(ctx context.Context, userID string, userInfo RoomUserInfo, roomID string, permissions []string) (string, error) {
	payload := map[string]interface{}{
		"userId":   userID,
		"userInfo": userInfo,
		"permissions": map[string][]string{
			roomID: permissions,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRoomAuthFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.authURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRoomAuthFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.secretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRoomAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: status %d: %s", ErrRoomAuthFailed, resp.StatusCode, string(respBody))
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRoomAuthFailed, err)
	}
	if result.Token == "" {
		return "", fmt.Errorf("%w: empty token in response", ErrRoomAuthFailed)
	}

	return result.Token, nil
}

// ValidateRoomToken checks that the token grants the required permission on
// the room and has not expired. The token is signed with the issuer's own
// key, so only the payload is inspected, not the signature.
func (s *RoomService) ValidateRoomToken(tokenString, roomID, requiredPermission string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRoomToken, err)
	}

	perms, ok := claims["perms"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("%w: no permissions claim", ErrInvalidRoomToken)
	}

	roomPerms, ok := perms[roomID].([]interface{})
	if !ok {
		return fmt.Errorf("%w: no permissions for room", ErrInvalidRoomToken)
	}

	granted := false
	for _, p := range roomPerms {
		if perm, ok := p.(string); ok && perm == requiredPermission {
			granted = true
			break
		}
	}
	if !granted {
		return fmt.Errorf("%w: missing %s permission", ErrInvalidRoomToken, requiredPermission)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRoomToken, err)
	}
	if exp != nil && exp.Before(time.Now()) {
		return fmt.Errorf("%w: token expired", ErrInvalidRoomToken)
	}

	return nil
}
