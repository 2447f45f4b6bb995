package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spread-puzzle/puzzle-board-api/internal/dto"
	apierrors "github.com/spread-puzzle/puzzle-board-api/internal/errors"
	"github.com/spread-puzzle/puzzle-board-api/internal/middleware"
	"github.com/spread-puzzle/puzzle-board-api/internal/services"
)

const oauthStateCookie = "oauth_state"

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	frontendURL string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, frontendURL string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		frontendURL: frontendURL,
	}
}

// GoogleLogin redirects to the Google consent page with a CSRF state cookie.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		apierrors.InternalError(c, "Failed to generate state token")
		return
	}
	state := hex.EncodeToString(buf)

	c.SetCookie(oauthStateCookie, state, 600, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.authService.GoogleAuthURL(state))
}

// GoogleCallback exchanges the authorization code, resolves the local user
// and redirects to the frontend with the session credential.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	cookieState, err := c.Cookie(oauthStateCookie)
	if state == "" || err != nil || state != cookieState {
		apierrors.BadRequest(c, "Invalid state parameter")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		apierrors.BadRequest(c, "Authorization code not provided")
		return
	}

	googleUser, err := h.authService.ExchangeGoogleCode(c.Request.Context(), code)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	_, token, err := h.authService.LoginWithGoogle(googleUser)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	redirectURL := c.Query("redirectUrl")
	if redirectURL == "" {
		redirectURL = h.frontendURL + "/dashboard/"
	}

	c.Redirect(http.StatusTemporaryRedirect, fmt.Sprintf("%s?token=%s", redirectURL, token))
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMissingGoogleEmail):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrGoogleExchange),
		errors.Is(err, services.ErrGoogleUserInfo):
		apierrors.BadGateway(c, "google", err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidSession):
		apierrors.Unauthorized(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
