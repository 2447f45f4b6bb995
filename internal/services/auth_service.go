package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/spread-puzzle/puzzle-board-api/internal/config"
	"github.com/spread-puzzle/puzzle-board-api/internal/models"
	"github.com/spread-puzzle/puzzle-board-api/internal/repository"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidSession     = errors.New("invalid session token")
	ErrGoogleExchange     = errors.New("failed to exchange authorization code")
	ErrGoogleUserInfo     = errors.New("failed to fetch Google user info")
	ErrMissingGoogleEmail = errors.New("google account email is required")
)

// GoogleUser is the subset of the Google userinfo response we keep.
type GoogleUser struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

// SessionClaims is the payload of the signed session credential.
type SessionClaims struct {
	UserID    uint64 `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	jwt.RegisteredClaims
}

// AuthService exchanges a Google identity for a local user record and a
// signed session credential.
type AuthService struct {
	userRepo    repository.UserRepository
	oauthConfig *oauth2.Config
	jwtSecret   []byte
	jwtExpires  time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	expires, err := time.ParseDuration(cfg.JWTExpires)
	if err != nil {
		expires = 24 * time.Hour
	}

	return &AuthService{
		userRepo: userRepo,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		jwtSecret:  []byte(cfg.JWTSecret),
		jwtExpires: expires,
	}
}

// GoogleAuthURL returns the Google consent page URL for the given CSRF state.
func (s *AuthService) GoogleAuthURL(state string) string {
	return s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ExchangeGoogleCode trades an authorization code for the Google user profile.
func (s *AuthService) ExchangeGoogleCode(ctx context.Context, code string) (*GoogleUser, error) {
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGoogleExchange, err)
	}

	client := s.oauthConfig.Client(ctx, token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGoogleUserInfo, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: %s", ErrGoogleUserInfo, string(body))
	}

	var googleUser GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGoogleUserInfo, err)
	}

	if googleUser.Email == "" {
		return nil, ErrMissingGoogleEmail
	}

	return &googleUser, nil
}

// LoginWithGoogle resolves the Google identity to a local user, creating one
// on first login, and issues the session credential.
func (s *AuthService) LoginWithGoogle(googleUser *GoogleUser) (*models.User, string, error) {
	var avatar *string
	if googleUser.Picture != "" {
		avatar = &googleUser.Picture
	}

	user, err := s.GetOrCreateUserByEmail(googleUser.Email, googleUser.GivenName, googleUser.FamilyName, avatar)
	if err != nil {
		return nil, "", err
	}

	token, err := s.IssueSessionToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// GetOrCreateUserByEmail is the single create-if-absent path for users,
// shared by the login flow and the link-based invitation acceptance.
func (s *AuthService) GetOrCreateUserByEmail(email, firstName, lastName string, avatarURL *string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user = &models.User{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		AvatarURL: avatarURL,
	}
	if err := s.userRepo.Create(user); err != nil {
		// A concurrent create may have won on the unique email index
		if existing, findErr := s.userRepo.FindByEmail(email); findErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logrus.WithField("email", email).Info("created user on first login")
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// IssueSessionToken signs a session credential for the user.
func (s *AuthService) IssueSessionToken(user *models.User) (string, error) {
	claims := &SessionClaims{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.jwtExpires)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ParseSessionToken validates a session credential and returns its claims.
func (s *AuthService) ParseSessionToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSession
	}

	return claims, nil
}
