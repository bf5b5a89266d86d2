package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"airmon.uz/telemetry-service/pkg/common"
	"airmon.uz/telemetry-service/pkg/crud"
	"airmon.uz/telemetry-service/pkg/models"
)

var (
	// ErrInvalidCredentials covers bad logins and bad/expired tokens
	// alike; callers never learn which part was wrong.
	ErrInvalidCredentials = errors.New("could not validate credentials")
	ErrMissingToken       = errors.New("refresh token is not provided")
	ErrInactiveUser       = errors.New("inactive user")
)

// UserStore is the slice of the user repository the auth service needs.
type UserStore interface {
	GetByUsername(username string) (*models.User, error)
}

// TokenPair is the login/refresh response shape.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Service issues and resolves stateless token pairs. Access and refresh
// tokens share one signing secret; refresh tokens are not revocable.
type Service struct {
	users      UserStore
	codec      *Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        *zap.Logger
}

func NewService(users UserStore, codec *Codec, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		users:      users,
		codec:      codec,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		log:        common.GetLoggerWith(common.LoggerNameAuth),
	}
}

// Authenticate returns the user matching the credentials, or
// ErrInvalidCredentials for an unknown username or wrong password without
// distinguishing the two. Storage failures propagate unmodified.
func (s *Service) Authenticate(username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// IssueTokenPair signs an access and a refresh token for the subject,
// each with its own expiry.
func (s *Service) IssueTokenPair(subject string) (*TokenPair, error) {
	accessToken, err := s.codec.Issue(jwt.MapClaims{"sub": subject}, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.codec.Issue(jwt.MapClaims{"sub": subject}, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	s.log.Info("issued token pair", zap.String("sub", subject))

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

// Refresh trades a valid refresh token for a brand-new pair. The old
// refresh token stays valid until it expires; there is no revocation
// list.
func (s *Service) Refresh(refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return nil, ErrInvalidCredentials
	}
	return s.IssueTokenPair(subject)
}

// ResolveIdentity maps an access token back to its user. Any decode
// failure, missing subject or unknown user is ErrInvalidCredentials.
func (s *Service) ResolveIdentity(accessToken string) (*models.User, error) {
	claims, err := s.codec.Decode(accessToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(subject)
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return user, nil
}

// ResolveActiveUser additionally rejects disabled accounts.
func (s *Service) ResolveActiveUser(accessToken string) (*models.User, error) {
	user, err := s.ResolveIdentity(accessToken)
	if err != nil {
		return nil, err
	}
	if user.Disabled {
		return nil, ErrInactiveUser
	}
	return user, nil
}
