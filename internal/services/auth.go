package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"careercoach/api/internal/models"
)

var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims are the claims the identity provider puts in a session token.
// The subject is the provider's user id.
type SessionClaims struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	jwt.RegisteredClaims
}

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.Identity, error)
}

type jwtVerifier struct {
	secret []byte
	issuer string
	logger *zap.Logger
}

func NewTokenVerifier(secret, issuer string, logger *zap.Logger) (TokenVerifier, error) {
	if secret == "" {
		return nil, errors.New("token secret cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &jwtVerifier{
		secret: []byte(secret),
		issuer: issuer,
		logger: logger.Named("auth"),
	}, nil
}

func (v *jwtVerifier) Verify(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		v.logger.Debug("session token rejected", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &models.Identity{
		ExternalID: claims.Subject,
		Email:      claims.Email,
		FirstName:  claims.FirstName,
		LastName:   claims.LastName,
		ImageURL:   claims.ImageURL,
	}, nil
}
