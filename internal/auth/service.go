package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidUserID is returned when a token is requested for a reserved or empty id.
var ErrInvalidUserID = errors.New("invalid user id")

// reservedIDs name the managed room owners and can never identify a user.
var reservedIDs = map[string]struct{}{
	"system": {},
	"queue":  {},
}

// Service issues and validates caller tokens.
type Service struct {
	jwtConfig *JWTConfig
}

// NewService creates a new authentication service.
func NewService(jwtConfig *JWTConfig) *Service {
	return &Service{jwtConfig: jwtConfig}
}

// Issue returns a signed token for userID.
func (s *Service) Issue(userID, name string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", ErrInvalidUserID
	}
	if _, reserved := reservedIDs[userID]; reserved {
		return "", fmt.Errorf("%q: %w", userID, ErrInvalidUserID)
	}

	token, err := GenerateToken(s.jwtConfig, userID, name)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}

// IssueGuest creates a random user id and returns it with its token.
func (s *Service) IssueGuest() (userID, token string, err error) {
	userID = uuid.NewString()
	token, err = s.Issue(userID, "guest_"+userID[:8])
	if err != nil {
		return "", "", err
	}
	return userID, token, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims, err := ValidateToken(s.jwtConfig, tokenString)
	if err != nil {
		return nil, err
	}
	if _, reserved := reservedIDs[claims.Caller()]; reserved {
		return nil, fmt.Errorf("%q: %w", claims.Caller(), ErrInvalidUserID)
	}
	return claims, nil
}
