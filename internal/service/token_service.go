package service

import (
	"errors"
	"fmt"
	"time"

	"palma-lending/internal/core/domain"
	"palma-lending/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
)

// accountClaims binds a bearer token to one ledger account.
type accountClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTTokenService issues and checks HS256 bearer tokens whose subject is an
// account address.
type JWTTokenService struct {
	secret []byte
	expiry time.Duration
	issuer string
	parser *jwt.Parser
}

func NewJWTTokenService(secret string, expiry time.Duration, issuer string) *JWTTokenService {
	return &JWTTokenService{
		secret: []byte(secret),
		expiry: expiry,
		issuer: issuer,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
		),
	}
}

// Generate signs a token for account with the given role.
func (s *JWTTokenService) Generate(account domain.Account, role string) (string, time.Time, error) {
	if role != ports.RoleUser && role != ports.RoleAdmin {
		return "", time.Time{}, fmt.Errorf("unknown role %q", role)
	}

	now := time.Now()
	expiresAt := now.Add(s.expiry)
	claims := accountClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.Hex(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate verifies signature, issuer and expiry and resolves the account.
// A token without a role claim acts as a plain user.
func (s *JWTTokenService) Validate(tokenString string) (*ports.TokenClaims, error) {
	var claims accountClaims
	_, err := s.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	if claims.Subject == "" {
		return nil, errors.New("missing subject claim")
	}
	account, ok := domain.ParseAddress(claims.Subject)
	if !ok {
		return nil, fmt.Errorf("invalid account in token: %q", claims.Subject)
	}

	role := claims.Role
	if role == "" {
		role = ports.RoleUser
	}
	return &ports.TokenClaims{Account: account, Role: role}, nil
}
