package security

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vehicle/api/internal/config"
	"vehicle/api/internal/models"
)

var (
	ErrMissingToken      = errors.New("missing bearer token")
	ErrInvalidToken      = errors.New("invalid token")
	ErrNoVerificationKey = errors.New("no verification key configured")
)

// accessClaims covers the fields Keycloak puts in realm access tokens.
type accessClaims struct {
	jwt.RegisteredClaims
	PreferredUsername string `json:"preferred_username,omitempty"`
	RealmAccess       struct {
		Roles []string `json:"roles,omitempty"`
	} `json:"realm_access,omitempty"`
}

// Verifier validates bearer tokens signed either with an RSA realm key or a
// shared HMAC secret.
type Verifier struct {
	publicKey *rsa.PublicKey
	secret    []byte
	issuer    string
	audience  string
}

func NewVerifier(publicKey *rsa.PublicKey, secret string, issuer string, audience string) (*Verifier, error) {
	if publicKey == nil && secret == "" {
		return nil, ErrNoVerificationKey
	}
	return &Verifier{
		publicKey: publicKey,
		secret:    []byte(secret),
		issuer:    issuer,
		audience:  audience,
	}, nil
}

// LoadVerifier builds a Verifier from settings, reading the PEM public key
// file when one is configured.
func LoadVerifier(cfg config.Settings) (*Verifier, error) {
	var publicKey *rsa.PublicKey
	if cfg.AuthPublicKeyFile != "" {
		raw, err := os.ReadFile(cfg.AuthPublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read public key: %w", err)
		}
		publicKey, err = jwt.ParseRSAPublicKeyFromPEM(raw)
		if err != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}
	}
	return NewVerifier(publicKey, cfg.AuthSecretKey, cfg.AuthIssuer, cfg.AuthAudience)
}

func (v *Verifier) validMethods() []string {
	var methods []string
	if v.publicKey != nil {
		methods = append(methods, "RS256", "RS384", "RS512")
	}
	if len(v.secret) > 0 {
		methods = append(methods, "HS256", "HS384", "HS512")
	}
	return methods
}

func (v *Verifier) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodRSA:
		if v.publicKey == nil {
			return nil, ErrNoVerificationKey
		}
		return v.publicKey, nil
	case *jwt.SigningMethodHMAC:
		if len(v.secret) == 0 {
			return nil, ErrNoVerificationKey
		}
		return v.secret, nil
	default:
		return nil, errors.New("unexpected signing method")
	}
}

// Parse validates the token and returns the caller it identifies.
func (v *Verifier) Parse(tokenString string) (models.Principal, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return models.Principal{}, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(v.validMethods()),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keyFunc, opts...)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return models.Principal{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return models.Principal{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return models.Principal{
		Subject:  claims.Subject,
		Username: claims.PreferredUsername,
		Roles:    claims.RealmAccess.Roles,
	}, nil
}

// CreateAccessToken issues an HS256 token shaped like a Keycloak access token.
// It exists for local development against a secret-configured server.
func CreateAccessToken(p models.Principal, secret string, issuer string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrNoVerificationKey
	}
	now := time.Now().UTC()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		PreferredUsername: p.Username,
	}
	claims.RealmAccess.Roles = p.Roles

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
