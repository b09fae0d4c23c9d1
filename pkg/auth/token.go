// Package auth verifies the HS256 bearer tokens issued by the identity
// service. Minting exists for local tooling and tests.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/soundstall-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
)

var signingMethod = jwt.SigningMethodHS256

// Verifier checks signature, issuer, expiry and (when configured) audience.
type Verifier struct {
	key    []byte
	parser *jwt.Parser
}

func NewVerifier(cfg config.JWTConfig) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &Verifier{key: []byte(cfg.Secret), parser: jwt.NewParser(opts...)}
}

// Verify returns the claims of a valid token. Every failure is Unauthorized
// except a missing secret, which is a deployment problem.
func (v *Verifier) Verify(raw string) (*Claims, error) {
	if len(v.key) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "jwt secret is not configured")
	}
	claims := &Claims{}
	if _, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, reason(err))
	}
	if claims.UserID() == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "token subject is not a user id")
	}
	return claims, nil
}

func reason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "token signature invalid"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
		return "token not issued for this service"
	}
	return "invalid token"
}

// Mint issues a signed token for payload valid from now for ttl.
func Mint(cfg config.JWTConfig, now time.Time, ttl time.Duration, payload Payload) (string, error) {
	switch {
	case cfg.Secret == "":
		return "", pkgerrors.New(pkgerrors.CodeConfiguration, "jwt secret is required")
	case cfg.Issuer == "":
		return "", pkgerrors.New(pkgerrors.CodeConfiguration, "jwt issuer is required")
	case ttl <= 0:
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "jwt ttl %s must be positive", ttl)
	case payload.UserID == uuid.Nil:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	jti := strings.TrimSpace(payload.JTI)
	if jti == "" {
		jti = uuid.NewString()
	}
	registered := jwt.RegisteredClaims{
		Issuer:    cfg.Issuer,
		Subject:   payload.UserID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        jti,
	}
	if cfg.Audience != "" {
		registered.Audience = jwt.ClaimStrings{cfg.Audience}
	}
	signed, err := jwt.NewWithClaims(signingMethod, Claims{
		Email:            payload.Email,
		Name:             payload.Name,
		RegisteredClaims: registered,
	}).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sign jwt")
	}
	return signed, nil
}
