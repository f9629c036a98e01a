// Package services holds the registry's business logic.
//
// Services sit between the HTTP handlers and the repositories. They never
// see an http.Request and never run SQL themselves: input arrives as domain
// models, storage goes through repository interfaces.
//
// The auth core lives here too:
//   - TokenCodec issues and decodes signed session tokens
//   - TokenValidator checks a token against a loaded principal
//   - PrincipalLoader resolves a username to a principal
package services

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adarshgogate/BloodDonorApp/models"
	"github.com/adarshgogate/BloodDonorApp/pkg"
)

// DefaultTokenTTL is used when the configured TTL is not positive.
const DefaultTokenTTL = 24 * time.Hour

// signingKeySize is the length of a generated HS256 key.
const signingKeySize = 32

func init() {
	// iat and exp carry millisecond precision (fractional NumericDate).
	jwt.TimePrecision = time.Millisecond
}

// reservedClaims cannot be set through extra claims.
var reservedClaims = map[string]bool{"sub": true, "iat": true, "exp": true}

// TokenCodec issues and decodes HS256 session tokens.
//
// The key is fixed for the codec's lifetime; replacing it (restarting with
// a different JWT_SECRET) invalidates every token issued before. The codec
// holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	key    []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenCodec returns a codec signing with key. A nil now means time.Now.
func NewTokenCodec(key []byte, ttl time.Duration, now func() time.Time) (*TokenCodec, error) {
	if len(key) == 0 {
		return nil, errors.New("token signing key must not be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if now == nil {
		now = time.Now
	}

	// Copy so the caller cannot mutate the key afterwards.
	k := make([]byte, len(key))
	copy(k, key)

	return &TokenCodec{
		key: k,
		ttl: ttl,
		now: now,
		// Time claims are checked in Decode: jwt rebuilds fractional dates
		// through float nanoseconds and can land 1ms short of the issued value.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// GenerateSigningKey returns a fresh random key for NewTokenCodec.
func GenerateSigningKey() ([]byte, error) {
	key := make([]byte, signingKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	return key, nil
}

// TTL returns the lifetime given to issued tokens.
func (c *TokenCodec) TTL() time.Duration { return c.ttl }

// Now returns the codec's current time.
func (c *TokenCodec) Now() time.Time { return c.now() }

// Issue signs a token for subject, valid from now for the codec's TTL.
// Extra claims are copied into the payload; sub, iat and exp are always
// the codec's own.
func (c *TokenCodec) Issue(subject string, extra map[string]any) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: token subject is required", pkg.ErrBadRequest)
	}

	now := c.now()
	claims := jwt.MapClaims{}
	for k, v := range extra {
		if reservedClaims[k] {
			continue
		}
		claims[k] = v
	}
	claims["sub"] = subject
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(c.ttl))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Decode parses and verifies raw. Failures are *TokenError values with
// kind MalformedToken, InvalidSignature, ExpiredToken or InvalidToken.
func (c *TokenCodec) Decode(raw string) (*models.TokenClaims, error) {
	token, err := c.parser.Parse(raw, func(t *jwt.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, tokenError(KindInvalidToken, errors.New("unexpected claims type"))
	}

	sub, err := mc.GetSubject()
	if err != nil || sub == "" {
		return nil, tokenError(KindInvalidToken, errors.New("token has no subject"))
	}
	iat, err := millisDate(mc, "iat")
	if err != nil {
		return nil, tokenError(KindInvalidToken, err)
	}
	exp, err := millisDate(mc, "exp")
	if err != nil {
		return nil, tokenError(KindInvalidToken, err)
	}
	if exp == nil {
		return nil, tokenError(KindInvalidToken, fmt.Errorf("%w: exp", jwt.ErrTokenRequiredClaimMissing))
	}
	if !c.now().Before(exp.Time) {
		return nil, tokenError(KindExpiredToken, jwt.ErrTokenExpired)
	}

	claims := &models.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  iat,
			ExpiresAt: exp,
		},
		Extra: map[string]any{},
	}
	for k, v := range mc {
		if !reservedClaims[k] {
			claims.Extra[k] = v
		}
	}
	return claims, nil
}

// millisDate reads a NumericDate claim rounded to the millisecond. A missing
// claim is (nil, nil).
func millisDate(mc jwt.MapClaims, name string) (*jwt.NumericDate, error) {
	v, ok := mc[name]
	if !ok {
		return nil, nil
	}

	var seconds float64
	switch n := v.(type) {
	case float64:
		seconds = n
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %s", jwt.ErrInvalidType, name)
		}
		seconds = f
	default:
		return nil, fmt.Errorf("%w: %s", jwt.ErrInvalidType, name)
	}
	return jwt.NewNumericDate(time.UnixMilli(int64(math.Round(seconds * 1000)))), nil
}

// classifyParseError maps jwt's error chain onto the failure taxonomy.
// Structure is checked first, then signature. Time claims never reach
// here; Decode checks them itself.
func classifyParseError(err error) *TokenError {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return tokenError(KindMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return tokenError(KindInvalidSignature, err)
	default:
		return tokenError(KindInvalidToken, err)
	}
}
