package services

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adarshgogate/BloodDonorApp/models"
	"github.com/adarshgogate/BloodDonorApp/pkg"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCodec(t *testing.T, ttl time.Duration, clock *fakeClock) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(testKey, ttl, clock.Now)
	require.NoError(t, err)
	return codec
}

func alice() *models.Principal {
	return &models.Principal{Username: "alice", Role: models.RoleUser, IsActive: true}
}

// ─── Codec ───

func TestNewTokenCodec(t *testing.T) {
	_, err := NewTokenCodec(nil, time.Hour, nil)
	assert.Error(t, err)

	codec, err := NewTokenCodec(testKey, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, codec.TTL())
}

func TestGenerateSigningKey(t *testing.T) {
	a, err := GenerateSigningKey()
	require.NoError(t, err)
	b, err := GenerateSigningKey()
	require.NoError(t, err)

	assert.Len(t, a, signingKeySize)
	assert.NotEqual(t, a, b)
}

func TestIssueDecode_RoundTrip(t *testing.T) {
	clock := newFakeClock()

	for _, subject := range []string{"alice", "bob", "user.with.dots", "ünïcode"} {
		for _, ttl := range []time.Duration{time.Second, time.Hour, DefaultTokenTTL} {
			codec := newTestCodec(t, ttl, clock)

			token, err := codec.Issue(subject, nil)
			require.NoError(t, err)
			assert.Len(t, strings.Split(token, "."), 3)

			claims, err := codec.Decode(token)
			require.NoError(t, err)
			assert.Equal(t, subject, claims.Username())
			assert.True(t, clock.Now().Equal(claims.IssuedAt.Time))
			assert.True(t, clock.Now().Add(ttl).Equal(claims.ExpiresAt.Time))
		}
	}
}

func TestIssue_RequiresSubject(t *testing.T) {
	codec := newTestCodec(t, time.Hour, newFakeClock())

	_, err := codec.Issue("", nil)
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestIssue_ExtraClaimsCannotOverrideReserved(t *testing.T) {
	clock := newFakeClock()
	codec := newTestCodec(t, time.Hour, clock)

	token, err := codec.Issue("alice", map[string]any{
		"role": models.RoleAdmin,
		"sub":  "mallory",
		"exp":  float64(clock.Now().Add(100 * 365 * 24 * time.Hour).Unix()),
	})
	require.NoError(t, err)

	claims, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.True(t, clock.Now().Add(time.Hour).Equal(claims.ExpiresAt.Time))
	assert.Equal(t, map[string]any{"role": models.RoleAdmin}, claims.Extra)
}

func TestIssue_IsDeterministic(t *testing.T) {
	codec := newTestCodec(t, time.Hour, newFakeClock())

	a, err := codec.Issue("alice", map[string]any{"role": "ROLE_USER", "dept": "ops"})
	require.NoError(t, err)
	b, err := codec.Issue("alice", map[string]any{"dept": "ops", "role": "ROLE_USER"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestIssue_MillisecondTimestamps(t *testing.T) {
	clock := newFakeClock()
	codec := newTestCodec(t, 1500*time.Millisecond, clock)

	token, err := codec.Issue("alice", nil)
	require.NoError(t, err)

	payload, err := base64.RawURLEncoding.DecodeString(strings.Split(token, ".")[1])
	require.NoError(t, err)

	var raw map[string]json.Number
	dec := json.NewDecoder(strings.NewReader(string(payload)))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&raw))

	iat, err := raw["iat"].Float64()
	require.NoError(t, err)
	exp, err := raw["exp"].Float64()
	require.NoError(t, err)
	assert.InDelta(t, 1.5, exp-iat, 0.0005)
}

func TestDecode_FailureKinds(t *testing.T) {
	clock := newFakeClock()
	codec := newTestCodec(t, time.Hour, clock)
	good, err := codec.Issue("alice", nil)
	require.NoError(t, err)

	other, err := NewTokenCodec([]byte("another-key-another-key-another!"), time.Hour, clock.Now)
	require.NoError(t, err)
	foreign, err := other.Issue("alice", nil)
	require.NoError(t, err)

	parts := strings.Split(good, ".")
	forgedPayload := base64.RawURLEncoding.EncodeToString(
		[]byte(`{"exp":1893456000,"iat":1709294400,"sub":"mallory"}`))
	forged := parts[0] + "." + forgedPayload + "." + parts[2]

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "alice",
		"exp": jwt.NewNumericDate(clock.Now().Add(time.Hour)),
	}).SignedString(testKey)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice"}).SignedString(testKey)
	require.NoError(t, err)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": jwt.NewNumericDate(clock.Now().Add(time.Hour)),
	}).SignedString(testKey)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		kind  FailureKind
		is    error
	}{
		{"empty", "", KindMalformedToken, ErrMalformedToken},
		{"garbage", "not-a-token", KindMalformedToken, ErrMalformedToken},
		{"two segments", parts[0] + "." + parts[1], KindMalformedToken, ErrMalformedToken},
		{"foreign key", foreign, KindInvalidSignature, ErrInvalidSignature},
		{"tampered payload", forged, KindInvalidSignature, ErrInvalidSignature},
		{"other algorithm", hs512, KindInvalidSignature, ErrInvalidSignature},
		{"missing exp", noExp, KindInvalidToken, ErrInvalidToken},
		{"missing sub", noSub, KindInvalidToken, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := codec.Decode(tt.token)
			require.Error(t, err)
			assert.Nil(t, claims)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.ErrorIs(t, err, tt.is)
			assert.ErrorIs(t, err, pkg.ErrUnauthorized)

			var te *TokenError
			assert.True(t, errors.As(err, &te))
		})
	}
}

func TestDecode_Expired(t *testing.T) {
	clock := newFakeClock()
	codec := newTestCodec(t, time.Second, clock)

	token, err := codec.Issue("alice", nil)
	require.NoError(t, err)

	clock.Advance(999 * time.Millisecond)
	_, err = codec.Decode(token)
	require.NoError(t, err)

	// Expiry is inclusive: a token is dead at exactly iat+TTL.
	clock.Advance(time.Millisecond)
	_, err = codec.Decode(token)
	assert.Equal(t, KindExpiredToken, KindOf(err))
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestDecode_ExpiryExactAtEveryMillisecond(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for ms := 0; ms < 1000; ms++ {
		clock := &fakeClock{t: base.Add(time.Duration(ms) * time.Millisecond)}
		codec := newTestCodec(t, time.Second, clock)
		v := NewTokenValidator(codec)

		token, err := codec.Issue("alice", nil)
		require.NoError(t, err)

		claims, err := codec.Decode(token)
		require.NoError(t, err)
		require.True(t, clock.Now().Equal(claims.IssuedAt.Time), "iat at +%dms", ms)
		require.True(t, clock.Now().Add(time.Second).Equal(claims.ExpiresAt.Time), "exp at +%dms", ms)

		clock.Advance(999 * time.Millisecond)
		require.True(t, v.Validate(token, alice()), "valid 1ms before expiry at +%dms", ms)

		clock.Advance(time.Millisecond)
		err = v.Verify(token, alice())
		require.Equal(t, KindExpiredToken, KindOf(err), "expired at iat+TTL at +%dms", ms)
	}
}

func TestDecode_OffSecondClock(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 123_000_000, time.UTC)}
	codec := newTestCodec(t, time.Second, clock)

	token, err := codec.Issue("alice", nil)
	require.NoError(t, err)

	clock.Advance(999 * time.Millisecond)
	_, err = codec.Decode(token)
	require.NoError(t, err)

	clock.Advance(time.Millisecond)
	_, err = codec.Decode(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

// ─── Validator ───

func TestIsExpired(t *testing.T) {
	clock := newFakeClock()
	codec := newTestCodec(t, time.Minute, clock)
	v := NewTokenValidator(codec)

	token, err := codec.Issue("alice", nil)
	require.NoError(t, err)
	claims, err := codec.Decode(token)
	require.NoError(t, err)

	assert.False(t, v.IsExpired(claims))

	clock.Advance(time.Minute)
	assert.True(t, v.IsExpired(claims))

	assert.True(t, v.IsExpired(nil))
	assert.True(t, v.IsExpired(&models.TokenClaims{}))
}

func TestValidate_AliceScenario(t *testing.T) {
	clock := newFakeClock()
	codec := newTestCodec(t, 1000*time.Millisecond, clock)
	v := NewTokenValidator(codec)

	token, err := codec.Issue("alice", nil)
	require.NoError(t, err)

	assert.True(t, v.Validate(token, alice()))
	assert.NoError(t, v.Verify(token, alice()))

	clock.Advance(1001 * time.Millisecond)
	assert.False(t, v.Validate(token, alice()))
	assert.Equal(t, KindExpiredToken, KindOf(v.Verify(token, alice())))
}

func TestValidate_SubjectMismatch(t *testing.T) {
	codec := newTestCodec(t, time.Hour, newFakeClock())
	v := NewTokenValidator(codec)

	token, err := codec.Issue("alice", nil)
	require.NoError(t, err)

	bob := &models.Principal{Username: "bob", Role: models.RoleUser, IsActive: true}
	assert.False(t, v.Validate(token, bob))

	err = v.Verify(token, bob)
	assert.Equal(t, KindSubjectMismatch, KindOf(err))
	assert.ErrorIs(t, err, ErrSubjectMismatch)

	// Exact match only.
	assert.False(t, v.Validate(token, &models.Principal{Username: "Alice"}))
}

func TestValidate_NeverPanics(t *testing.T) {
	clock := newFakeClock()
	codec := newTestCodec(t, time.Hour, clock)
	v := NewTokenValidator(codec)

	good, err := codec.Issue("alice", nil)
	require.NoError(t, err)

	other, err := NewTokenCodec([]byte("a-completely-different-signing-k"), time.Hour, clock.Now)
	require.NoError(t, err)
	foreign, err := other.Issue("alice", nil)
	require.NoError(t, err)

	// Flip one byte in the middle of the payload segment.
	b := []byte(good)
	mid := strings.Index(good, ".") + 5
	if b[mid] == 'A' {
		b[mid] = 'B'
	} else {
		b[mid] = 'A'
	}
	tampered := string(b)

	for name, token := range map[string]string{
		"empty":     "",
		"foreign":   foreign,
		"tampered":  tampered,
		"truncated": good[:len(good)-7],
		"dots":      "..",
		"spaces":    "   ",
	} {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, v.Validate(token, alice()))
			})
		})
	}

	assert.False(t, v.Validate(good, nil))
	assert.Equal(t, KindPrincipalNotFound, KindOf(v.Verify(good, nil)))
}

// ─── Error taxonomy ───

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindInvalidToken, KindOf(errors.New("boom")))
	assert.Equal(t, KindSubjectMismatch, KindOf(ErrSubjectMismatch))
	assert.Equal(t, KindExpiredToken, KindOf(tokenError(KindExpiredToken, errors.New("cause"))))
}

func TestDiagnosticLabel(t *testing.T) {
	assert.Equal(t, "Token expired", DiagnosticLabel(KindExpiredToken))
	assert.Equal(t, "Malformed token", DiagnosticLabel(KindMalformedToken))
	assert.Equal(t, "Invalid signature", DiagnosticLabel(KindInvalidSignature))
	assert.Equal(t, "Invalid token", DiagnosticLabel(KindInvalidToken))
	assert.Equal(t, "Invalid token", DiagnosticLabel(KindSubjectMismatch))
}

func TestTokenError_Message(t *testing.T) {
	err := tokenError(KindExpiredToken, errors.New("exp in past"))
	assert.Equal(t, "unauthorized: token expired: exp in past", err.Error())
	assert.Equal(t, "unauthorized: token subject does not match principal", tokenError(KindSubjectMismatch, nil).Error())
}
