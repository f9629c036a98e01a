package services

import (
	"github.com/adarshgogate/BloodDonorApp/models"
)

// TokenValidator checks a raw token against a loaded principal. It reads
// time from the codec's clock so both always agree on "now".
type TokenValidator struct {
	codec *TokenCodec
}

// NewTokenValidator returns a validator backed by codec.
func NewTokenValidator(codec *TokenCodec) *TokenValidator {
	return &TokenValidator{codec: codec}
}

// IsExpired reports whether claims expire at or before the current time.
// Claims without an expiry count as expired.
func (v *TokenValidator) IsExpired(claims *models.TokenClaims) bool {
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}
	return !claims.ExpiresAt.Time.After(v.codec.Now())
}

// Verify decodes raw and checks it belongs to principal and has not
// expired. The error is a *TokenError; use KindOf to tell kinds apart.
func (v *TokenValidator) Verify(raw string, principal *models.Principal) error {
	if principal == nil {
		return tokenError(KindPrincipalNotFound, nil)
	}

	claims, err := v.codec.Decode(raw)
	if err != nil {
		return err
	}
	if claims.Subject != principal.Username {
		return tokenError(KindSubjectMismatch, nil)
	}
	if v.IsExpired(claims) {
		return tokenError(KindExpiredToken, nil)
	}
	return nil
}

// Validate is Verify collapsed to a bool. It never panics: a bad token
// means "not valid", nothing more.
func (v *TokenValidator) Validate(raw string, principal *models.Principal) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return v.Verify(raw, principal) == nil
}
