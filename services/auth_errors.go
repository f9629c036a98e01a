package services

import (
	"errors"
	"fmt"

	"github.com/adarshgogate/BloodDonorApp/pkg"
)

// FailureKind names why a token or principal was rejected.
type FailureKind string

const (
	KindNone              FailureKind = ""
	KindMalformedToken    FailureKind = "MalformedToken"
	KindInvalidSignature  FailureKind = "InvalidSignature"
	KindExpiredToken      FailureKind = "ExpiredToken"
	KindInvalidToken      FailureKind = "InvalidToken"
	KindPrincipalNotFound FailureKind = "PrincipalNotFound"
	KindSubjectMismatch   FailureKind = "SubjectMismatch"
)

// Auth failures. Each wraps pkg.ErrUnauthorized so pkg.Error renders 401.
var (
	ErrMalformedToken    = fmt.Errorf("%w: malformed token", pkg.ErrUnauthorized)
	ErrInvalidSignature  = fmt.Errorf("%w: invalid signature", pkg.ErrUnauthorized)
	ErrExpiredToken      = fmt.Errorf("%w: token expired", pkg.ErrUnauthorized)
	ErrInvalidToken      = fmt.Errorf("%w: invalid token", pkg.ErrUnauthorized)
	ErrPrincipalNotFound = fmt.Errorf("%w: principal not found", pkg.ErrUnauthorized)
	ErrSubjectMismatch   = fmt.Errorf("%w: token subject does not match principal", pkg.ErrUnauthorized)
)

var kindSentinels = map[FailureKind]error{
	KindMalformedToken:    ErrMalformedToken,
	KindInvalidSignature:  ErrInvalidSignature,
	KindExpiredToken:      ErrExpiredToken,
	KindInvalidToken:      ErrInvalidToken,
	KindPrincipalNotFound: ErrPrincipalNotFound,
	KindSubjectMismatch:   ErrSubjectMismatch,
}

// TokenError is the result of a failed decode or validation.
//
//	claims, err := codec.Decode(raw)
//	switch services.KindOf(err) {
//	case services.KindExpiredToken: ...
//	}
type TokenError struct {
	Kind FailureKind
	// Cause is the underlying parser error, if any.
	Cause error
}

func (e *TokenError) Error() string {
	msg := string(e.Kind)
	if sentinel, ok := kindSentinels[e.Kind]; ok {
		msg = sentinel.Error()
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrExpiredToken) and friends work.
func (e *TokenError) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && target == sentinel
}

// Unwrap exposes the sentinel so errors.Is(err, pkg.ErrUnauthorized) holds.
func (e *TokenError) Unwrap() error {
	return kindSentinels[e.Kind]
}

func tokenError(kind FailureKind, cause error) *TokenError {
	return &TokenError{Kind: kind, Cause: cause}
}

// IsTokenFailure reports whether err belongs to the token failure taxonomy,
// as opposed to a store error or a refused account.
func IsTokenFailure(err error) bool {
	var te *TokenError
	if errors.As(err, &te) {
		return true
	}
	for _, sentinel := range kindSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// KindOf returns the failure kind carried by err, KindNone for nil and
// KindInvalidToken for errors outside the taxonomy.
func KindOf(err error) FailureKind {
	if err == nil {
		return KindNone
	}
	var te *TokenError
	if errors.As(err, &te) {
		return te.Kind
	}
	for kind, sentinel := range kindSentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindInvalidToken
}

// DiagnosticLabel is the X-Auth-Error value for a decode failure.
func DiagnosticLabel(kind FailureKind) string {
	switch kind {
	case KindExpiredToken:
		return "Token expired"
	case KindMalformedToken:
		return "Malformed token"
	case KindInvalidSignature:
		return "Invalid signature"
	default:
		return "Invalid token"
	}
}
