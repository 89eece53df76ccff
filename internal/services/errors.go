package services

import "errors"

var (
	// ErrInvalidCredentials covers login and registration failures. Lookup
	// misses and password mismatches are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailExists is returned when registering an already-taken email.
	ErrEmailExists = errors.New("email already exists")
	// ErrAccountBlocked is returned when a blocked account attempts to log in.
	ErrAccountBlocked = errors.New("account blocked")
	// ErrInvalidToken means the presented refresh token failed signature,
	// structure, or expiry verification. The store is never touched on this
	// path because nothing in the payload can be trusted.
	ErrInvalidToken = errors.New("invalid refresh token")
	// ErrMalformedToken means the signature verified but required claims
	// (subject, jti, fam) are missing.
	ErrMalformedToken = errors.New("malformed refresh token")
	// ErrTokenInvalidated means the record behind a verified token was
	// missing, consumed, revoked, expired, or owned by another user. The
	// whole family is revoked before this is returned.
	ErrTokenInvalidated = errors.New("refresh token invalidated")
	// ErrTokenReuseDetected means a verified token failed the fingerprint
	// check or lost the single-use race: evidence of replay or substitution.
	// The whole family is revoked before this is returned.
	ErrTokenReuseDetected = errors.New("refresh token reuse detected")
	// ErrTokenNotFound is the store's miss result for a jti lookup.
	ErrTokenNotFound = errors.New("refresh token not found")
	// ErrUserNotFound is the store's miss result for a user lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrStorageUnavailable wraps store failures. No retry happens here;
	// backoff belongs to the caller.
	ErrStorageUnavailable = errors.New("token storage unavailable")
)
