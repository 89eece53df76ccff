package constants

import "time"

const (
	// BearerScheme is the Authorization header scheme for access tokens.
	BearerScheme = "Bearer"

	// FingerprintCost is the bcrypt cost used when hashing refresh-token
	// fingerprints. Matches the cost used for password storage.
	FingerprintCost = 12

	// DefaultAccessTokenTTL applies when config/auth.yaml carries no access
	// expiry or an unparsable one.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL applies when config/auth.yaml carries no refresh
	// expiry or an unparsable one.
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)
