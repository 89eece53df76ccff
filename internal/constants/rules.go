package constants

// EnvRule validates a single environment variable at boot.
type EnvRule struct {
	Variable string
	Default  string
	Rule     func(value string) bool
	Message  string
}

var EnvValidationRules = []EnvRule{
	// Server validation
	{
		Variable: "PORT",
		Default:  "3001",
		Rule:     func(v string) bool { return v != "" },
		Message:  "server port is required",
	},

	// Database validation
	{
		Variable: "DB_HOST",
		Rule:     func(v string) bool { return v != "" },
		Message:  "database host is required",
	},
	{
		Variable: "DB_PORT",
		Default:  "5432",
		Rule:     func(v string) bool { return v != "" },
		Message:  "database port is required",
	},
	{
		Variable: "DB_USER",
		Rule:     func(v string) bool { return v != "" },
		Message:  "database user is required",
	},
	{
		Variable: "DB_PASS",
		Rule:     func(v string) bool { return v != "" },
		Message:  "database password is required",
	},
	{
		Variable: "DB_NAME",
		Default:  "auth",
		Rule:     func(v string) bool { return v != "" },
		Message:  "database name is required",
	},

	// JWT validation. Access and refresh tokens are signed with independent
	// secrets; the two must never share key material.
	{
		Variable: "JWT_ACCESS_SECRET",
		Rule:     func(v string) bool { return len(v) >= 32 },
		Message:  "JWT access secret is required and must be at least 32 characters long",
	},
	{
		Variable: "JWT_REFRESH_SECRET",
		Rule:     func(v string) bool { return len(v) >= 32 },
		Message:  "JWT refresh secret is required and must be at least 32 characters long",
	},
}
