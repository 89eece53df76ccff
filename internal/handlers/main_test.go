package handlers_test

import (
	"os"
	"strings"
	"testing"

	"auth-service/internal/config"
)

// TestMain loads the real YAML config (password-strength rules, message
// catalog) that the handlers read from package-level state, exactly as
// main.go does at boot. The env values only need to satisfy the boot-time
// validation rules; no database or queue is contacted in these tests.
func TestMain(m *testing.M) {
	os.Setenv("DB_HOST", "localhost")
	os.Setenv("DB_USER", "test")
	os.Setenv("DB_PASS", "test")
	os.Setenv("JWT_ACCESS_SECRET", strings.Repeat("a", 32))
	os.Setenv("JWT_REFRESH_SECRET", strings.Repeat("b", 32))

	// config.LoadConfig resolves config/*.yaml relative to the module root.
	if err := os.Chdir("../.."); err != nil {
		panic(err)
	}
	if err := config.LoadConfig(); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}
