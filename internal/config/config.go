package config

import (
	"fmt"
	"os"
	"strings"

	"auth-service/internal/constants"
	"auth-service/pkg/utils"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type TokenConfig struct {
	Expiry string `yaml:"expiry"`
}

type AuthConfig struct {
	Token struct {
		Access  TokenConfig `yaml:"access"`
		Refresh TokenConfig `yaml:"refresh"`
	} `yaml:"token"`
	PasswordStrength struct {
		MinLength        int  `yaml:"min_length"`
		MaxLength        int  `yaml:"max_length"`
		RequireUppercase bool `yaml:"require_uppercase"`
		RequireLowercase bool `yaml:"require_lowercase"`
		RequireNumbers   bool `yaml:"require_numbers"`
		RequireSpecial   bool `yaml:"require_special"`
	} `yaml:"password_strength"`
}

type MessagesConfig struct {
	Auth struct {
		Success struct {
			Registration string `yaml:"registration"`
			Login        string `yaml:"login"`
			Refresh      string `yaml:"refresh"`
			Logout       string `yaml:"logout"`
			LogoutAll    string `yaml:"logout_all"`
		} `yaml:"success"`
		Error struct {
			InvalidCredentials string `yaml:"invalid_credentials"`
			InvalidToken       string `yaml:"invalid_token"`
			MalformedToken     string `yaml:"malformed_token"`
			TokenInvalidated   string `yaml:"token_invalidated"`
			TokenReuseDetected string `yaml:"token_reuse_detected"`
			AccountBlocked     string `yaml:"account_blocked"`
			EmailExists        string `yaml:"email_exists"`
			TokenRequired      string `yaml:"token_required"`
		} `yaml:"error"`
	} `yaml:"auth"`
	Validation struct {
		Error struct {
			InvalidRequest   string `yaml:"invalid_request"`
			PasswordStrength struct {
				MinLength        string `yaml:"min_length"`
				MaxLength        string `yaml:"max_length"`
				RequireUppercase string `yaml:"require_uppercase"`
				RequireLowercase string `yaml:"require_lowercase"`
				RequireNumbers   string `yaml:"require_numbers"`
				RequireSpecial   string `yaml:"require_special"`
			} `yaml:"password_strength"`
		} `yaml:"error"`
	} `yaml:"validation"`
	Server struct {
		Error struct {
			Internal string `yaml:"internal"`
			Database string `yaml:"database"`
		} `yaml:"error"`
	} `yaml:"server"`
}

var (
	Auth     AuthConfig
	Messages MessagesConfig
)

// LoadConfig loads all configuration files
func LoadConfig() error {
	if err := godotenv.Load(); err != nil {
		if utils.GetEnv("GO_ENV") != "production" {
			utils.LogWarn("config", ".env file not found")
		}
	}

	if err := validateEnv(); err != nil {
		return err
	}

	// Load auth config
	authFile, err := os.ReadFile("config/auth.yaml")
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(authFile, &Auth); err != nil {
		return err
	}

	// Load messages config
	messagesFile, err := os.ReadFile("config/messages.yaml")
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(messagesFile, &Messages); err != nil {
		return err
	}

	return nil
}

// validateEnv applies the boot-time rule table, filling defaults where they
// exist and rejecting startup when a required variable is missing.
func validateEnv() error {
	var errs []string
	for _, rule := range constants.EnvValidationRules {
		value := utils.GetEnv(rule.Variable)
		if value == "" && rule.Default != "" {
			value = rule.Default
			os.Setenv(rule.Variable, value)
		}
		if !rule.Rule(value) {
			errs = append(errs, rule.Message)
		}
	}

	// The two signing secrets must be independent.
	if utils.GetEnv("JWT_ACCESS_SECRET") != "" &&
		utils.GetEnv("JWT_ACCESS_SECRET") == utils.GetEnv("JWT_REFRESH_SECRET") {
		errs = append(errs, "JWT access and refresh secrets must differ")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
