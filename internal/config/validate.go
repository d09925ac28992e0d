package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if c.Auth.AdminKeyHash != "" && !strings.HasPrefix(c.Auth.AdminKeyHash, "$2") {
		return fmt.Errorf("auth.admin_key_hash must be a bcrypt hash")
	}

	if err := c.Import.validate(); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	return nil
}

func (i *ImportConfig) validate() error {
	if i.MaxRows <= 0 {
		return fmt.Errorf("max_rows must be > 0 (got %d)", i.MaxRows)
	}
	if i.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be > 0 (got %d)", i.MaxUploadBytes)
	}
	return nil
}
