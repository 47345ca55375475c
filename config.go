package auth

import (
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	goerrors "github.com/goliatone/go-errors"
)

// Baked-in fallbacks, kept for compatibility with existing deployments.
// The default secret is a documented insecure default: any
// security-reviewed deployment must set JWT_SECRET.
const (
	DefaultSecret = "garden_tracker_secret_token"
	DefaultExpiry = "7d"
)

// Config holds the options the auth core consumes
type Config struct {
	Secret      string `env:"JWT_SECRET" envDefault:"garden_tracker_secret_token"`
	Expiry      string `env:"JWT_EXPIRY" envDefault:"7d"`
	Port        string `env:"PORT" envDefault:"5000"`
	DatabaseDSN string `env:"DATABASE_DSN"`
}

// LoadConfig reads configuration from the environment, applying the
// baked-in defaults for anything unset
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse environment configuration")
	}

	if _, err := ParseExpiry(cfg.Expiry); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// SigningKey returns the signing secret as key material
func (c Config) SigningKey() []byte {
	return []byte(c.Secret)
}

// UsesDefaultSecret reports whether the insecure fallback secret is
// active; callers should log a warning when it is
func (c Config) UsesDefaultSecret() bool {
	return c.Secret == DefaultSecret
}

// TokenTTL returns the configured expiry as a duration. Config values
// are validated at load time, so an unparsable value here falls back to
// the default expiry rather than panicking.
func (c Config) TokenTTL() time.Duration {
	if d, err := ParseExpiry(c.Expiry); err == nil {
		return d
	}
	d, _ := ParseExpiry(DefaultExpiry)
	return d
}

// ParseExpiry parses an expiry duration string. It accepts everything
// time.ParseDuration does plus a day suffix ("7d"), which is the format
// existing configuration uses.
func ParseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, goerrors.New("expiry must not be empty", goerrors.CategoryBadInput)
	}

	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, goerrors.New("invalid day count in expiry: "+s, goerrors.CategoryBadInput)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid expiry duration: "+s)
	}

	return d, nil
}
