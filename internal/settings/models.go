package settings

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cast"
)

// Keys an administrator may override. They are read once at startup.
const (
	KeyImageMigrationCron = "image_migration_cron"
	KeyRateLimitRPS       = "rate_limit_rps"
	KeyRateLimitBurst     = "rate_limit_burst"
	KeyImageMaxBytes      = "image_max_bytes"
)

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var validators = map[string]func(string) error{
	KeyImageMigrationCron: func(v string) error {
		if v == "" {
			return nil
		}
		_, err := cron.ParseStandard(v)
		return err
	},
	KeyRateLimitRPS: func(v string) error {
		f, err := cast.ToFloat64E(v)
		if err == nil && f < 0 {
			err = fmt.Errorf("must not be negative")
		}
		return err
	},
	KeyRateLimitBurst: func(v string) error {
		n, err := cast.ToIntE(v)
		if err == nil && n < 1 {
			err = fmt.Errorf("must be at least 1")
		}
		return err
	},
	KeyImageMaxBytes: func(v string) error {
		n, err := cast.ToInt64E(v)
		if err == nil && n <= 0 {
			err = fmt.Errorf("must be positive")
		}
		return err
	},
}

// Validate rejects unknown keys and values the config loader would ignore.
func Validate(key, value string) error {
	check, ok := validators[key]
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	if err := check(value); err != nil {
		return fmt.Errorf("%s: %v", key, err)
	}
	return nil
}
