package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate reports fields under their koanf key, e.g. services.openai.base_url.
var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" {
			return strings.ToLower(f.Name)
		}

		return name
	})

	return v
}()

// Validate checks the struct tags, then the rules that span several fields.
// Every problem is reported at once so a bad deployment fails with the full
// list.
func (c *Config) Validate() error {
	var problems []string

	var fieldErrs validator.ValidationErrors
	if err := validate.Struct(c); err != nil {
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("config validation: %w", err)
		}

		for _, fe := range fieldErrs {
			problems = append(problems, describe(fe))
		}
	}

	problems = append(problems, c.crossFieldProblems()...)

	if len(problems) == 0 {
		return nil
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(problems, "\n  "))
}

func (c *Config) crossFieldProblems() []string {
	var problems []string

	if c.Client.Retry.MaxInterval > 0 && c.Client.Retry.MaxInterval < c.Client.Retry.InitialInterval {
		problems = append(problems, "client.retry.max_interval must not be shorter than client.retry.initial_interval")
	}

	if c.Cache.Redis.Enabled && c.Cache.Redis.SnapshotTTL > 0 && c.Cache.Redis.SnapshotTTL < c.Quotes.CacheTTL {
		problems = append(problems, "cache.redis.snapshot_ttl must be at least quotes.cache_ttl")
	}

	if c.App.Environment == "prod" && c.Log.Format == "pretty" {
		problems = append(problems, "log.format pretty is not allowed in prod")
	}

	return problems
}

// describe formats one field error.
func describe(fe validator.FieldError) string {
	field := fieldPath(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_if":
		return field + " is required when " + fe.Param()
	case "min":
		return field + " must be at least " + fe.Param()
	case "max":
		return field + " must be at most " + fe.Param()
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "url":
		return field + " must be a valid URL"
	default:
		return field + " failed validation: " + fe.Tag()
	}
}

// fieldPath drops the root struct name: "Config.server.port" becomes
// "server.port".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}

	return namespace
}
