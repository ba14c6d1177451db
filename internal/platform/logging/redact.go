package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

var (
	// openAIKeyPattern matches OpenAI secret keys such as sk-... and sk-proj-....
	openAIKeyPattern = regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{8,}`)

	bearerPattern = regexp.MustCompile(`(?i)^bearer\s+.+$`)

	jwtPattern = regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`)
)

// DefaultRedactOptions redacts credentials that can reach the logs: the
// OpenAI key, Authorization headers and the Redis password.
func DefaultRedactOptions() []masq.Option {
	return []masq.Option{
		masq.WithFieldName("api_key"),
		masq.WithFieldName("apiKey"),
		masq.WithFieldName("APIKey"),
		masq.WithFieldName("authorization"),
		masq.WithFieldName("Authorization"),
		masq.WithFieldName("password"),
		masq.WithFieldName("Password"),
		masq.WithFieldName("token"),
		masq.WithFieldPrefix("secret"),

		masq.WithRegex(openAIKeyPattern),
		masq.WithRegex(bearerPattern),
		masq.WithRegex(jwtPattern),
	}
}

// NewReplaceAttr returns a slog ReplaceAttr func applying the default
// redaction plus opts.
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(DefaultRedactOptions(), opts...)...)
}
