package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

var (
	jwtPattern       = regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`)
	bearerPattern    = regexp.MustCompile(`(?i)^bearer\s+.+$`)
	basicAuthPattern = regexp.MustCompile(`(?i)^basic\s+.+$`)

	// Presigned upload fields. The signature and security token grant write
	// access to the asset bucket until they expire.
	amzSignaturePattern = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

// DefaultRedactOptions lists the attribute names and value shapes that are
// always masked.
func DefaultRedactOptions() []masq.Option {
	return []masq.Option{
		masq.WithFieldName("password"),
		masq.WithFieldName("secret"),
		masq.WithFieldName("token"),
		masq.WithFieldName("apiKey"),
		masq.WithFieldName("api_key"),
		masq.WithFieldName("accessToken"),
		masq.WithFieldName("access_token"),
		masq.WithFieldName("credential"),
		masq.WithFieldName("authorization"),
		masq.WithFieldName("Authorization"),
		masq.WithFieldName("auth"),
		masq.WithFieldName("bearer"),
		masq.WithFieldName("cookie"),
		masq.WithFieldName("privateKey"),
		masq.WithFieldName("secretKey"),
		masq.WithFieldName("signature"),
		masq.WithFieldName("securityToken"),
		masq.WithFieldName("policy"),
		masq.WithFieldName("X-Amz-Signature"),
		masq.WithFieldName("X-Amz-Security-Token"),

		masq.WithFieldPrefix("secret"),
		masq.WithFieldPrefix("private"),

		masq.WithRegex(jwtPattern),
		masq.WithRegex(bearerPattern),
		masq.WithRegex(basicAuthPattern),
		masq.WithRegex(amzSignaturePattern),
	}
}

// NewReplaceAttr returns a slog ReplaceAttr that applies DefaultRedactOptions
// plus opts.
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(DefaultRedactOptions(), opts...)...)
}

// secretOptions masks attributes whose value contains one of the literal
// secrets.
func secretOptions(secrets []string) []masq.Option {
	var opts []masq.Option
	for _, s := range secrets {
		if s == "" {
			continue
		}
		opts = append(opts, masq.WithRegex(regexp.MustCompile(regexp.QuoteMeta(s))))
	}

	return opts
}
