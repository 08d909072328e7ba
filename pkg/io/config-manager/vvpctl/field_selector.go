package configmanager

import (
	"github.com/3bit-techs/vvpctl/pkg/client/netretry"
)

// FieldSelector binds a Config field to a viper key and a command-line flag.
type FieldSelector[T any] struct {
	Selector     func(*T) any // Function that returns a pointer to the field
	Key          string       // Viper key, also used to derive the environment variable
	Flag         string       // Flag name; empty means the field has no flag
	Shorthand    string       // Optional one-letter flag shorthand
	Description  string       // Human-readable description for CLI flags
	DefaultValue any          // Default value for the field
}

// ServerFieldSelector selects the platform address.
func ServerFieldSelector() FieldSelector[Config] {
	return FieldSelector[Config]{
		Selector:     func(c *Config) any { return &c.Server },
		Key:          "server",
		Flag:         "server",
		Shorthand:    "s",
		Description:  "Ververica Platform API address",
		DefaultValue: DefaultServer,
	}
}

// TokenFieldSelector selects the API token.
func TokenFieldSelector() FieldSelector[Config] {
	return FieldSelector[Config]{
		Selector:     func(c *Config) any { return &c.Token },
		Key:          "token",
		Flag:         "token",
		Description:  "API token sent as bearer token",
		DefaultValue: "",
	}
}

// NamespaceFieldSelector selects the default namespace.
func NamespaceFieldSelector() FieldSelector[Config] {
	return FieldSelector[Config]{
		Selector:     func(c *Config) any { return &c.Namespace },
		Key:          "namespace",
		Flag:         "namespace",
		Shorthand:    "n",
		Description:  "Namespace for documents that do not set metadata.namespace",
		DefaultValue: "default",
	}
}

// InsecureFieldSelector selects TLS verification.
func InsecureFieldSelector() FieldSelector[Config] {
	return FieldSelector[Config]{
		Selector:     func(c *Config) any { return &c.Insecure },
		Key:          "insecure",
		Flag:         "insecure",
		Description:  "Skip TLS certificate verification",
		DefaultValue: false,
	}
}

// TimeoutFieldSelector selects the per-request timeout.
func TimeoutFieldSelector() FieldSelector[Config] {
	return FieldSelector[Config]{
		Selector:     func(c *Config) any { return &c.Timeout },
		Key:          "timeout",
		Flag:         "timeout",
		Description:  "Timeout of a single API request",
		DefaultValue: DefaultTimeout,
	}
}

// LogLevelFieldSelector selects the diagnostic log level.
func LogLevelFieldSelector() FieldSelector[Config] {
	return FieldSelector[Config]{
		Selector:     func(c *Config) any { return &c.LogLevel },
		Key:          "logLevel",
		Flag:         "log-level",
		Description:  "Diagnostic log level (trace, debug, info, warn, error)",
		DefaultValue: DefaultLogLevel,
	}
}

// WaitTimeoutFieldSelector selects how long delete waits for cancellation.
func WaitTimeoutFieldSelector() FieldSelector[Config] {
	return FieldSelector[Config]{
		Selector:     func(c *Config) any { return &c.WaitTimeout },
		Key:          "waitTimeout",
		Flag:         "wait-timeout",
		Description:  "How long delete waits for a deployment to be cancelled",
		DefaultValue: DefaultWaitTimeout,
	}
}

// GlobalFieldSelectors returns the selectors exposed as persistent flags
// on the root command.
func GlobalFieldSelectors() []FieldSelector[Config] {
	return []FieldSelector[Config]{
		ServerFieldSelector(),
		TokenFieldSelector(),
		NamespaceFieldSelector(),
		InsecureFieldSelector(),
		TimeoutFieldSelector(),
		LogLevelFieldSelector(),
	}
}

// fileOnlyFieldSelectors returns settings without a global flag.
func fileOnlyFieldSelectors() []FieldSelector[Config] {
	policy := netretry.DefaultPolicy()

	return []FieldSelector[Config]{
		{
			Selector:     func(c *Config) any { return &c.Retry.MaxAttempts },
			Key:          "retry.maxAttempts",
			DefaultValue: policy.MaxAttempts,
		},
		{
			Selector:     func(c *Config) any { return &c.Retry.BaseWait },
			Key:          "retry.baseWait",
			DefaultValue: policy.BaseWait,
		},
		{
			Selector:     func(c *Config) any { return &c.Retry.MaxWait },
			Key:          "retry.maxWait",
			DefaultValue: policy.MaxWait,
		},
		{Selector: func(c *Config) any { return &c.StateDir }, Key: "stateDir", DefaultValue: ""},
		WaitTimeoutFieldSelector(),
	}
}
