package configmanager

import (
	"time"

	v1alpha1 "github.com/3bit-techs/vvpctl/pkg/apis/deployment/v1alpha1"
	"github.com/3bit-techs/vvpctl/pkg/client/netretry"
)

const (
	// DefaultServer is the platform address used when none is configured.
	DefaultServer = "http://localhost:8080"
	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 30 * time.Second
	// DefaultWaitTimeout bounds waiting for a deployment to be cancelled.
	DefaultWaitTimeout = 5 * time.Minute
	// DefaultLogLevel is the logrus level used when none is configured.
	DefaultLogLevel = "warn"
)

// Config holds the settings of one vvpctl invocation.
type Config struct {
	// Server is the base URL of the platform API.
	Server string `mapstructure:"server"`
	// Token is sent as a bearer token when set.
	Token string `mapstructure:"token"`
	// Namespace is used for documents without metadata.namespace.
	Namespace string `mapstructure:"namespace"`
	// Insecure skips TLS certificate verification.
	Insecure    bool            `mapstructure:"insecure"`
	Timeout     time.Duration   `mapstructure:"timeout"`
	Retry       netretry.Policy `mapstructure:"retry"`
	WaitTimeout time.Duration   `mapstructure:"waitTimeout"`
	// StateDir holds the last applied documents. Empty means ~/.vvpctl/state.
	StateDir string `mapstructure:"stateDir"`
	LogLevel string `mapstructure:"logLevel"`
}

// NewConfig returns a Config holding the defaults.
func NewConfig() *Config {
	return &Config{
		Server:      DefaultServer,
		Namespace:   v1alpha1.DefaultNamespace,
		Timeout:     DefaultTimeout,
		Retry:       netretry.DefaultPolicy(),
		WaitTimeout: DefaultWaitTimeout,
		LogLevel:    DefaultLogLevel,
	}
}

// RedactedToken returns the token with everything but the last four
// characters masked, for diagnostics.
func (c *Config) RedactedToken() string {
	const visible = 4

	switch {
	case c.Token == "":
		return ""
	case len(c.Token) <= visible:
		return "****"
	default:
		return "****" + c.Token[len(c.Token)-visible:]
	}
}
