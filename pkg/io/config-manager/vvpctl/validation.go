package configmanager

import (
	"errors"
	"fmt"
	"net/url"

	v1alpha1 "github.com/3bit-techs/vvpctl/pkg/apis/deployment/v1alpha1"
	"github.com/3bit-techs/vvpctl/pkg/utils/notify"
	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidServer is returned when the server is not an absolute http(s) URL.
	ErrInvalidServer = errors.New("server must be an absolute http or https URL")
	// ErrInvalidTimeout is returned for non-positive timeouts.
	ErrInvalidTimeout = errors.New("timeout must be positive")
)

// ValidationError summarizes every problem found in a configuration.
type ValidationError struct {
	Errs []error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration is invalid: %d error(s) found", len(e.Errs))
}

func (e *ValidationError) Unwrap() []error {
	return e.Errs
}

// Validate checks a configuration.
func Validate(config *Config) error {
	var errs []error

	server, err := url.Parse(config.Server)
	if err != nil || (server.Scheme != "http" && server.Scheme != "https") || server.Host == "" {
		errs = append(errs, fmt.Errorf("server %q: %w", config.Server, ErrInvalidServer))
	}

	err = v1alpha1.ValidateName(config.Namespace)
	if err != nil {
		errs = append(errs, fmt.Errorf("namespace: %w", err))
	}

	if config.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout %s: %w", config.Timeout, ErrInvalidTimeout))
	}

	if config.WaitTimeout <= 0 {
		errs = append(errs, fmt.Errorf("waitTimeout %s: %w", config.WaitTimeout, ErrInvalidTimeout))
	}

	err = config.Retry.Validate()
	if err != nil {
		errs = append(errs, fmt.Errorf("retry: %w", err))
	}

	_, err = logrus.ParseLevel(config.LogLevel)
	if err != nil {
		errs = append(errs, fmt.Errorf("logLevel: %w", err))
	}

	if len(errs) > 0 {
		return &ValidationError{Errs: errs}
	}

	return nil
}

func (m *ConfigManager) validate(config *Config, silent bool) error {
	err := Validate(config)
	if err == nil {
		return nil
	}

	var validationErr *ValidationError
	if !silent && errors.As(err, &validationErr) {
		for _, problem := range validationErr.Errs {
			notify.Errorf(m.Writer, "%v", problem)
		}
	}

	return err
}
