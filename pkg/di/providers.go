package di

import (
	"github.com/3bit-techs/vvpctl/pkg/client/vvp"
	"github.com/3bit-techs/vvpctl/pkg/utils/timer"
	"github.com/samber/do/v2"
)

// Dependency providers.

// NewRuntime constructs the shared runtime container used by the root command
// and tests. It registers the timer and the API client factory; overrides run
// after the defaults and may replace them.
func NewRuntime(overrides ...Module) *Runtime {
	return New(append([]Module{provideTimer, provideClientFactory}, overrides...)...)
}

// WithClientFactory replaces the API client factory.
func WithClientFactory(factory vvp.Factory) Module {
	return func(i Injector) error {
		do.OverrideValue(i, factory)

		return nil
	}
}

// provideTimer registers the timer dependency with the injector.
func provideTimer(i Injector) error {
	do.Provide(i, func(Injector) (timer.Timer, error) {
		return timer.New(), nil
	})

	return nil
}

// provideClientFactory registers the HTTP client factory.
func provideClientFactory(i Injector) error {
	do.Provide(i, func(Injector) (vvp.Factory, error) {
		return vvp.DefaultFactory{}, nil
	})

	return nil
}
