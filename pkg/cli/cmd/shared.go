package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	v1alpha1 "github.com/3bit-techs/vvpctl/pkg/apis/deployment/v1alpha1"
	"github.com/3bit-techs/vvpctl/pkg/client/vvp"
	"github.com/3bit-techs/vvpctl/pkg/di"
	configmanagerinterface "github.com/3bit-techs/vvpctl/pkg/io/config-manager"
	configmanager "github.com/3bit-techs/vvpctl/pkg/io/config-manager/vvpctl"
	"github.com/3bit-techs/vvpctl/pkg/svc/diff"
	"github.com/3bit-techs/vvpctl/pkg/svc/loader"
	"github.com/3bit-techs/vvpctl/pkg/svc/reconciler"
	"github.com/3bit-techs/vvpctl/pkg/svc/state"
	"github.com/3bit-techs/vvpctl/pkg/utils/logging"
	"github.com/3bit-techs/vvpctl/pkg/utils/timer"
	fcolor "github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// FilenameFlagName selects the documents to read.
const FilenameFlagName = "filename"

// ErrInvalidIdentity is returned for a malformed NAME argument.
var ErrInvalidIdentity = errors.New("expected NAME or NAMESPACE/NAME")

// app is shared by all subcommands of one root command.
type app struct {
	runtime *di.Runtime
	config  *configmanager.ConfigManager
	version string
}

// session holds what a command needs to talk to the platform.
type session struct {
	config *configmanager.Config
	logger *logrus.Logger
	client vvp.Client
}

// session loads the configuration and creates the API client. A nil timer
// loads the configuration silently.
func (a *app) session(cmd *cobra.Command, injector di.Injector, tmr timer.Timer) (*session, error) {
	config, err := a.config.Load(configmanagerinterface.LoadOptions{Timer: tmr, Silent: tmr == nil})
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(cmd.ErrOrStderr(), config.LogLevel)
	if err != nil {
		return nil, err
	}

	err = logging.ConfigureStandard(cmd.ErrOrStderr(), config.LogLevel)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"server":    config.Server,
		"namespace": config.Namespace,
		"token":     config.RedactedToken(),
		"config":    a.config.ConfigFileUsed(),
	}).Debug("configuration loaded")

	factory, err := di.ResolveClientFactory(injector)
	if err != nil {
		return nil, err
	}

	client, err := factory.Create(vvp.Options{
		Server:    config.Server,
		Token:     config.Token,
		Insecure:  config.Insecure,
		Timeout:   config.Timeout,
		Retry:     config.Retry,
		UserAgent: "vvpctl/" + a.version,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}

	return &session{config: config, logger: logger, client: client}, nil
}

// load reads the documents at path, "-" meaning standard input.
func (s *session) load(cmd *cobra.Command, path string) ([]*loader.Document, error) {
	return loader.New(
		loader.WithDefaultNamespace(s.config.Namespace),
		loader.WithStdin(cmd.InOrStdin()),
		loader.WithLogger(s.logger),
	).Load(path)
}

func (s *session) reconciler(opts ...reconciler.Option) *reconciler.Reconciler {
	return reconciler.New(s.client, append([]reconciler.Option{
		reconciler.WithStore(state.NewStore(s.config.StateDir)),
		reconciler.WithLogger(s.logger),
		reconciler.WithWaitTimeout(s.config.WaitTimeout),
	}, opts...)...)
}

// identity parses NAME or NAMESPACE/NAME.
func (s *session) identity(arg string) (v1alpha1.Identity, error) {
	namespace, name, found := strings.Cut(arg, "/")
	if !found {
		namespace, name = s.config.Namespace, arg
	}

	id := v1alpha1.Identity{Namespace: namespace, Name: name}

	err := id.Validate()
	if err != nil {
		return v1alpha1.Identity{}, fmt.Errorf("%w: %q: %w", ErrInvalidIdentity, arg, err)
	}

	return id, nil
}

// renderOptions returns diff rendering options for out. A zero width wraps
// at the terminal width when out is a terminal and disables wrapping otherwise.
func renderOptions(out io.Writer, width uint) diff.RenderOptions {
	if width == 0 {
		width = terminalWidth(out)
	}

	return diff.RenderOptions{Color: colorEnabled(), Width: width}
}

func terminalWidth(out io.Writer) uint {
	file, ok := out.(*os.File)
	if !ok {
		return 0
	}

	fd := int(file.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}

	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return 0
	}

	return uint(width)
}

// colorEnabled reports whether output may contain ANSI colors.
func colorEnabled() bool {
	return !fcolor.NoColor
}

// leafErrors flattens errors joined by errors.Join.
func leafErrors(err error) []error {
	if err == nil {
		return nil
	}

	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []error{err}
	}

	var leaves []error
	for _, child := range joined.Unwrap() {
		leaves = append(leaves, leafErrors(child)...)
	}

	return leaves
}
