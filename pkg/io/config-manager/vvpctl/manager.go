package configmanager

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	configmanagerinterface "github.com/3bit-techs/vvpctl/pkg/io/config-manager"
	"github.com/3bit-techs/vvpctl/pkg/envvar"
	"github.com/3bit-techs/vvpctl/pkg/svc/state"
	"github.com/3bit-techs/vvpctl/pkg/utils/notify"
	"github.com/3bit-techs/vvpctl/pkg/utils/timer"
	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/jinzhu/copier"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment variable read by vvpctl.
	EnvPrefix = "VVPCTL"
	// ConfigName is the config file name without extension.
	ConfigName = "vvpctl"
	// ConfigFlag names the flag selecting an explicit config file.
	ConfigFlag = "config"
)

// ErrUnsupportedFieldType is returned when a field selector points at a type
// that cannot be exposed as a flag.
var ErrUnsupportedFieldType = errors.New("unsupported field type for flag")

// ConfigManager loads a Config through viper.
type ConfigManager struct {
	Viper *viper.Viper
	// Config is the loaded configuration.
	Config *Config
	// ConfigFile, when set, is read instead of searching for vvpctl.*.
	ConfigFile string
	// Writer receives progress notifications.
	Writer io.Writer

	configLoaded    bool
	configFileFound bool
}

var _ configmanagerinterface.ConfigManager[Config] = (*ConfigManager)(nil)

// NewConfigManager creates a manager writing notifications to writer.
func NewConfigManager(writer io.Writer) *ConfigManager {
	return &ConfigManager{
		Viper:  InitializeViper(),
		Config: NewConfig(),
		Writer: writer,
	}
}

// InitializeViper returns a viper instance with defaults, search paths and
// environment bindings for every setting.
func InitializeViper() *viper.Viper {
	viperInstance := viper.New()
	viperInstance.SetConfigName(ConfigName)
	viperInstance.AddConfigPath(".")
	viperInstance.AddConfigPath(filepath.Join("$HOME", "."+ConfigName))

	for _, selector := range append(GlobalFieldSelectors(), fileOnlyFieldSelectors()...) {
		viperInstance.SetDefault(selector.Key, selector.DefaultValue)
		_ = viperInstance.BindEnv(selector.Key, EnvVarName(selector.Key))
	}

	return viperInstance
}

// EnvVarName returns the environment variable for a viper key:
// "retry.maxAttempts" becomes "VVPCTL_RETRY_MAX_ATTEMPTS".
func EnvVarName(key string) string {
	var builder strings.Builder

	builder.WriteString(EnvPrefix)
	builder.WriteByte('_')

	for i, r := range key {
		switch {
		case r == '.' || r == '-':
			builder.WriteByte('_')
		case unicode.IsUpper(r) && i > 0:
			builder.WriteByte('_')
			builder.WriteRune(r)
		default:
			builder.WriteRune(unicode.ToUpper(r))
		}
	}

	return builder.String()
}

// AddPersistentFlags registers the global flags on cmd and binds them.
func (m *ConfigManager) AddPersistentFlags(cmd *cobra.Command) error {
	flags := cmd.PersistentFlags()
	flags.StringVar(&m.ConfigFile, ConfigFlag, "", "Config file (default vvpctl.yaml in . or ~/.vvpctl)")

	return m.bindFlags(flags, GlobalFieldSelectors())
}

// AddFlagsFromFields registers local flags on cmd for selectors and binds them.
func (m *ConfigManager) AddFlagsFromFields(cmd *cobra.Command, selectors ...FieldSelector[Config]) error {
	return m.bindFlags(cmd.Flags(), selectors)
}

func (m *ConfigManager) bindFlags(flags *pflag.FlagSet, selectors []FieldSelector[Config]) error {
	for _, selector := range selectors {
		if selector.Flag == "" {
			continue
		}

		switch ptr := selector.Selector(NewConfig()).(type) {
		case *string:
			value, _ := selector.DefaultValue.(string)
			flags.StringP(selector.Flag, selector.Shorthand, value, selector.Description)
		case *bool:
			value, _ := selector.DefaultValue.(bool)
			flags.BoolP(selector.Flag, selector.Shorthand, value, selector.Description)
		case *time.Duration:
			value, _ := selector.DefaultValue.(time.Duration)
			flags.DurationP(selector.Flag, selector.Shorthand, value, selector.Description)
		case *int:
			value, _ := selector.DefaultValue.(int)
			flags.IntP(selector.Flag, selector.Shorthand, value, selector.Description)
		default:
			return fmt.Errorf("%w: %s is %T", ErrUnsupportedFieldType, selector.Key, ptr)
		}

		err := m.Viper.BindPFlag(selector.Key, flags.Lookup(selector.Flag))
		if err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", selector.Flag, err)
		}
	}

	return nil
}

// Load loads the configuration with the specified options.
// Configuration priority: defaults < config file < environment variables < flags.
func (m *ConfigManager) Load(opts configmanagerinterface.LoadOptions) (*Config, error) {
	if m.configLoaded {
		return m.Config, nil
	}

	if !opts.Silent {
		notify.Titlef(m.Writer, "⏳", "Load config...")
	}

	err := m.readConfig(opts.Silent)
	if err != nil {
		return nil, err
	}

	loaded, err := m.unmarshal()
	if err != nil {
		return nil, err
	}

	err = m.validate(loaded, opts.Silent)
	if err != nil {
		return nil, err
	}

	m.Config = loaded
	m.configLoaded = true

	if !opts.Silent {
		notify.WriteMessage(notify.Message{
			Type:    notify.SuccessType,
			Content: "config loaded",
			Timer:   opts.Timer,
			Writer:  m.Writer,
		})
	}

	return m.Config, nil
}

// LoadConfig loads the configuration with notifications.
func (m *ConfigManager) LoadConfig(tmr timer.Timer) (*Config, error) {
	return m.Load(configmanagerinterface.LoadOptions{Timer: tmr})
}

// LoadConfigSilent loads the configuration without notifications.
func (m *ConfigManager) LoadConfigSilent() (*Config, error) {
	return m.Load(configmanagerinterface.LoadOptions{Silent: true})
}

// ConfigFileUsed returns the config file that was read, if any.
func (m *ConfigManager) ConfigFileUsed() string {
	if !m.configFileFound {
		return ""
	}

	return m.Viper.ConfigFileUsed()
}

func (m *ConfigManager) readConfig(silent bool) error {
	if m.ConfigFile != "" {
		m.Viper.SetConfigFile(m.ConfigFile)
	}

	err := m.Viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}

		if !silent {
			notify.Activityf(m.Writer, "using default config")
		}

		return nil
	}

	m.configFileFound = true

	if !silent {
		notify.Activityf(m.Writer, "'%s' found", m.Viper.ConfigFileUsed())
	}

	return nil
}

func (m *ConfigManager) unmarshal() (*Config, error) {
	decoded := &Config{}

	err := m.Viper.Unmarshal(decoded, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// settings explicitly set to an empty value fall back to the defaults
	config := NewConfig()

	err = copier.CopyWithOption(config, decoded, copier.Option{IgnoreEmpty: true, DeepCopy: true})
	if err != nil {
		return nil, fmt.Errorf("failed to apply configuration defaults: %w", err)
	}

	config.Insecure = decoded.Insecure
	config.Token = decoded.Token

	config.StateDir, err = resolveStateDir(decoded.StateDir)
	if err != nil {
		return nil, err
	}

	return config, nil
}

// resolveStateDir expands ${VAR} placeholders and a leading ~ and falls back
// to the default state directory.
func resolveStateDir(dir string) (string, error) {
	if dir == "" {
		return state.DefaultDir()
	}

	dir = envvar.Expand(dir)

	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}

		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}

	return filepath.Clean(dir), nil
}
