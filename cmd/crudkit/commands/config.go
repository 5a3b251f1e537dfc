package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/crudkit/internal/constants"
)

const headerKeyPrefix = "header."

// Config represents the CLI configuration file.
type Config struct {
	API            string            `json:"api,omitempty"              yaml:"api,omitempty"`
	Token          string            `json:"token,omitempty"            yaml:"token,omitempty"`
	TokenExpiresAt *time.Time        `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
	AuthScheme     string            `json:"auth_scheme,omitempty"      yaml:"auth_scheme,omitempty"`
	Output         string            `json:"output,omitempty"           yaml:"output,omitempty"`
	Prefix         string            `json:"prefix,omitempty"           yaml:"prefix,omitempty"`
	EventsURL      string            `json:"events_url,omitempty"       yaml:"events_url,omitempty"`
	Timeout        string            `json:"timeout,omitempty"          yaml:"timeout,omitempty"`
	RetryMax       int               `json:"retry_max,omitempty"        yaml:"retry_max,omitempty"`
	Headers        map[string]string `json:"headers,omitempty"          yaml:"headers,omitempty"`
}

// configHandlers set and clear one key of Config.
var configHandlers = map[string]struct {
	set   func(*Config, string) error
	unset func(*Config)
}{
	"api": {
		set:   func(c *Config, v string) error { c.API = v; return nil },
		unset: func(c *Config) { c.API = "" },
	},
	"token": {
		set: func(c *Config, v string) error {
			c.Token = v
			c.TokenExpiresAt = nil

			return nil
		},
		unset: func(c *Config) {
			c.Token = ""
			c.TokenExpiresAt = nil
		},
	},
	"auth_scheme": {
		set:   func(c *Config, v string) error { c.AuthScheme = v; return nil },
		unset: func(c *Config) { c.AuthScheme = "" },
	},
	"output": {
		set: func(c *Config, v string) error {
			switch v {
			case constants.FormatJSON, constants.FormatYAML, constants.FormatTable:
				c.Output = v

				return nil
			default:
				return fmt.Errorf("%w: %s", constants.ErrUnsupportedFormat, v)
			}
		},
		unset: func(c *Config) { c.Output = "" },
	},
	"prefix": {
		set:   func(c *Config, v string) error { c.Prefix = v; return nil },
		unset: func(c *Config) { c.Prefix = "" },
	},
	"events_url": {
		set:   func(c *Config, v string) error { c.EventsURL = v; return nil },
		unset: func(c *Config) { c.EventsURL = "" },
	},
	"timeout": {
		set: func(c *Config, v string) error {
			_, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid timeout: %w", err)
			}

			c.Timeout = v

			return nil
		},
		unset: func(c *Config) { c.Timeout = "" },
	},
	"retry_max": {
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid retry_max: %w", err)
			}

			c.RetryMax = n

			return nil
		},
		unset: func(c *Config) { c.RetryMax = 0 },
	},
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage crudkit CLI configuration stored in ~/.crudkit/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the configuration file with the token masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfigFile()
			if err != nil {
				return err
			}

			masked := *config
			if masked.Token != "" {
				masked.Token = constants.MaskedSecret
			}

			switch viper.GetString("output") {
			case constants.FormatJSON:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(masked)
			case constants.FormatYAML:
				return yaml.NewEncoder(os.Stdout).Encode(masked)
			default:
				return displayConfigTable(&masked)
			}
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: `Set a configuration value. Keys: api, token, auth_scheme, output, prefix,
events_url, timeout, retry_max and header.<Name> for extra request headers.`,
		Args: cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfigFile()
			if err != nil {
				return err
			}

			err = setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigFile(config)
			if err != nil {
				return err
			}

			value := args[1]
			if args[0] == "token" {
				value = constants.MaskedSecret
			}

			return outputConfigUpdateResult("Set", args[0], value)
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfigFile()
			if err != nil {
				return err
			}

			err = unsetConfigValue(config, args[0])
			if err != nil {
				return err
			}

			err = saveConfigFile(config)
			if err != nil {
				return err
			}

			return outputConfigUpdateResult("Unset", args[0], "")
		},
	}
}

func setConfigValue(config *Config, key, value string) error {
	if name, ok := strings.CutPrefix(key, headerKeyPrefix); ok && name != "" {
		if config.Headers == nil {
			config.Headers = make(map[string]string)
		}

		config.Headers[name] = value

		return nil
	}

	handler, ok := configHandlers[key]
	if !ok {
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return handler.set(config, value)
}

func unsetConfigValue(config *Config, key string) error {
	if name, ok := strings.CutPrefix(key, headerKeyPrefix); ok && name != "" {
		delete(config.Headers, name)

		return nil
	}

	handler, ok := configHandlers[key]
	if !ok {
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	handler.unset(config)

	return nil
}

func configFilePath() (string, error) {
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName, constants.ConfigFileName), nil
}

// loadConfigFile reads the configuration file. A missing file yields an
// empty configuration.
func loadConfigFile() (*Config, error) {
	configFile, err := configFilePath()
	if err != nil {
		return nil, err
	}

	// configFile comes from the --config flag or the user's home directory
	// #nosec G304
	data, err := os.ReadFile(configFile)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

func saveConfigFile(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func displayConfigTable(config *Config) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	rows := [][]string{
		{"API", formatConfigValue(config.API)},
		{"Token", formatConfigValue(config.Token)},
		{"Auth Scheme", formatConfigValue(config.AuthScheme)},
		{"Output", formatConfigValue(config.Output)},
		{"Prefix", formatConfigValue(config.Prefix)},
		{"Events URL", formatConfigValue(config.EventsURL)},
		{"Timeout", formatConfigValue(config.Timeout)},
		{"Retry Max", strconv.Itoa(config.RetryMax)},
	}

	if config.TokenExpiresAt != nil {
		rows = append(rows, []string{"Token Expires At", config.TokenExpiresAt.Format(time.RFC3339)})
	}

	names := make([]string, 0, len(config.Headers))
	for name := range config.Headers {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		rows = append(rows, []string{"Header " + name, config.Headers[name]})
	}

	for _, row := range rows {
		err := table.Append(row)
		if err != nil {
			return fmt.Errorf("failed to append row to table: %w", err)
		}
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func formatConfigValue(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

func outputConfigUpdateResult(action, key, value string) error {
	result := map[string]string{
		"action": action,
		"key":    key,
	}

	if value != "" {
		result["value"] = value
	}

	switch viper.GetString("output") {
	case constants.FormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(result)
		if err != nil {
			return fmt.Errorf("failed to encode config result as JSON: %w", err)
		}

		return nil
	case constants.FormatYAML:
		err := yaml.NewEncoder(os.Stdout).Encode(result)
		if err != nil {
			return fmt.Errorf("failed to encode config result as YAML: %w", err)
		}

		return nil
	default:
		if value != "" {
			fmt.Fprintf(os.Stdout, "%s %s = %s\n", action, key, value)
		} else {
			fmt.Fprintf(os.Stdout, "%s %s\n", action, key)
		}

		return nil
	}
}
