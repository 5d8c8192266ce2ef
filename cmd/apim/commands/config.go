package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/apim-client/internal/constants"
	"github.com/fivetwenty-io/apim-client/pkg/apim"
)

// ConfigDirName is the directory under the home directory holding config.yml.
const ConfigDirName = ".apim"

// Config represents the CLI configuration.
type Config struct {
	SubscriptionID string `json:"subscription_id,omitempty" yaml:"subscription_id,omitempty"`
	ResourceGroup  string `json:"resource_group,omitempty"  yaml:"resource_group,omitempty"`
	ServiceName    string `json:"service_name,omitempty"    yaml:"service_name,omitempty"`
	Endpoint       string `json:"endpoint,omitempty"        yaml:"endpoint,omitempty"`
	APIVersion     string `json:"api_version,omitempty"     yaml:"api_version,omitempty"`

	TenantID     string `json:"tenant_id,omitempty"     yaml:"tenant_id,omitempty"`
	ClientID     string `json:"client_id,omitempty"     yaml:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty" yaml:"client_secret,omitempty"`
	AccessToken  string `json:"access_token,omitempty"  yaml:"access_token,omitempty"`
	TokenURL     string `json:"token_url,omitempty"     yaml:"token_url,omitempty"`
	UseAzureCLI  bool   `json:"use_azure_cli,omitempty" yaml:"use_azure_cli,omitempty"`

	// Token caches the last token obtained from the credential source.
	Token          string     `json:"token,omitempty"            yaml:"token,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`

	Output  string `json:"output,omitempty"   yaml:"output,omitempty"`
	NoColor bool   `json:"no_color,omitempty" yaml:"no_color,omitempty"`
	Cache   string `json:"cache,omitempty"    yaml:"cache,omitempty"`
	NATSURL string `json:"nats_url,omitempty" yaml:"nats_url,omitempty"`
}

func (c *Config) tokenExpiry() time.Time {
	if c.TokenExpiresAt == nil {
		return time.Time{}
	}

	return *c.TokenExpiresAt
}

// masked returns a copy safe for display.
func (c *Config) masked() *Config {
	clone := *c
	clone.ClientSecret = maskSecret(c.ClientSecret)
	clone.AccessToken = maskSecret(c.AccessToken)
	clone.Token = maskSecret(c.Token)

	return &clone
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage APIM CLI configuration stored in ~/.apim/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration after flags and environment are applied. Secrets are masked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := effectiveConfig().masked()

			return renderOutput(cmd.OutOrStdout(), config, func(w io.Writer) error {
				return displayConfigTable(w, config)
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + strings.Join(configKeys, ", "),
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			config, err := loadConfigFile()
			if err != nil {
				return err
			}

			err = setConfigValue(config, key, value)
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if isSecretKey(key) {
				value = Masked
			}

			return outputConfigUpdateResult(cmd.OutOrStdout(), "Set", key, value)
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			config, err := loadConfigFile()
			if err != nil {
				return err
			}

			err = unsetConfigValue(config, key)
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			return outputConfigUpdateResult(cmd.OutOrStdout(), "Unset", key, "")
		},
	}
}

func newConfigClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear configuration",
		Long:  "Remove the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, err := configFilePath()
			if err != nil {
				return err
			}

			err = os.Remove(configFile)
			if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove config file: %w", err)
			}

			return outputConfigUpdateResult(cmd.OutOrStdout(), "Cleared", "all configuration", "")
		},
	}
}

// effectiveConfig merges the config file, APIM_* environment and flags.
func effectiveConfig() *Config {
	config := &Config{
		SubscriptionID: viper.GetString("subscription_id"),
		ResourceGroup:  viper.GetString("resource_group"),
		ServiceName:    viper.GetString("service_name"),
		Endpoint:       viper.GetString("endpoint"),
		APIVersion:     viper.GetString("api_version"),
		TenantID:       viper.GetString("tenant_id"),
		ClientID:       viper.GetString("client_id"),
		ClientSecret:   viper.GetString("client_secret"),
		AccessToken:    viper.GetString("access_token"),
		TokenURL:       viper.GetString("token_url"),
		UseAzureCLI:    viper.GetBool("use_azure_cli"),
		Token:          viper.GetString("token"),
		Output:         viper.GetString("output"),
		NoColor:        viper.GetBool("no_color"),
		Cache:          viper.GetString("cache"),
		NATSURL:        viper.GetString("nats_url"),
	}

	if expiresAt := viper.GetTime("token_expires_at"); !expiresAt.IsZero() {
		config.TokenExpiresAt = &expiresAt
	}

	return config
}

// configFilePath returns the file viper loaded, or ~/.apim/config.yml.
func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ConfigDirName, "config.yml"), nil
}

// loadConfigFile reads only what is persisted, so flag overrides are never
// written back.
func loadConfigFile() (*Config, error) {
	configFile, err := configFilePath()
	if err != nil {
		return nil, err
	}

	// configFile comes from the --config flag or the home directory.
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
		return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
	}

	return config, nil
}

func saveConfigStruct(config *Config) error {
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

var configKeys = []string{
	"subscription_id", "resource_group", "service_name", "endpoint", "api_version",
	"tenant_id", "client_id", "client_secret", "access_token", "token_url", "use_azure_cli",
	"output", "no_color", "cache", "nats_url",
}

func isSecretKey(key string) bool {
	return key == "client_secret" || key == "access_token"
}

func parseBoolValue(value string) bool {
	return value == constants.BooleanTrue || value == "1"
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case "subscription_id":
		config.SubscriptionID = value
	case "resource_group":
		config.ResourceGroup = value
	case "service_name":
		config.ServiceName = value
	case "endpoint":
		config.Endpoint = value
	case "api_version":
		config.APIVersion = value
	case "tenant_id":
		config.TenantID = value
	case "client_id":
		config.ClientID = value
	case "client_secret":
		config.ClientSecret = value
	case "access_token":
		config.AccessToken = value
	case "token_url":
		config.TokenURL = value
	case "use_azure_cli":
		config.UseAzureCLI = parseBoolValue(value)
	case "output":
		switch value {
		case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
			config.Output = value
		default:
			return fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, value)
		}
	case "no_color":
		config.NoColor = parseBoolValue(value)
	case "cache":
		config.Cache = value
	case "nats_url":
		config.NATSURL = value
	default:
		return fmt.Errorf("%w: %s", apim.ErrUnknownConfigKey, key)
	}

	return nil
}

func unsetConfigValue(config *Config, key string) error {
	if key == "token" {
		config.Token = ""
		config.TokenExpiresAt = nil

		return nil
	}

	switch key {
	case "output":
		config.Output = ""
	case "use_azure_cli", "no_color":
		return setConfigValue(config, key, "false")
	default:
		return setConfigValue(config, key, "")
	}

	return nil
}

func displayConfigTable(w io.Writer, config *Config) error {
	rows := [][]string{
		{"Subscription", valueOrNA(config.SubscriptionID)},
		{"Resource Group", valueOrNA(config.ResourceGroup)},
		{"Service", valueOrNA(config.ServiceName)},
		{"Endpoint", valueOrNA(config.Endpoint)},
		{"API Version", valueOrNA(config.APIVersion)},
		{"Tenant", valueOrNA(config.TenantID)},
		{"Client ID", valueOrNA(config.ClientID)},
		{"Client Secret", valueOrNA(config.ClientSecret)},
		{"Access Token", valueOrNA(config.AccessToken)},
		{"Token URL", valueOrNA(config.TokenURL)},
		{"Use Azure CLI", strconv.FormatBool(config.UseAzureCLI)},
		{"Output", valueOrNA(config.Output)},
		{"No Color", strconv.FormatBool(config.NoColor)},
		{"Cache", valueOrNA(config.Cache)},
		{"NATS URL", valueOrNA(config.NATSURL)},
	}

	if config.TokenExpiresAt != nil {
		rows = append(rows, []string{"Token Expires", config.TokenExpiresAt.Format(time.RFC3339)})
	}

	return renderProperties(w, rows)
}

func outputConfigUpdateResult(w io.Writer, action, key, value string) error {
	result := map[string]string{
		"action": action,
		"key":    key,
	}

	if value != "" {
		result["value"] = value
	}

	return renderOutput(w, result, func(w io.Writer) error {
		rows := [][]string{{"Action", action}, {"Key", key}}
		if value != "" {
			rows = append(rows, []string{"Value", value})
		}

		return renderProperties(w, rows)
	})
}

// ConfigPersister implements auth.TokenPersister on top of the config file.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// SaveToken stores the token and its expiry in the config file.
func (p *ConfigPersister) SaveToken(token string, expiresAt time.Time) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config, err := loadConfigFile()
	if err != nil {
		return err
	}

	config.Token = token
	config.TokenExpiresAt = nil

	if !expiresAt.IsZero() {
		config.TokenExpiresAt = &expiresAt
	}

	return saveConfigStruct(config)
}
