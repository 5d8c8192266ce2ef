package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/apim-client/internal/auth"
	"github.com/fivetwenty-io/apim-client/internal/azcli"
	"github.com/fivetwenty-io/apim-client/internal/constants"
	"github.com/fivetwenty-io/apim-client/pkg/apim"
	"github.com/fivetwenty-io/apim-client/pkg/apimclient"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"
	Masked       = "***"
	Yes          = "yes"
	No           = "no"
)

// newAccountResolver returns the account lookup used for subscription
// discovery and the account command.
var newAccountResolver = func() apimclient.AccountResolver {
	return azcli.New(nil)
}

// renderOutput writes data as json or yaml, or calls table for the default format.
func renderOutput(w io.Writer, data interface{}, table func(io.Writer) error) error {
	switch output := viper.GetString("output"); output {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(data)
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}

		return nil
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)

		err := encoder.Encode(data)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}

		return encoder.Close()
	case constants.FormatTable, "":
		return table(w)
	default:
		return fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, output)
	}
}

// renderTable writes a table with the given header and rows.
func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)

	headers := make([]any, len(header))
	for i, h := range header {
		headers[i] = h
	}

	table.Header(headers...)

	for _, row := range rows {
		_ = table.Append(row)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// renderProperties writes a two column Property/Value table.
func renderProperties(w io.Writer, rows [][]string) error {
	return renderTable(w, []string{"Property", "Value"}, rows)
}

// createClient builds an APIM client from the effective configuration. The
// returned cleanup flushes the logger and closes the cache.
func createClient(ctx context.Context) (apim.Client, func(), error) {
	config := effectiveConfig()
	if config.ResourceGroup == "" {
		return nil, nil, constants.ErrResourceGroupNotConfigured
	}

	logger, err := newLogger(viper.GetBool("verbose"))
	if err != nil {
		return nil, nil, err
	}

	cache, err := createCache(config)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		logger.Sync()

		if closer, ok := cache.(interface{ Close() }); ok {
			closer.Close()
		}
	}

	opts := []apimclient.Option{apimclient.WithAccountResolver(newAccountResolver())}

	tokenManager, err := createTokenManager(config)
	if err != nil {
		cleanup()

		return nil, nil, err
	}

	if tokenManager != nil {
		opts = append(opts, apimclient.WithTokenManager(tokenManager))
	}

	client, err := apimclient.New(ctx, buildAPIMConfig(config, logger, cache), opts...)
	if err != nil {
		cleanup()

		return nil, nil, err
	}

	return client, cleanup, nil
}

func buildAPIMConfig(config *Config, logger apim.Logger, cache apim.Cache) *apim.Config {
	return &apim.Config{
		SubscriptionID: config.SubscriptionID,
		ResourceGroup:  config.ResourceGroup,
		ServiceName:    config.ServiceName,
		Endpoint:       config.Endpoint,
		APIVersion:     config.APIVersion,
		TenantID:       config.TenantID,
		ClientID:       config.ClientID,
		ClientSecret:   config.ClientSecret,
		AccessToken:    config.AccessToken,
		TokenURL:       config.TokenURL,
		UseAzureCLI:    config.UseAzureCLI,
		Debug:          viper.GetBool("verbose"),
		Logger:         logger,
		Cache:          cache,
	}
}

// createTokenManager wraps the configured credential source so fresh tokens
// are saved to the config file. A static access token needs no manager.
func createTokenManager(config *Config) (auth.TokenManager, error) {
	if config.AccessToken != "" {
		return nil, nil
	}

	var inner auth.TokenManager

	if config.ClientID != "" && config.ClientSecret != "" && !config.UseAzureCLI {
		manager, err := auth.NewClientCredentialsTokenManager(&auth.ClientCredentialsConfig{
			TenantID:     config.TenantID,
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			TokenURL:     config.TokenURL,
		})
		if err != nil {
			return nil, fmt.Errorf("creating client credentials token manager: %w", err)
		}

		inner = manager
	} else {
		inner = auth.NewAzureCLITokenManager(nil)
	}

	return auth.NewPersistingTokenManager(inner, NewConfigPersister(), config.Token, config.tokenExpiry()), nil
}

// createCache returns nil when caching is off.
func createCache(config *Config) (apim.Cache, error) {
	cacheType, err := apim.ParseCacheType(config.Cache)
	if err != nil {
		return nil, fmt.Errorf("%w: %s (use memory, nats, tiered or none)", constants.ErrInvalidCacheType, config.Cache)
	}

	if cacheType == apim.CacheTypeNone {
		return nil, nil
	}

	cacheConfig := apim.DefaultCacheConfig()
	cacheConfig.Type = cacheType

	if cacheType == apim.CacheTypeNATS || cacheType == apim.CacheTypeTiered {
		cacheConfig.NATS = &apim.NATSKVConfig{
			URL:    config.NATSURL,
			Bucket: constants.DefaultNATSBucket,
			TTL:    constants.DefaultCacheTTL,
		}
	}

	cache, err := apim.NewCacheFromConfig(cacheConfig)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	return cache, nil
}

// maskKey keeps the first few characters of a secret.
func maskKey(key string) string {
	if key == "" {
		return ""
	}

	if len(key) <= constants.MaskedKeyVisibleChars {
		return Masked
	}

	return key[:constants.MaskedKeyVisibleChars] + Masked
}

// maskSecret hides a configured secret entirely.
func maskSecret(value string) string {
	if value == "" {
		return ""
	}

	return Masked
}

// truncate shortens value to length runes, ending with "...".
func truncate(value string, length int) string {
	runes := []rune(value)
	if len(runes) <= length {
		return value
	}

	return string(runes[:length-3]) + "..."
}

func formatBool(value bool) string {
	if value {
		return Yes
	}

	return No
}

func formatOptionalInt(value *int) string {
	if value == nil {
		return NotAvailable
	}

	return strconv.Itoa(*value)
}

func valueOrNA(value string) string {
	if value == "" {
		return NotAvailable
	}

	return value
}
