package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fivetwenty-io/apim-client/internal/auth"
	"github.com/fivetwenty-io/apim-client/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrClientIDRequired = errors.New("client ID is required for service principal login, use --client-id or --azure-cli")
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		tenantID     string
		clientID     string
		clientSecret string
		tokenURL     string
		useAzureCLI  bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate to Azure Resource Manager",
		Long: `Authenticate as a service principal (client credentials) or record that
the Azure CLI login should be used. The credentials are verified by requesting
a management token and saved to the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if useAzureCLI {
				return loginWithAzureCLI(cmd)
			}

			if tenantID == "" {
				tenantID = viper.GetString("tenant_id")
			}

			if clientID == "" {
				clientID = viper.GetString("client_id")
			}

			if tokenURL == "" {
				tokenURL = viper.GetString("token_url")
			}

			if clientID == "" {
				return ErrClientIDRequired
			}

			if clientSecret == "" {
				secret, err := promptSecret(cmd)
				if err != nil {
					return err
				}

				clientSecret = secret
			}

			return loginWithServicePrincipal(cmd, &auth.ClientCredentialsConfig{
				TenantID:     tenantID,
				ClientID:     clientID,
				ClientSecret: clientSecret,
				TokenURL:     tokenURL,
			})
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "Azure AD tenant ID")
	cmd.Flags().StringVar(&clientID, "client-id", "", "service principal application ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "service principal secret (prompted when omitted)")
	cmd.Flags().StringVar(&tokenURL, "token-url", "", "override the Azure AD token endpoint")
	cmd.Flags().BoolVar(&useAzureCLI, "azure-cli", false, "use the Azure CLI login instead of a service principal")

	return cmd
}

func promptSecret(cmd *cobra.Command) (string, error) {
	stdin := int(os.Stdin.Fd())
	if !term.IsTerminal(stdin) {
		return "", constants.ErrSecretRequired
	}

	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Client secret: ")

	secret, err := term.ReadPassword(stdin)
	_, _ = fmt.Fprintln(cmd.ErrOrStderr())

	if err != nil {
		return "", fmt.Errorf("failed to read client secret: %w", err)
	}

	return strings.TrimSpace(string(secret)), nil
}

func loginWithServicePrincipal(cmd *cobra.Command, credentials *auth.ClientCredentialsConfig) error {
	manager, err := auth.NewClientCredentialsTokenManager(credentials)
	if err != nil {
		return err
	}

	err = manager.RefreshToken(cmd.Context())
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	config, err := loadConfigFile()
	if err != nil {
		return err
	}

	token := manager.CurrentToken()

	config.TenantID = credentials.TenantID
	config.ClientID = credentials.ClientID
	config.ClientSecret = credentials.ClientSecret
	config.TokenURL = credentials.TokenURL
	config.UseAzureCLI = false
	config.AccessToken = ""
	config.Token = token.AccessToken
	config.TokenExpiresAt = nil

	if !token.ExpiresAt.IsZero() {
		expiresAt := token.ExpiresAt
		config.TokenExpiresAt = &expiresAt
	}

	err = saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	printSuccess(cmd.OutOrStdout(), "Logged in as service principal %s", credentials.ClientID)

	if config.ResourceGroup == "" && viper.GetString("resource_group") == "" {
		printInfo(cmd.OutOrStdout(), "Set a resource group with 'apim config set resource_group <name>'")
	}

	return nil
}

func loginWithAzureCLI(cmd *cobra.Command) error {
	account, err := newAccountResolver().ShowAccount(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading Azure CLI account: %w", err)
	}

	config, err := loadConfigFile()
	if err != nil {
		return err
	}

	config.UseAzureCLI = true
	config.AccessToken = ""
	config.Token = ""
	config.TokenExpiresAt = nil

	if config.SubscriptionID == "" {
		config.SubscriptionID = account.ID
	}

	if config.TenantID == "" {
		config.TenantID = account.TenantID
	}

	err = saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	printSuccess(cmd.OutOrStdout(), "Using Azure CLI login %s (subscription %s)", account.User.Name, config.SubscriptionID)

	return nil
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove saved credentials",
		Long:  "Remove the saved client secret, access token and cached token from the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfigFile()
			if err != nil {
				return err
			}

			config.ClientSecret = ""
			config.AccessToken = ""
			config.Token = ""
			config.TokenExpiresAt = nil

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			printSuccess(cmd.OutOrStdout(), "Logged out")

			return nil
		},
	}
}
