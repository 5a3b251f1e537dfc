package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fivetwenty-io/crudkit/internal/auth"
	"github.com/fivetwenty-io/crudkit/internal/constants"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var (
		apiEndpoint string
		token       string
		expiresIn   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API token",
		Long:  "Store the API endpoint and access token used by the record commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiEndpoint == "" {
				apiEndpoint = viper.GetString("api")
			}

			if apiEndpoint == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("API endpoint: ")
				apiEndpoint, _ = reader.ReadString('\n')
				apiEndpoint = strings.TrimSpace(apiEndpoint)
			}

			if apiEndpoint == "" {
				return constants.ErrNoAPIConfigured
			}

			if token == "" {
				var err error

				token, err = readToken()
				if err != nil {
					return err
				}
			}

			if token == "" {
				return constants.ErrEmptyToken
			}

			var expiresAt time.Time
			if expiresIn > 0 {
				expiresAt = time.Now().Add(expiresIn)
			}

			manager := auth.NewConfigTokenManager(NewConfigPersister(), apiEndpoint, "", time.Time{})
			manager.SetToken(token, expiresAt)

			err := manager.PersistError()
			if err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s\n", apiEndpoint)

			if !expiresAt.IsZero() {
				fmt.Fprintf(cmd.OutOrStdout(), "Token expires at %s\n", expiresAt.Format(time.RFC3339))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&apiEndpoint, "api-endpoint", "", "API endpoint URL")
	cmd.Flags().StringVar(&token, "access-token", "", "access token (prompted when omitted)")
	cmd.Flags().DurationVar(&expiresIn, "expires-in", 0, "token lifetime, e.g. 1h")

	return cmd
}

// readToken prompts for the token without echo when stdin is a terminal.
func readToken() (string, error) {
	fmt.Print("Access token: ")

	fd := int(os.Stdin.Fd()) // #nosec G115 -- file descriptors fit in int
	if term.IsTerminal(fd) {
		data, err := term.ReadPassword(fd)

		fmt.Println()

		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}

		return strings.TrimSpace(string(data)), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	return strings.TrimSpace(line), nil
}
