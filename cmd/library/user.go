package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Astemirdum/my-little-library/library/app"
	"github.com/Astemirdum/my-little-library/pkg/logger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage librarian accounts",
}

var userCreateOpts struct {
	name, email, password string
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a librarian account",
	Long: `Creates a librarian account. The password is prompted for when
--password is not given.

	library user create --name "Ada" --email ada@example.com
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := userCreateOpts.password
		if password == "" {
			var err error
			if password, err = readPassword("Password: "); err != nil {
				return errors.Wrap(err, "read password")
			}
		}
		cfg := loadConfig()
		log := logger.NewLogger(cfg.Log, "library-cli")
		deps, err := app.Build(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer deps.Close(log)

		id, err := deps.Service.RegisterUser(cmd.Context(), userCreateOpts.name, userCreateOpts.email, password)
		if errors.Is(err, app.ErrEmailTaken) {
			return fmt.Errorf("email %s is already registered", userCreateOpts.email)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

func init() {
	userCreateCmd.Flags().StringVar(&userCreateOpts.name, "name", "", "display name")
	userCreateCmd.Flags().StringVar(&userCreateOpts.email, "email", "", "login email")
	userCreateCmd.Flags().StringVar(&userCreateOpts.password, "password", "", "password (prompted when empty)")
	_ = userCreateCmd.MarkFlagRequired("name")
	_ = userCreateCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)
}
