package users

import (
	"bufio"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/terraconstructs/articles/internal/config"
	"github.com/terraconstructs/articles/internal/db/bunx"
	"github.com/terraconstructs/articles/internal/db/models"
	"github.com/terraconstructs/articles/internal/logging"
	"github.com/terraconstructs/articles/internal/repository"
	"github.com/terraconstructs/articles/internal/services/account"
)

var (
	emailFlag    string
	usernameFlag string
	passwordFlag string
	roleFlag     string
	stdinFlag    bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	Long: `Creates a user account with the given role. This is how the first
ROLE_ADMIN account is bootstrapped, since the API only lets admins create admins.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if emailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}
		if usernameFlag == "" {
			return fmt.Errorf("--username flag is required")
		}

		role, err := models.ParseRole(roleFlag)
		if err != nil {
			return fmt.Errorf("invalid --role: %w", err)
		}

		password := passwordFlag
		if stdinFlag {
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Fprint(os.Stderr, "Enter password: ")
			if scanner.Scan() {
				password = strings.TrimRight(scanner.Text(), "\r")
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}
		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
		}

		if _, err := mail.ParseAddress(emailFlag); err != nil {
			return fmt.Errorf("invalid email format: %w", err)
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cmd.Flags().Changed("db-url") {
			cfg.DatabaseURL, _ = cmd.Flags().GetString("db-url")
		}

		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		accounts := account.NewService(repository.NewBunUserRepository(db), cfg.BcryptCost)
		user, err := accounts.Create(cmd.Context(), account.UserInput{
			Username: usernameFlag,
			Email:    emailFlag,
			Password: password,
			Role:     role,
		})
		switch {
		case errors.Is(err, account.ErrUsernameTaken):
			return fmt.Errorf("user with username %q already exists", usernameFlag)
		case errors.Is(err, account.ErrEmailTaken):
			return fmt.Errorf("user with email %q already exists", emailFlag)
		case err != nil:
			return fmt.Errorf("failed to create user: %w", err)
		}

		logging.Info().Int64("user_id", user.ID).Str("username", user.Username).Str("role", string(user.Role)).Msg("user created")

		fmt.Println("User created successfully!")
		fmt.Println("----------------------------------------")
		fmt.Printf("User ID: %d\n", user.ID)
		fmt.Printf("Username: %s\n", user.Username)
		fmt.Printf("Email: %s\n", user.Email)
		fmt.Printf("Role: %s\n", user.Role)
		fmt.Println("----------------------------------------")
		return nil
	},
}
