package command

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"nalanda/database"
	"nalanda/internal/config"
	"nalanda/internal/middleware/auth"
	"nalanda/internal/microservices/http-api/repository"
	"nalanda/internal/microservices/http-api/service"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// admin.go holds operator commands. They talk to the database directly
// using the same .env configuration as the API server.

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Operator commands run against the database",
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadOperatorConfig()
		if err != nil {
			return err
		}
		db, err := database.ConnectDB(cfg, logger)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.Migrate(db, logger); err != nil {
			return err
		}
		fmt.Println("✓ Schema is up to date")
		return nil
	},
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an Admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, err := passwordFromFlagOrPrompt(cmd)
		if err != nil {
			return err
		}

		cfg, logger, err := loadOperatorConfig()
		if err != nil {
			return err
		}
		db, err := database.ConnectDB(cfg, logger)
		if err != nil {
			return err
		}
		defer database.Close(db)

		svc, err := newAuthService(cfg, db, logger)
		if err != nil {
			return err
		}
		user, err := svc.CreateAdmin(cmd.Context(), name, email, password)
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		fmt.Printf("✓ Admin %s created (id %s)\n", user.Email, user.ID)
		return nil
	},
}

var issueTokenCmd = &cobra.Command{
	Use:   "issue-token",
	Short: "Mint a token for a user id and role without a login",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user-id")
		role, _ := cmd.Flags().GetString("role")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		cfg, _, err := loadOperatorConfig()
		if err != nil {
			return err
		}
		if ttl <= 0 {
			ttl = cfg.TokenTTL
		}
		codec, err := auth.NewTokenCodec(cfg.JWTSecret, cfg.JWTEncryptionKey, ttl)
		if err != nil {
			return err
		}

		claims := auth.SubjectClaims{UserID: userID, Role: auth.Role(role)}
		if !claims.Role.Valid() {
			return fmt.Errorf("role must be %s or %s", auth.RoleAdmin, auth.RoleMember)
		}
		tok, err := codec.Issue(claims)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}

func loadOperatorConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("could not load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, cfg.NewLogger(os.Stderr), nil
}

func newAuthService(cfg *config.Config, db *gorm.DB, logger *slog.Logger) (service.AuthService, error) {
	codec, err := auth.NewTokenCodec(cfg.JWTSecret, cfg.JWTEncryptionKey, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	return service.NewAuthService(repository.NewUserRepository(db), codec, logger), nil
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(migrateCmd, createAdminCmd, issueTokenCmd)

	createAdminCmd.Flags().StringP("name", "n", "", "Display name")
	createAdminCmd.Flags().StringP("email", "e", "", "Login email")
	createAdminCmd.Flags().StringP("password", "p", "", "Password, prompted for when omitted")
	createAdminCmd.MarkFlagRequired("name")
	createAdminCmd.MarkFlagRequired("email")

	issueTokenCmd.Flags().String("user-id", "", "Subject user id")
	issueTokenCmd.Flags().String("role", string(auth.RoleMember), "Admin or Member")
	issueTokenCmd.Flags().Duration("ttl", time.Duration(0), "Token lifetime, defaults to TOKEN_TTL")
	issueTokenCmd.MarkFlagRequired("user-id")
}
