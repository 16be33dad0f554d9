package command

// admin.go holds commands that work on the database directly, for bootstrapping
// the first administrator before anyone can sign in.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"reviewhub/database"
	"reviewhub/internal/apperror"
	"reviewhub/internal/config"
	"reviewhub/internal/logger"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/policy"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Database administration (needs DATABASE_URL)",
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
			if err := database.Migrate(db, log); err != nil {
				return err
			}
			fmt.Println("✓ Schema is up to date")
			return nil
		})
	},
}

var createSuperuserCmd = &cobra.Command{
	Use:   "create-superuser",
	Short: "Create an administrator with the superuser flag",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		username, _ := cmd.Flags().GetString("username")
		if !apperror.IsUsername(username) {
			return fmt.Errorf("invalid username %q", username)
		}

		return withDatabase(func(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
			users := repository.NewUserRepository(db)
			if taken, err := users.ExistsByUsername(ctx, username); err != nil {
				return err
			} else if taken {
				return fmt.Errorf("username %q is already taken", username)
			}
			if taken, err := users.ExistsByEmail(ctx, email); err != nil {
				return err
			} else if taken {
				return fmt.Errorf("email %q is already registered", email)
			}

			u := &models.User{Username: username, Email: email, Role: policy.RoleAdmin, IsSuperuser: true}
			if err := users.Create(ctx, u); err != nil {
				return err
			}
			log.Info("superuser created", zap.String("username", username))
			fmt.Printf("✓ Superuser %s created. Sign in with \"reviewhub auth code --email %s\"\n", username, email)
			return nil
		})
	},
}

var setRoleCmd = &cobra.Command{
	Use:   "set-role",
	Short: "Change a user's role",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		roleName, _ := cmd.Flags().GetString("role")
		role := policy.Role(roleName)
		if !role.Valid() {
			return fmt.Errorf("unknown role %q, expected user, moderator or admin", roleName)
		}

		return withDatabase(func(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
			users := repository.NewUserRepository(db)
			u, err := users.FindByUsername(ctx, username)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("user %q not found", username)
			}
			if err != nil {
				return err
			}

			u.Role = role
			if err := users.Update(ctx, u, "role"); err != nil {
				return err
			}
			fmt.Printf("✓ %s is now %s\n", username, role)
			return nil
		})
	},
}

// withDatabase loads the server config, connects and runs fn.
func withDatabase(fn func(ctx context.Context, db *gorm.DB, log *zap.Logger) error) error {
	path := cfgFile
	if path == "" {
		path = config.ConfigPath()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}

	log, err := logger.Init(logger.Config{Level: cfg.LogLevel, Format: "console", NoColor: os.Getenv("NO_COLOR") != ""})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	db, err := database.ConnectDB(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	return fn(ctx, db, log)
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(migrateCmd)
	adminCmd.AddCommand(createSuperuserCmd)
	adminCmd.AddCommand(setRoleCmd)

	createSuperuserCmd.Flags().String("email", "", "Email address")
	createSuperuserCmd.Flags().String("username", "", "Username")
	createSuperuserCmd.MarkFlagRequired("email")
	createSuperuserCmd.MarkFlagRequired("username")

	setRoleCmd.Flags().String("username", "", "User to change")
	setRoleCmd.Flags().String("role", "", "user, moderator or admin")
	setRoleCmd.MarkFlagRequired("username")
	setRoleCmd.MarkFlagRequired("role")
}
