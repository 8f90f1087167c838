package cli

import (
	"fmt"
	"os"

	"github.com/classeur/core/internal/api/middleware"
	"github.com/classeur/core/internal/config"
	"github.com/classeur/core/internal/services"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	db            *gorm.DB
	cfg           *config.Config
	apiKeyManager *middleware.APIKeyManager
	userService   *services.UserService
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "classeur",
	Short: "Classeur mail filing backend",
	Long: `Classeur is a backend service that syncs mailboxes over IMAP and
files messages into a client folder structure on disk.

The command line tool covers:
  - key management: show and reset the API key
  - user management: create users, list users, reset passwords

Examples:
  classeur key show          # print the current API key
  classeur key reset         # rotate the API key
  classeur user create       # create a new user
  classeur user list         # list all users
  classeur user reset-pwd    # reset a user's password`,
}

// Execute runs the CLI with the provided database and config
func Execute(database *gorm.DB, config *config.Config) {
	db = database
	cfg = config

	var err error
	apiKeyManager, err = middleware.NewAPIKeyManager(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize API key manager: %v\n", err)
		os.Exit(1)
	}

	userService = services.NewUserService(db)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(userCmd)
}
