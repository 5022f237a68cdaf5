package command

// root.go defines the root command for the nalanda CLI.
// global flags and token persistence live here.

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	apiURL    string // Global flag for API server URL
	tokenFile string // where login stores the token
	token     string // authentication token (jwt), overrides the token file
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nalanda",
	Short: "nalanda - library backend command line interface",
	Long: `nalanda talks to the library API as a member and runs operator tasks
directly against the database:
- Register, login and browse the catalogue
- Borrow and return books, list your history
- Migrate the schema, create admin accounts, mint tokens

Use "nalanda command --help" to see all available commands.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err) // Print error to standard error
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("NALANDA_API", "http://localhost:5000"), "API server URL")
	rootCmd.PersistentFlags().StringVar(&tokenFile, "token-file", defaultTokenFile(), "file the login token is stored in")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("NALANDA_TOKEN"), "bearer token, overrides the token file")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nalanda-token"
	}
	return filepath.Join(home, ".nalanda", "token")
}

// saveToken persists the token for later commands. An empty token logs out.
func saveToken(value string) error {
	if value == "" {
		if err := os.Remove(tokenFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(tokenFile), 0o700); err != nil {
		return err
	}
	return os.WriteFile(tokenFile, []byte(value+"\n"), 0o600)
}

// loadToken prefers the --token flag, then the token file.
func loadToken() (string, error) {
	if token != "" {
		return token, nil
	}
	raw, err := os.ReadFile(tokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return "", errors.New("not logged in, run `nalanda auth login` first")
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}
