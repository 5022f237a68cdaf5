package command

import (
	"fmt"

	"nalanda/cmd/cli/command/client"
	"nalanda/internal/microservices/http-api/dto"

	"github.com/spf13/cobra"
)

// auth.go handles register, login and logout against the API.

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Authenticate with the library API. Supports register, login and logout.`,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new member account",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.RegisterRequest
		req.Name, _ = cmd.Flags().GetString("name")
		req.Email, _ = cmd.Flags().GetString("email")

		password, err := passwordFromFlagOrPrompt(cmd)
		if err != nil {
			return err
		}
		req.Password = password

		response, err := client.NewHTTPClient(apiURL).Register(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		fmt.Println("✓ Registration successful! Please login to continue.")
		fmt.Printf("Member ID: %s\n", response.Member.ID)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login and store the token",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.LoginRequest
		req.Email, _ = cmd.Flags().GetString("email")

		password, err := passwordFromFlagOrPrompt(cmd)
		if err != nil {
			return err
		}
		req.Password = password

		response, err := client.NewHTTPClient(apiURL).Login(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		if err := saveToken(response.Token); err != nil {
			return fmt.Errorf("store token: %w", err)
		}

		fmt.Printf("✓ Logged in, token valid for %dh\n", response.TokenExpiration)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := saveToken(""); err != nil {
			return err
		}
		fmt.Println("✓ Successfully logged out.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(registerCmd, loginCmd, logoutCmd)

	registerCmd.Flags().StringP("name", "n", "", "Display name for the new account")
	registerCmd.Flags().StringP("email", "e", "", "Email address for the new account")
	registerCmd.Flags().StringP("password", "p", "", "Password, prompted for when omitted")
	registerCmd.MarkFlagRequired("name")
	registerCmd.MarkFlagRequired("email")

	loginCmd.Flags().StringP("email", "e", "", "Email address of the account")
	loginCmd.Flags().StringP("password", "p", "", "Password, prompted for when omitted")
	loginCmd.MarkFlagRequired("email")
}
