package command

import (
	"errors"
	"fmt"

	"reviewhub/cmd/cli/authentication"
	"reviewhub/cmd/cli/command/client"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// authCmd groups the sign-in subcommands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long: `Sign in to ReviewHub. Request a confirmation code with "auth code",
then exchange it for an access token with "auth token".`,
}

var codeCmd = &cobra.Command{
	Use:   "code",
	Short: "Email a confirmation code, registering the address if it is new",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")

		resp, err := client.NewHTTPClient(apiURL).RequestCode(email)
		if err != nil {
			return fmt.Errorf("request confirmation code: %w", err)
		}

		fmt.Printf("✓ Confirmation code sent to %s\n", resp.Email)
		fmt.Printf("Username: %s\n", resp.Username)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Exchange a confirmation code for an access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		code, _ := cmd.Flags().GetString("code")

		tok, err := client.NewHTTPClient(apiURL).IssueToken(email, code)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}

		creds := &authentication.StoredCredentials{Token: tok, Email: email, APIURL: apiURL}
		if err := authentication.StoreTokens(creds); err != nil {
			color.Yellow("Could not save the token to the keyring: %v", err)
			fmt.Printf("Access Token: %s\n", tok)
			return nil
		}
		fmt.Println("✓ Successfully logged in!")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authentication.DeleteTokens(); err != nil {
			return fmt.Errorf("remove stored token: %w", err)
		}
		fmt.Println("✓ Successfully logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := authentication.GetTokens(); errors.Is(err, authentication.ErrNotLoggedIn) {
			return err
		}

		me, err := newClient(cmd).Me()
		if err != nil {
			return fmt.Errorf("fetch profile: %w", err)
		}
		color.Cyan("%s <%s>", me.Username, me.Email)
		fmt.Printf("Role: %s\n", me.Role)
		if me.Bio != "" {
			fmt.Printf("Bio: %s\n", me.Bio)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(whoamiCmd)

	authCmd.AddCommand(codeCmd)
	authCmd.AddCommand(tokenCmd)
	authCmd.AddCommand(logoutCmd)

	codeCmd.Flags().StringP("email", "e", "", "Email address to sign in with")
	codeCmd.MarkFlagRequired("email")

	tokenCmd.Flags().StringP("email", "e", "", "Email address the code was sent to")
	tokenCmd.Flags().StringP("code", "c", "", "Confirmation code from the email")
	tokenCmd.MarkFlagRequired("email")
	tokenCmd.MarkFlagRequired("code")
}
