package command

// root.go defines the root command for the reviewhub CLI and its global flags.

import (
	"fmt"
	"os"

	"reviewhub/cmd/cli/authentication"
	"reviewhub/cmd/cli/command/client"

	"github.com/spf13/cobra"
)

var (
	apiURL  string // API server URL
	cfgFile string // server config file, used by the admin commands
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reviewhub",
	Short: "reviewhub - ReviewHub Command Line Interface",
	Long: `reviewhub talks to the ReviewHub API. It can:
- Sign in with an emailed confirmation code
- Browse titles, categories and genres
- Read and post reviews
- Run database administration tasks against the server's database

Use "reviewhub command --help" to see all available commands.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "server config file (admin commands only)")
}

// newClient returns an API client carrying the stored token, if any. The
// stored API URL is used unless --api was given explicitly.
func newClient(cmd *cobra.Command) *client.HTTPClient {
	creds, err := authentication.GetTokens()
	if err != nil {
		return client.NewHTTPClient(apiURL)
	}
	url := apiURL
	if !cmd.Flags().Changed("api") && creds.APIURL != "" {
		url = creds.APIURL
	}
	c := client.NewHTTPClient(url)
	c.SetToken(creds.Token)
	return c
}
