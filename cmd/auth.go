package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/printwatch/cli/internal/credential"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Resolve the analysis API credential",
	Long: `Resolve the API credential used by dashboards and analysis tooling.

The credential is resolved once per invocation, in fixed order:

  1. PRINTWATCH_API_KEY environment variable
  2. api_key in .printwatch/config.yaml (project, git-ignored)
  3. api_key in ~/.printwatch/config.yaml (home)
  4. Interactive prompt (terminal only)

The resolved value is held in memory only; printwatch never writes it
to disk and never prints it in full.

Examples:
  # Resolve, prompting if nothing is preconfigured
  printwatch auth

  # Show where the credential would come from, without prompting
  printwatch auth status`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAuthResolve()
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current credential source",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAuthStatus()
	},
}

func runAuthResolve() error {
	var prompter credential.Prompter
	if isInteractive() {
		prompter = credential.TerminalPrompter{}
	}

	resolver := credential.NewResolver(cfg.APIKey, prompter)
	cred, err := resolver.Resolve()
	if err != nil {
		switch {
		case errors.Is(err, credential.ErrMissingCredential):
			return fmt.Errorf("%w\nSet PRINTWATCH_API_KEY, add api_key to .printwatch/config.yaml, or run in a terminal to be prompted", err)
		case errors.Is(err, credential.ErrMalformedCredential):
			return fmt.Errorf("%w\nExpected an opaque token of at least 6 characters (letters, digits, '.', '_', '-')", err)
		}
		return err
	}

	fmt.Println("Credential resolved")
	fmt.Printf("  Source: %s\n", credentialOrigin(cred))
	fmt.Printf("  Value:  %s\n", cred.Redacted())
	return nil
}

func runAuthStatus() error {
	// Status never prompts; resolution runs non-interactively.
	resolver := credential.NewResolver(cfg.APIKey, nil)
	cred, err := resolver.Resolve()
	if err != nil {
		if errors.Is(err, credential.ErrMissingCredential) {
			fmt.Println("No credential configured")
			fmt.Println("Run 'printwatch auth' to be prompted, or set PRINTWATCH_API_KEY")
			return nil
		}
		return err
	}

	fmt.Printf("Credential preconfigured via %s\n", credentialOrigin(cred))
	fmt.Printf("  Value: %s\n", cred.Redacted())
	return nil
}

// credentialOrigin describes where a resolved credential came from.
func credentialOrigin(cred *credential.Credential) string {
	if cred.Source == credential.SourcePrompted {
		return "interactive prompt (this session only)"
	}
	if cfg.APIKeySource != "" {
		return cfg.APIKeySource
	}
	return string(cred.Source)
}

func init() {
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
