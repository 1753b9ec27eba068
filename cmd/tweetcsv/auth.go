package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tweetcsv/pkg/auth"
	"tweetcsv/pkg/config"
	"tweetcsv/pkg/logger"
	"tweetcsv/pkg/twitter"
	"tweetcsv/pkg/ui"
)

const defaultProfile = "default"

func newAuthCmd(ropts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored Twitter API credentials",
		Long: `Manage named credential profiles.

Profiles are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read only, profile "env")

Use a profile with 'tweetcsv fetch --profile <name>'.
Never share your credentials or config files!`,
	}

	var skipVerify bool
	login := &cobra.Command{
		Use:   "login [profile]",
		Short: "Store the four Twitter API secrets under a profile",
		Long: `Store the four Twitter API secrets securely in the system keychain or an
encrypted file.

You will be prompted for the consumer key, consumer secret, access token and
access token secret. Unless --skip-verify is given, the secrets are checked
against the API before they are saved.`,
		Example: `  # Interactive login into the "default" profile
  tweetcsv auth login

  # Login into a named profile
  tweetcsv auth login work`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, ropts, args, skipVerify)
		},
	}
	login.Flags().BoolVar(&skipVerify, "skip-verify", false, "save without checking the secrets against the API")

	logout := &cobra.Command{
		Use:   "logout [profile]",
		Short: "Remove a stored profile",
		Long: `Remove a stored credential profile.

If no profile is given, you will be shown a list of stored profiles to choose from.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runLogout,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored profiles",
		Long:  `List all stored profiles with masked secrets.`,
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	cmd.AddCommand(login, logout, list)
	return cmd
}

func runLogin(cmd *cobra.Command, ropts *rootOptions, args []string, skipVerify bool) error {
	out := ui.NewPrinter(cmd.OutOrStdout())
	errOut := ui.NewPrinter(cmd.ErrOrStderr())
	w := cmd.OutOrStdout()
	in := cmd.InOrStdin()
	reader := bufio.NewReader(in)

	manager, err := auth.NewManager()
	if err != nil {
		errOut.Error("Failed to initialize credential manager", err)
		return &exitError{code: exitConfig, err: err}
	}

	profile := defaultProfile
	if len(args) > 0 {
		profile = strings.TrimSpace(args[0])
	}
	if profile == "" || profile == auth.EnvProfile {
		err := fmt.Errorf("invalid profile name %q", profile)
		errOut.Error("Invalid profile name", profile)
		return &exitError{code: exitConfig, err: err}
	}

	if existing, _ := manager.Retrieve(profile); existing != nil {
		fmt.Fprintf(w, "Profile '%s' already exists. Update credentials? (y/N): ", profile)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return nil
		}
	}

	auth.ShowQuickGuide(w)
	fmt.Fprintln(w, "\nEnter the secrets (they will be hidden as you type):")

	set := &auth.CredentialSet{Profile: profile}
	for _, field := range []struct {
		label string
		dst   *string
	}{
		{"Consumer key", &set.ConsumerKey},
		{"Consumer secret", &set.ConsumerSecret},
		{"Access token", &set.AccessToken},
		{"Access token secret", &set.AccessTokenSecret},
	} {
		for *field.dst == "" {
			fmt.Fprintf(w, "%s: ", field.label)
			value, err := readSecret(in, reader, w)
			if err != nil {
				errOut.Error("Failed to read "+strings.ToLower(field.label), err)
				return &exitError{code: exitConfig, err: err}
			}
			if strings.EqualFold(value, "help") {
				auth.ShowDeveloperPortalGuide(w)
				continue
			}
			*field.dst = value
		}
	}
	set.LastModified = time.Now()

	if !skipVerify {
		screenName, err := verifyCredentials(cmd.Context(), ropts, set)
		if err != nil {
			errOut.Error("Twitter rejected the credentials", err)
			return &exitError{code: exitFetch, err: err}
		}
		out.Info("Authenticated as", "@"+screenName)
	}

	if err := manager.Store(set); err != nil {
		errOut.Error("Failed to store credentials", err)
		return &exitError{code: exitConfig, err: err}
	}

	out.Success("Profile saved: " + profile)
	fmt.Fprintln(w, "\nUse it with:")
	fmt.Fprintf(w, "  $ tweetcsv fetch --hashtag <hashtag> --profile %s\n", profile)
	fmt.Fprintln(w, "\nNever share your credentials or config files!")
	return nil
}

// verifyCredentials calls the API once with the new secrets.
func verifyCredentials(ctx context.Context, ropts *rootOptions, set *auth.CredentialSet) (string, error) {
	cfg, err := config.Load(ropts.configFile, map[string]interface{}{"log-level": ropts.logLevel})
	if err != nil {
		return "", err
	}
	client := twitter.NewClient(twitter.Config{
		ConsumerKey:       set.ConsumerKey,
		ConsumerSecret:    set.ConsumerSecret,
		AccessToken:       set.AccessToken,
		AccessTokenSecret: set.AccessTokenSecret,
		BaseURL:           cfg.Twitter.APIBaseURL,
		Timeout:           cfg.Twitter.Timeout,
	}, logger.GetLogger())
	return client.VerifyCredentials(ctx)
}

func runLogout(cmd *cobra.Command, args []string) error {
	out := ui.NewPrinter(cmd.OutOrStdout())
	errOut := ui.NewPrinter(cmd.ErrOrStderr())
	w := cmd.OutOrStdout()

	manager, err := auth.NewManager()
	if err != nil {
		errOut.Error("Failed to initialize credential manager", err)
		return &exitError{code: exitConfig, err: err}
	}

	var profile string
	if len(args) > 0 {
		profile = args[0]
	} else {
		sets, err := manager.List()
		if err != nil || len(sets) == 0 {
			out.Warning("No stored profiles found")
			return nil
		}

		fmt.Fprintln(w, "Select profile to remove:")
		for i, set := range sets {
			fmt.Fprintf(w, "  %d. %s\n", i+1, set.Profile)
		}
		fmt.Fprintf(w, "  0. Cancel\n\nChoice: ")

		reader := bufio.NewReader(cmd.InOrStdin())
		input, _ := reader.ReadString('\n')
		var choice int
		fmt.Sscanf(strings.TrimSpace(input), "%d", &choice)
		if choice == 0 {
			return nil
		}
		if choice < 0 || choice > len(sets) {
			err := fmt.Errorf("invalid choice %q", strings.TrimSpace(input))
			errOut.Error("Invalid choice")
			return &exitError{code: exitConfig, err: err}
		}
		profile = sets[choice-1].Profile
	}

	if err := manager.Delete(profile); err != nil {
		errOut.Error("Failed to remove profile", err)
		return &exitError{code: exitConfig, err: err}
	}
	out.Success("Profile removed: " + profile)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	out := ui.NewPrinter(cmd.OutOrStdout())
	errOut := ui.NewPrinter(cmd.ErrOrStderr())
	w := cmd.OutOrStdout()

	manager, err := auth.NewManager()
	if err != nil {
		errOut.Error("Failed to initialize credential manager", err)
		return &exitError{code: exitConfig, err: err}
	}

	sets, err := manager.List()
	if err != nil {
		errOut.Error("Failed to list profiles", err)
		return &exitError{code: exitConfig, err: err}
	}
	if len(sets) == 0 {
		out.Info("No stored profiles", "Use 'tweetcsv auth login' to add one")
		return nil
	}

	out.Highlight("Stored Profiles")
	fmt.Fprintln(w)
	for i, set := range sets {
		masked := auth.SanitizeProfile(set)
		fmt.Fprintf(w, "%d. Profile: %s\n", i+1, masked.Profile)
		fmt.Fprintf(w, "   Consumer key: %s\n", masked.ConsumerKey)
		fmt.Fprintf(w, "   Consumer secret: %s\n", masked.ConsumerSecret)
		fmt.Fprintf(w, "   Access token: %s\n", masked.AccessToken)
		fmt.Fprintf(w, "   Access token secret: %s\n", masked.AccessTokenSecret)
		if !masked.LastModified.IsZero() {
			fmt.Fprintf(w, "   Last Modified: %s\n", masked.LastModified.Format("2006-01-02 15:04:05"))
		}
		fmt.Fprintln(w)
	}
	return nil
}

// readSecret reads a line without echoing when in is a terminal.
func readSecret(in io.Reader, reader *bufio.Reader, w io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(w)
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}

	input, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
