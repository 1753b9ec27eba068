package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tweetcsv/pkg/auth"
	"tweetcsv/pkg/config"
	"tweetcsv/pkg/ui"
)

const defaultConfigFile = ".tweetcsv.yaml"

func newConfigCmd(ropts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
		Long: `Manage tweetcsv configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (TWEETCSV_*, also read from .env)
  - Configuration file
  - Default values (lowest priority)`,
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file with the default values",
		Long: `Create a configuration file holding every option at its default value.

The file is created in the current directory as '.tweetcsv.yaml' unless a
different path is given with the --config flag. Secrets are left empty; prefer
'tweetcsv auth login' or environment variables over writing them here.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, ropts)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long:  `Show the configuration after merging every source. Secrets are masked.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, ropts)
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Long: `Validate the configuration for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value ranges and formats
  - Output and log directories can be created
  - Whether the four secrets are available`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigValidate(cmd, ropts)
		},
	}

	cmd.AddCommand(initCmd, showCmd, validateCmd)
	return cmd
}

func runConfigInit(cmd *cobra.Command, ropts *rootOptions) error {
	out := ui.NewPrinter(cmd.OutOrStdout())
	errOut := ui.NewPrinter(cmd.ErrOrStderr())
	w := cmd.OutOrStdout()

	path := ropts.configFile
	if path == "" {
		path = defaultConfigFile
	}

	if _, err := os.Stat(path); err == nil {
		errOut.Error("Configuration file already exists", path)
		fmt.Fprintln(w, "\nTo overwrite, first remove the existing file:")
		fmt.Fprintf(w, "  rm %s\n", path)
		return &exitError{code: exitConfig, err: fmt.Errorf("%s already exists", path)}
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		errOut.Error("Failed to create configuration file", err)
		return &exitError{code: exitConfig, err: err}
	}

	out.Success("Configuration file created: " + path)
	fmt.Fprintln(w, "\nNext steps:")
	fmt.Fprintln(w, "1. Set the hashtag and output directory in the file")
	fmt.Fprintln(w, "2. Store your secrets with 'tweetcsv auth login' or export CONSUMER_KEY and friends")
	fmt.Fprintln(w, "3. Run 'tweetcsv config validate' to check the configuration")
	return nil
}

func runConfigShow(cmd *cobra.Command, ropts *rootOptions) error {
	out := ui.NewPrinter(cmd.OutOrStdout())
	errOut := ui.NewPrinter(cmd.ErrOrStderr())
	w := cmd.OutOrStdout()

	cfg, err := config.Load(ropts.configFile, nil)
	if err != nil {
		errOut.Error("Failed to load configuration", err)
		return &exitError{code: exitConfig, err: err}
	}

	data, err := yaml.Marshal(cfg.Masked())
	if err != nil {
		errOut.Error("Failed to format configuration", err)
		return &exitError{code: exitConfig, err: err}
	}

	out.Highlight("Current Configuration")
	fmt.Fprintln(w)
	fmt.Fprint(w, string(data))

	fmt.Fprintln(w, "\nConfiguration sources (in order of priority):")
	fmt.Fprintln(w, "1. Command line flags")
	fmt.Fprintln(w, "2. Environment variables (TWEETCSV_*)")
	if ropts.configFile != "" {
		fmt.Fprintf(w, "3. Configuration file: %s\n", ropts.configFile)
	} else {
		fmt.Fprintln(w, "3. Configuration file: (first found of the default locations)")
	}
	fmt.Fprintln(w, "4. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, ropts *rootOptions) error {
	out := ui.NewPrinter(cmd.OutOrStdout())
	errOut := ui.NewPrinter(cmd.ErrOrStderr())
	w := cmd.OutOrStdout()

	path := ropts.configFile
	if path == "" {
		for _, loc := range config.ConfigLocations() {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}
	if path != "" {
		out.Info("Validating configuration", path)
	} else {
		out.Info("Validating configuration", "(defaults and environment)")
	}

	cfg, err := config.Load(path, nil)
	if err != nil {
		errOut.Error("Configuration validation failed", err)
		return &exitError{code: exitConfig, err: err}
	}

	var warnings, problems []string
	if err := os.MkdirAll(cfg.Output.Directory, 0755); err != nil {
		problems = append(problems, fmt.Sprintf("Cannot create output directory: %v", err))
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	_, err = auth.Resolve(auth.Params{
		Hashtag:           cfg.Search.Hashtag,
		ConsumerKey:       cfg.Twitter.ConsumerKey,
		ConsumerSecret:    cfg.Twitter.ConsumerSecret,
		AccessToken:       cfg.Twitter.AccessToken,
		AccessTokenSecret: cfg.Twitter.AccessTokenSecret,
	}, os.Getenv)
	if err != nil {
		warnings = append(warnings, err.Error()+" (pass them as flags or use --profile)")
	}

	if len(problems) > 0 {
		errOut.Error("Configuration has errors:")
		for _, p := range problems {
			fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", p)
		}
		return &exitError{code: exitConfig, err: fmt.Errorf("%d configuration errors", len(problems))}
	}

	if len(warnings) > 0 {
		out.Warning("Configuration warnings:")
		for _, warn := range warnings {
			fmt.Fprintf(w, "  - %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	out.Success("Configuration is valid")

	fmt.Fprintln(w, "\nConfiguration summary:")
	fmt.Fprintf(w, "  Hashtag: %s\n", auth.NormalizeHashtag(cfg.Search.Hashtag))
	fmt.Fprintf(w, "  Since: %s\n", cfg.Search.Since)
	fmt.Fprintf(w, "  Output directory: %s\n", cfg.Output.Directory)
	fmt.Fprintf(w, "  Rate limit: %d requests per %s (wait: %t)\n",
		cfg.Search.RequestsPerWindow, cfg.Search.Window, cfg.Search.WaitOnRateLimit)
	fmt.Fprintf(w, "  Log level: %s\n", cfg.Logging.Level)
	return nil
}
