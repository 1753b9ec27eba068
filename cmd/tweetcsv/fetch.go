package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tweetcsv/pkg/auth"
	"tweetcsv/pkg/config"
	apierrors "tweetcsv/pkg/errors"
	"tweetcsv/pkg/logger"
	"tweetcsv/pkg/scraper"
	"tweetcsv/pkg/storage"
	"tweetcsv/pkg/twitter"
	"tweetcsv/pkg/ui"
)

type fetchOptions struct {
	root *rootOptions

	hashtag        string
	consumerKey    string
	consumerSecret string
	accessToken    string
	accessSecret   string
	since          string
	output         string
	profile        string
	pageSize       int
	noWait         bool
}

func newFetchCmd(ropts *rootOptions) *cobra.Command {
	o := &fetchOptions{root: ropts}
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Search a hashtag and append the tweets to <hashtag>-tweets.csv",
		Long: `Search the Twitter standard search API for a hashtag and append one CSV row
per tweet to <hashtag>-tweets.csv in the output directory.

The file never gets a header row; run 'tweetcsv schema' for the column list.
Rows are appended as they arrive, so an interrupted or failed run keeps every
row it already wrote. Running fetch twice appends duplicates.`,
		Example: `  # Search the default hashtag with credentials from the environment
  tweetcsv

  # Search #golang since a date, writing into ./data
  tweetcsv fetch --hashtag golang --since 2024-01-01 --output ./data

  # Pass every secret explicitly
  tweetcsv --hashtag golang --consumerKey KEY --consumerSecret SECRET \
    --accessToken TOKEN --accessSecret TOKEN_SECRET

  # Fill missing secrets from a stored profile
  tweetcsv fetch --hashtag golang --profile work`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, o)
		},
	}
	bindFetchFlags(cmd, o)
	return cmd
}

func bindFetchFlags(cmd *cobra.Command, o *fetchOptions) {
	f := cmd.Flags()
	f.StringVar(&o.hashtag, "hashtag", "", `hashtag to search for, with or without '#' (default "#donaldtrump")`)
	f.StringVar(&o.consumerKey, "consumerKey", "", "Twitter API consumer key (env CONSUMER_KEY)")
	f.StringVar(&o.consumerSecret, "consumerSecret", "", "Twitter API consumer secret (env CONSUMER_SECRET)")
	f.StringVar(&o.accessToken, "accessToken", "", "Twitter API access token (env ACCESS_TOKEN)")
	f.StringVar(&o.accessSecret, "accessSecret", "", "Twitter API access token secret (env ACCESS_TOKEN_SECRET)")
	f.StringVar(&o.since, "since", "", `only tweets created on or after this YYYY-MM-DD date (default "`+config.DefaultSince+`")`)
	f.StringVarP(&o.output, "output", "o", "", "directory of the CSV file (default: current directory)")
	f.StringVarP(&o.profile, "profile", "p", "", "stored credential profile used for secrets not given otherwise")
	f.IntVar(&o.pageSize, "page-size", 0, fmt.Sprintf("tweets per search request, at most %d", config.MaxPageSize))
	f.BoolVar(&o.noWait, "no-wait", false, "fail instead of waiting when the rate limit is reached")
}

// flags returns the options the user actually set, keyed for
// config.MergeCommandLineFlags.
func (o *fetchOptions) flags() map[string]interface{} {
	flags := map[string]interface{}{
		"hashtag":             o.hashtag,
		"consumer-key":        o.consumerKey,
		"consumer-secret":     o.consumerSecret,
		"access-token":        o.accessToken,
		"access-token-secret": o.accessSecret,
		"since":               o.since,
		"output":              o.output,
		"page-size":           o.pageSize,
		"log-level":           o.root.logLevel,
	}
	if o.noWait {
		flags["wait-on-rate-limit"] = false
	}
	return flags
}

func runFetch(cmd *cobra.Command, o *fetchOptions) error {
	out := ui.NewPrinter(cmd.OutOrStdout())
	errOut := ui.NewPrinter(cmd.ErrOrStderr())

	cfg, err := config.Load(o.root.configFile, o.flags())
	if err != nil {
		errOut.Error("Failed to load configuration", err)
		errOut.Println(ui.HelpHint)
		return &exitError{code: exitConfig, err: err}
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		errOut.Error("Failed to initialize logging", err)
		return &exitError{code: exitConfig, err: err}
	}
	log := logger.GetLogger()

	res, err := resolveCredentials(cfg, o.profile)
	if err != nil {
		log.WithError(err).Error("Credential resolution failed")
		var missing *auth.MissingCredentialsError
		if errors.As(err, &missing) {
			errOut.Println(ui.MissingArgsMessage)
			errOut.Println(ui.HelpHint)
		} else {
			errOut.Error("Failed to resolve credentials", err)
		}
		return &exitError{code: exitConfig, err: err}
	}
	if len(res.FromEnv) > 0 {
		log.WithField("variables", res.FromEnv).Debug("Secrets read from the environment")
	}
	if res.FromProfile != "" {
		log.WithField("profile", res.FromProfile).Info("Using stored credentials")
	}

	writer, err := storage.NewCSVWriter(cfg.Output.Directory, res.Hashtag)
	if err != nil {
		log.WithError(err).Error("Failed to prepare output file")
		errOut.Println(ui.FailureMessage)
		return &exitError{code: exitFetch, err: err}
	}
	if rows, err := writer.Rows(); err == nil && rows > 0 {
		log.WithFields(map[string]interface{}{
			"file": writer.Path(),
			"rows": rows,
		}).Info("Appending to existing file")
	}

	client := twitter.NewClient(twitter.Config{
		ConsumerKey:       res.Credentials.ConsumerKey,
		ConsumerSecret:    res.Credentials.ConsumerSecret,
		AccessToken:       res.Credentials.AccessToken,
		AccessTokenSecret: res.Credentials.AccessTokenSecret,
		BaseURL:           cfg.Twitter.APIBaseURL,
		Timeout:           cfg.Twitter.Timeout,
		WaitOnRateLimit:   cfg.Search.WaitOnRateLimit,
		RequestsPerWindow: cfg.Search.RequestsPerWindow,
		Window:            cfg.Search.Window,
	}, log)

	tracker := ui.NewStatusTracker()
	s := scraper.New(client, writer, log, scraper.WithProgress(func(n int) {
		tracker.Update(n)
		out.Println(ui.ProgressLine(n))
	}))

	out.Println(ui.StartMessage)
	result, err := s.Run(cmd.Context(), scraper.Criteria{
		Hashtag:         res.Hashtag,
		Since:           cfg.Search.Since,
		PageSize:        cfg.Search.PageSize,
		WaitOnRateLimit: cfg.Search.WaitOnRateLimit,
	})
	if err != nil {
		log.WithError(err).WithFields(map[string]interface{}{
			"hashtag": res.Hashtag,
			"count":   tracker.Fetched,
			"file":    writer.Path(),
		}).Error("Fetch failed")
		if errors.Is(err, context.Canceled) {
			errOut.Warning("Interrupted", fmt.Sprintf("%d tweets kept in %s", tracker.Fetched, writer.Path()))
		}
		if apierrors.IsAuth(err) {
			errOut.Warning(ui.AuthHint)
		}
		errOut.Println(ui.FailureMessage)
		return &exitError{code: exitFetch, err: err}
	}

	log.WithFields(map[string]interface{}{
		"run_id": result.RunID,
		"pages":  result.Pages,
	}).Info("Fetch complete: " + tracker.Summary())
	out.Success(ui.SavedMessage(result.File))
	return nil
}

// resolveCredentials fills the secrets missing from cfg from the environment
// and, when named, a stored profile.
func resolveCredentials(cfg *config.Config, profile string) (auth.Resolution, error) {
	resolver := auth.NewResolver()
	if profile != "" {
		manager, err := auth.NewManager()
		if err != nil {
			return auth.Resolution{}, fmt.Errorf("open credential store: %w", err)
		}
		resolver.Profiles = manager
		resolver.Profile = profile
	}
	return resolver.Resolve(auth.Params{
		Hashtag:           cfg.Search.Hashtag,
		ConsumerKey:       cfg.Twitter.ConsumerKey,
		ConsumerSecret:    cfg.Twitter.ConsumerSecret,
		AccessToken:       cfg.Twitter.AccessToken,
		AccessTokenSecret: cfg.Twitter.AccessTokenSecret,
	})
}
