package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/andywolf/chronicle/internal/classify"
	"github.com/andywolf/chronicle/internal/cloud/gcp"
	"github.com/andywolf/chronicle/internal/config"
	"github.com/andywolf/chronicle/internal/github"
	"github.com/andywolf/chronicle/internal/observability"
	"github.com/andywolf/chronicle/internal/publish"
	"github.com/andywolf/chronicle/internal/report"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the daily activity report",
	Long: `Generate a markdown activity report for the repository.

The report covers the 24 hours ending at the most recent 8AM. Issue and
comment data is fetched via the gh CLI, summarized with OpenAI, and
written to the local report archive.

Example:
  chronicle generate
  chronicle generate --repo github.com/org/myapp --date 2026-08-27
  chronicle generate --dry-run`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().String("repo", "", "GitHub repository (owner/name), overrides config")
	generateCmd.Flags().String("date", "", "report date (YYYY-MM-DD), defaults to the current window")
	generateCmd.Flags().Bool("check-actions", false, "classify short comments for follow-up needs")
	generateCmd.Flags().Bool("gist", false, "also publish the report as a secret gist")
	generateCmd.Flags().Bool("dry-run", false, "print the report to stdout instead of writing it")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if repo, _ := cmd.Flags().GetString("repo"); repo != "" {
		cfg.Project.Repository = repo
	}
	if cmd.Flags().Changed("check-actions") {
		cfg.Report.CheckActions, _ = cmd.Flags().GetBool("check-actions")
	}
	if err := cfg.ValidateForGenerate(); err != nil {
		return err
	}

	owner, repoName, err := github.ParseRepository(cfg.Project.Repository)
	if err != nil {
		return err
	}
	repository := owner + "/" + repoName

	runID := uuid.New().String()
	cloudLog := gcp.NewLogger(ctx, runID, gcp.WithRepository(repository))
	defer cloudLog.Close()
	logger := log.New(os.Stderr, "", log.LstdFlags)

	start, end, date, err := reportWindow(cmd)
	if err != nil {
		return err
	}
	cloudLog.Log(gcp.SeverityInfo, "starting report run", map[string]interface{}{
		"window_start": start.Format(time.RFC3339),
		"window_end":   end.Format(time.RFC3339),
	})

	tracer, trace := startTracer(ctx, cfg, logger, runID, repository, date)
	defer tracer.Stop(ctx)

	classifier, err := buildClassifier(ctx, cfg, logger, tracer, trace)
	if err != nil {
		return err
	}

	fetcher, err := buildFetcher(ctx, cfg, logger, repository)
	if err != nil {
		return err
	}

	issues, err := fetcher.IssuesUpdatedSince(ctx, start)
	if err != nil {
		cloudLog.LogError("issue fetch failed: " + err.Error())
		tracer.CompleteTrace(trace, observability.CompleteOptions{Status: "failed"})
		return err
	}
	cloudLog.Log(gcp.SeverityInfo, "fetched issues", map[string]interface{}{"count": len(issues)})

	window, err := cfg.CoalesceWindow()
	if err != nil {
		return err
	}

	generator := report.NewGenerator(classifier, logger, report.Options{
		CoalesceWindow: window,
		CheckActions:   cfg.Report.CheckActions,
		Bots:           cfg.Report.Bots,
	})
	output, actions := generator.Daily(ctx, date, issues, start, end)

	tracer.CompleteTrace(trace, observability.CompleteOptions{
		Status:      "completed",
		IssueCount:  len(issues),
		ActionItems: len(actions),
	})

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		fmt.Fprint(cmd.OutOrStdout(), output)
		return nil
	}

	publisher := publish.NewPublisher(logger, publish.WithOutputDir(cfg.Report.OutputDir))
	path, err := publisher.Write(owner, repoName, date, output)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)

	if gist, _ := cmd.Flags().GetBool("gist"); gist {
		url, err := publisher.Gist(ctx, owner, repoName, date, output)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Gist created: %s\n", url)
	}

	return nil
}

// reportWindow resolves the reporting window. An explicit --date anchors
// the window at 8AM on that day; otherwise the most recent 8AM is used.
func reportWindow(cmd *cobra.Command) (start, end, date time.Time, err error) {
	if raw, _ := cmd.Flags().GetString("date"); raw != "" {
		date, err = time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, time.Time{}, fmt.Errorf("invalid --date %q (want YYYY-MM-DD)", raw)
		}
		end = date.Add(8 * time.Hour)
		return end.AddDate(0, 0, -1), end, date, nil
	}

	start, end = publish.Window(time.Now())
	date = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location())
	return start, end, date, nil
}

// startTracer builds the tracer and opens the trace for this run.
func startTracer(ctx context.Context, cfg *config.Config, logger *log.Logger, runID, repository string, date time.Time) (observability.Tracer, observability.TraceContext) {
	tracer := buildTracer(ctx, cfg, logger)
	trace := tracer.StartTrace(runID, observability.TraceOptions{
		Repository: repository,
		ReportDate: date.Format("2006-01-02"),
	})
	return tracer, trace
}

// buildTracer creates a Langfuse tracer when configured, resolving the
// ingestion keys from Secret Manager. Tracing is best-effort: a key
// resolution failure disables it with a warning instead of failing the
// run.
func buildTracer(ctx context.Context, cfg *config.Config, logger *log.Logger) observability.Tracer {
	if !cfg.Langfuse.Enabled || cfg.Langfuse.PublicKeySecret == "" || cfg.Langfuse.SecretKeySecret == "" {
		return &observability.NoOpTracer{}
	}

	publicKey, err := fetchSecret(ctx, cfg, cfg.Langfuse.PublicKeySecret)
	if err != nil {
		logger.Printf("Warning: resolving Langfuse public key failed, tracing disabled: %v", err)
		return &observability.NoOpTracer{}
	}

	secretKey, err := fetchSecret(ctx, cfg, cfg.Langfuse.SecretKeySecret)
	if err != nil {
		logger.Printf("Warning: resolving Langfuse secret key failed, tracing disabled: %v", err)
		return &observability.NoOpTracer{}
	}

	return observability.NewLangfuseTracer(observability.LangfuseConfig{
		PublicKey: publicKey,
		SecretKey: secretKey,
		BaseURL:   cfg.Langfuse.BaseURL,
	}, logger)
}

// buildClassifier resolves the OpenAI API key and constructs the
// completion client. When no key is configured the report degrades to
// verbatim quoting and title-only summaries, so a nil classifier is
// returned rather than an error.
func buildClassifier(ctx context.Context, cfg *config.Config, logger *log.Logger, tracer observability.Tracer, trace observability.TraceContext) (classify.Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" && cfg.OpenAI.APIKeySecret != "" {
		var err error
		apiKey, err = fetchSecret(ctx, cfg, cfg.OpenAI.APIKeySecret)
		if err != nil {
			return nil, fmt.Errorf("resolving OpenAI API key: %w", err)
		}
	}
	if apiKey == "" {
		logger.Printf("Warning: no OpenAI API key configured, summaries and action checks disabled")
		return nil, nil
	}

	client, err := classify.NewOpenAIClient(apiKey, logger,
		classify.WithModel(cfg.OpenAI.Model),
		classify.WithTracer(tracer))
	if err != nil {
		return nil, err
	}
	client.SetTrace(trace)
	return client, nil
}

// buildFetcher constructs the issue fetcher. With GitHub App credentials
// configured, an installation token is minted and passed to gh; otherwise
// gh's ambient authentication is used.
func buildFetcher(ctx context.Context, cfg *config.Config, logger *log.Logger, repository string) (*github.Fetcher, error) {
	if cfg.GitHub.AppID == 0 || cfg.GitHub.PrivateKeySecret == "" {
		logger.Printf("no GitHub App configured, using ambient gh authentication")
		return github.NewFetcher(repository, logger)
	}

	if cfg.GitHub.InstallationID == 0 {
		return nil, fmt.Errorf("GitHub App Installation ID is required")
	}

	keyPEM, err := fetchSecret(ctx, cfg, cfg.GitHub.PrivateKeySecret)
	if err != nil {
		return nil, fmt.Errorf("resolving GitHub App private key: %w", err)
	}

	auth, err := github.NewAppAuth(fmt.Sprintf("%d", cfg.GitHub.AppID), []byte(keyPEM))
	if err != nil {
		return nil, err
	}

	manager, err := github.NewTokenManager(auth, cfg.GitHub.InstallationID)
	if err != nil {
		return nil, err
	}

	token, err := manager.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("minting installation token: %w", err)
	}

	return github.NewFetcher(repository, logger, github.WithToken(token))
}

// fetchSecret reads one secret from GCP Secret Manager.
func fetchSecret(ctx context.Context, cfg *config.Config, secretPath string) (string, error) {
	var client *gcp.SecretManagerClient
	var err error
	if cfg.Cloud.Project != "" {
		client, err = gcp.NewSecretManagerClientForProject(ctx, cfg.Cloud.Project)
	} else {
		client, err = gcp.NewSecretManagerClient(ctx)
	}
	if err != nil {
		return "", err
	}
	defer client.Close()

	return client.FetchSecret(ctx, secretPath)
}
