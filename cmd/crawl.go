package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talentwire/jobs-crawler/internal/jobs"
)

func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Crawl all configured targets once",
		Long: `Runs the fallback crawl chain against every target in the
configuration file and logs a per-company summary.`,
		RunE: runCrawlCommand,
	}
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if len(cfg.Targets) == 0 {
		return errors.New("no targets configured")
	}

	eng, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer eng.close()

	totalJobs := 0
	for _, target := range cfg.Targets {
		orch := eng.orchestrator(target.WaitSelector)
		result := orch.CrawlWithFallback(cmd.Context(), jobs.CompanyTarget{
			Name:          target.Name,
			CareerPageURL: target.CareerURL,
		})
		totalJobs += len(result.Jobs)
		logger.Info("target crawled",
			zap.String("company", target.Name),
			zap.String("method", string(result.MethodUsed)),
			zap.Int("jobs", len(result.Jobs)),
		)
	}

	logger.Info("crawl finished",
		zap.Int("targets", len(cfg.Targets)),
		zap.Int("jobs", totalJobs),
	)
	return nil
}
