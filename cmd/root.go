// Package cmd defines the CLI commands for the jobs-crawler executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talentwire/jobs-crawler/internal/atsapi"
	"github.com/talentwire/jobs-crawler/internal/config"
	"github.com/talentwire/jobs-crawler/internal/crawler"
	"github.com/talentwire/jobs-crawler/internal/extract"
	"github.com/talentwire/jobs-crawler/internal/id/uuid"
	"github.com/talentwire/jobs-crawler/internal/logging"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs-crawler",
		Short: "Fallback crawler for corporate career pages",
		Long: `jobs-crawler extracts job listings from corporate career pages.
It tries a cheap direct HTML fetch first and escalates through ATS API
detection, a remote browser-automation service, and a local headless
browser until one stage produces results.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads config and builds the logger shared by all commands.
func bootstrap() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

// engine bundles the fallback stages built from one config.
type engine struct {
	cfg     config.Config
	primary *crawler.CollyCrawler
	remote  crawler.RemoteBrowser
	browser *crawler.ChromedpCrawler
	idGen   crawler.IDGenerator
	logger  *zap.Logger
}

func buildEngine(cfg config.Config, logger *zap.Logger) (*engine, error) {
	chain := extract.NewChain(logger)

	primary, err := crawler.NewCollyCrawler(crawler.CollyConfig{
		UserAgent:      cfg.Crawler.UserAgent,
		RequestTimeout: cfg.Crawler.RequestTimeout(),
		Concurrency:    cfg.Crawler.Concurrency,
		DomainDelay:    cfg.Crawler.DomainDelay(),
	}, chain, logger)
	if err != nil {
		return nil, fmt.Errorf("init primary crawler: %w", err)
	}

	eng := &engine{
		cfg:     cfg,
		primary: primary,
		idGen:   uuid.New(),
		logger:  logger,
	}

	if cfg.Puppeteer.ServiceURL != "" {
		eng.remote = crawler.NewPuppeteerClient(cfg.Puppeteer.ServiceURL, cfg.Puppeteer.GracePeriod(), logger)
	}

	if cfg.Browser.Enabled {
		browser, err := crawler.NewChromedpCrawler(crawler.ChromedpConfig{
			Headless:     cfg.Browser.Headless,
			UserAgent:    cfg.Browser.UserAgent,
			NavTimeout:   cfg.Browser.NavTimeout(),
			WaitSelector: cfg.Browser.WaitSelector,
			WaitTimeout:  cfg.Browser.WaitTimeout(),
			SettleDelay:  cfg.Browser.SettleDelay(),
			DomainQPS:    cfg.Browser.DomainQPS,
		}, chain, logger)
		if err != nil {
			logger.Warn("local browser unavailable, stage disabled", zap.Error(err))
		} else {
			eng.browser = browser
		}
	}

	return eng, nil
}

// orchestrator builds a fallback chain for one crawl. waitSelector overrides
// the global browser wait selector when a target specifies its own.
func (e *engine) orchestrator(waitSelector string) *crawler.Orchestrator {
	if waitSelector == "" {
		waitSelector = e.cfg.Browser.WaitSelector
	}
	ocfg := crawler.Config{
		APIDetectionEnabled: e.cfg.API.DetectionEnabled,
		BrowserEnabled:      e.cfg.Browser.Enabled,
		BrowserTimeout:      e.cfg.Browser.NavTimeout(),
		WaitSelector:        waitSelector,
	}

	var browser crawler.BrowserCrawler
	if e.browser != nil {
		browser = e.browser
	}

	apiFactory := func(companyName, careerURL string) (crawler.APIFetcher, error) {
		return atsapi.New(companyName, careerURL, e.logger)
	}

	return crawler.NewOrchestrator(ocfg, e.primary, apiFactory, e.remote, browser, e.idGen, e.logger)
}

func (e *engine) close() {
	if e.browser != nil {
		if err := e.browser.Close(); err != nil {
			e.logger.Warn("close browser", zap.Error(err))
		}
	}
}
