package cmd

import (
	"fmt"
	"os"

	"github.com/rohmanhakim/web-scrapper/internal/config"
	"github.com/rohmanhakim/web-scrapper/internal/extractor"
	"github.com/rohmanhakim/web-scrapper/internal/fetcher"
	"github.com/rohmanhakim/web-scrapper/internal/frontier"
	"github.com/rohmanhakim/web-scrapper/internal/metadata"
	"github.com/rohmanhakim/web-scrapper/internal/normalize"
	"github.com/rohmanhakim/web-scrapper/internal/processor"
	"github.com/rohmanhakim/web-scrapper/internal/scheduler"
	"github.com/rohmanhakim/web-scrapper/internal/storage"
	"github.com/rohmanhakim/web-scrapper/pkg/balancer"
	"github.com/rohmanhakim/web-scrapper/pkg/hashutil"
	"github.com/rohmanhakim/web-scrapper/pkg/retry"
	"github.com/rohmanhakim/web-scrapper/pkg/timeutil"
	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	startURL     string
	concurrent   int
	slave        bool
	clearStore   bool
	allowedHosts []string
	outputDir    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "web-scrapper",
	Short: "A distributed web crawler over a shared URL frontier.",
	Long: `web-scrapper crawls the web from a seed URL using a pool of
concurrent workers. Multiple processes can attach to the same shared
frontier (a Redis server holding the pending and visited sets) so a
crawl partitions horizontally; rate limiting paces outbound requests
across composable windows.

The crawl ends on its own once no URLs remain and no worker can
produce new ones, or on SIGINT/SIGTERM after draining in-flight
workers.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		recorder := metadata.NewRecorder("web-scrapper")

		window, err := balancer.ParseWindow(cfg.RateWindow())
		if err != nil {
			return err
		}
		loadBalancer := balancer.New(cfg.RateLimit(), window)

		var fr frontier.Frontier
		if cfg.FrontierHost() == "" {
			fr = frontier.NewMemoryFrontier()
		} else {
			redisFrontier := frontier.NewRedisFrontier(
				cfg.FrontierHost(),
				cfg.FrontierPort(),
				cfg.ToVisitSet(),
				cfg.VisitedSet(),
			)
			if clearStore {
				if err := redisFrontier.Init(cmd.Context()); err != nil {
					return err
				}
				if err := redisFrontier.Clear(cmd.Context()); err != nil {
					return err
				}
			}
			fr = redisFrontier
		}

		htmlFetcher := fetcher.NewHtmlFetcher(&recorder, cfg.Timeout())
		anchorExtractor := extractor.NewAnchorExtractor(&recorder)
		urlNormalizer := normalize.NewURLNormalizer(&recorder)
		localSink := storage.NewLocalSink(&recorder, cfg.OutputDir(), hashutil.HashAlgoBLAKE3)
		markdownProcessor := processor.NewMarkdownProcessor(&recorder, &localSink)

		retryParam := retry.NewRetryParam(
			0,
			cfg.Jitter(),
			cfg.RandomSeed(),
			cfg.MaxAttempt(),
			timeutil.NewBackoffParam(
				cfg.BackoffInitialDuration(),
				cfg.BackoffMultiplier(),
				cfg.BackoffMaxDuration(),
			),
		)

		manager := scheduler.NewManager(
			fr,
			loadBalancer,
			&htmlFetcher,
			&anchorExtractor,
			&urlNormalizer,
			&markdownProcessor,
			&recorder,
			&recorder,
			retryParam,
			cfg.UserAgent(),
		)

		var constraints []normalize.Constraint
		for _, host := range allowedHosts {
			constraints = append(constraints, normalize.SameHost(host))
		}
		manager.Configure(constraints, cfg.MaxConcurrent(), cfg.StartURL())

		return manager.Run(cmd.Context())
	},
}

// loadConfig builds the effective configuration: config file (or
// defaults) overlaid with CLI flags. --slave wins over any start URL.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return config.Config{}, fmt.Errorf("loading %s: %w", cfgFile, err)
		}
		cfg = loaded
	}
	if startURL != "" {
		cfg.SetStartURL(startURL)
	}
	if concurrent > 0 {
		cfg.SetMaxConcurrent(concurrent)
	}
	if slave {
		// join an existing crawl without seeding
		cfg.SetStartURL("")
	}
	if outputDir != "" {
		cfg.SetOutputDir(outputDir)
	}
	return cfg, nil
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	rootCmd.PersistentFlags().StringVar(&startURL, "start-url", "", "seed URL to start crawling from")
	rootCmd.PersistentFlags().IntVar(&concurrent, "concurrent", 0, "override the number of concurrent crawl workers")
	rootCmd.PersistentFlags().BoolVar(&slave, "slave", false, "do not seed a start URL, join an existing crawl")
	rootCmd.PersistentFlags().BoolVar(&clearStore, "clear", false, "flush the frontier backing store before running")
	rootCmd.PersistentFlags().StringArrayVar(&allowedHosts, "allowed-host", []string{}, "restrict discovered links to these hostnames (can be repeated)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "root output directory for processed pages")
}
