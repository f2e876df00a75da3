package main

import (
	"context"
	"flag"
	"os"

	"github.com/zakhij/subreddit-scraper/internal/config"
	"github.com/zakhij/subreddit-scraper/internal/database"
	"github.com/zakhij/subreddit-scraper/internal/display"
	"github.com/zakhij/subreddit-scraper/internal/ingest"
	"github.com/zakhij/subreddit-scraper/internal/reddit"
	"github.com/zakhij/subreddit-scraper/internal/repository"
	"github.com/zakhij/subreddit-scraper/pkg/logger"
)

func main() {
	var (
		lookbackDate = flag.String("lookback_date", "", "Date to scrape back to (e.g., 2024-01-01)")
		subreddit    = flag.String("subreddit", "", "Name of the subreddit to scrape")
		subredditURL = flag.String("subreddit_url", "", "URL of the subreddit to scrape")
		show         = flag.Bool("show", false, "Print stored threads and comments after the run")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New()

	// Validate inputs before touching the network or the database
	name, err := ingest.ResolveSubredditName(*subreddit, *subredditURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid arguments")
	}
	if *lookbackDate == "" {
		log.Fatal().Msg("--lookback_date is required")
	}
	lookback, err := ingest.ParseLookbackDate(*lookbackDate)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid lookback date")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Reddit.ValidateCredentials(); err != nil {
		log.Fatal().Err(err).Msg("Missing Reddit API credentials")
	}

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "./migrations"
	}
	if err := db.RunMigrations(migrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories, source and orchestrator
	repos := repository.New(db)
	source := reddit.NewClient(cfg, log)
	orchestrator := ingest.NewOrchestrator(source, repos, log)

	ctx := context.Background()
	summary, err := orchestrator.Run(ctx, ingest.Options{
		Subreddit:    name,
		LookbackDate: lookback,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion run failed")
	}

	for _, msg := range summary.Errors {
		log.Warn().Str("run_id", summary.RunID).Msg(msg)
	}

	if *show {
		renderer := display.NewRenderer(repos, os.Stdout)
		if err := renderer.ShowSubredditThreads(ctx, summary.Subreddit, lookback); err != nil {
			log.Fatal().Err(err).Msg("Failed to display stored data")
		}
	}
}
