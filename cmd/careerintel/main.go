package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"careerintel/pkg/aggregate"
	"careerintel/pkg/cache"
	"careerintel/pkg/config"
	"careerintel/pkg/cvanalyzer"
	"careerintel/pkg/export"
	"careerintel/pkg/match"
	"careerintel/pkg/models"
	"careerintel/pkg/server"
	"careerintel/pkg/sources"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Command line flags
	var (
		queryFlag      = flag.String("query", "", "Job search query")
		locationFlag   = flag.String("location", "", "Job location")
		remoteFlag     = flag.Bool("remote", false, "Remote positions only")
		sourcesFlag    = flag.String("sources", "", "Sources to query (comma-separated, default all)")
		skillsFlag     = flag.String("skills", "", "Candidate skills for match scoring (comma-separated)")
		configFlag     = flag.String("config", "config/sources.json", "Path to sources configuration")
		serveFlag      = flag.Bool("serve", false, "Run the HTTP API server")
		verboseFlag    = flag.Bool("verbose", false, "Verbose logging")
		exportFlag     = flag.String("export", "", "Export format (csv, json) for one-shot results")
		exportFileFlag = flag.String("export-file", "", "Custom export filename")
		exportDirFlag  = flag.String("export-dir", "exports", "Export output directory")
	)
	flag.Parse()

	// Setup logging
	logger := logrus.New()
	if *verboseFlag {
		logger.SetLevel(logrus.DebugLevel)
	}

	app, err := NewApplication(*configFlag, *exportDirFlag, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Close()

	if *serveFlag {
		if err := app.Serve(); err != nil {
			logger.Fatalf("Server failed: %v", err)
		}
		return
	}

	query := strings.TrimSpace(*queryFlag)
	if query == "" {
		query = os.Getenv("DEFAULT_QUERY")
	}
	if query == "" {
		logger.Fatal("No query provided. Use -query flag or set DEFAULT_QUERY environment variable")
	}

	var sourceNames []string
	if *sourcesFlag != "" {
		for _, s := range strings.Split(*sourcesFlag, ",") {
			sourceNames = append(sourceNames, strings.TrimSpace(s))
		}
	}

	var skills []string
	if *skillsFlag != "" {
		for _, s := range strings.Split(*skillsFlag, ",") {
			skills = append(skills, strings.TrimSpace(s))
		}
	}

	if err := app.Run(query, *locationFlag, *remoteFlag, sourceNames, skills, *exportFlag, *exportFileFlag); err != nil {
		logger.Fatalf("Aggregation failed: %v", err)
	}
}

type Application struct {
	config      config.Config
	registry    *sources.Registry
	redis       *cache.Redis
	aggregator  *aggregate.Aggregator
	scorer      *match.Scorer
	analyzer    *cvanalyzer.Analyzer
	csvExporter *export.CSVExporter
	exportDir   string
	logger      *logrus.Logger
}

func NewApplication(configPath, exportDir string, logger *logrus.Logger) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		logger.Warnf("Config %s not found, using built-in defaults", configPath)
		cfg = config.Default()
	}

	if port := os.Getenv("HTTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			cfg.GlobalSettings.HTTPPort = p
		}
	}

	registry, err := sources.BuildRegistry(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build source registry: %w", err)
	}

	redis := cache.NewRedis(logger)

	return &Application{
		config:      cfg,
		registry:    registry,
		redis:       redis,
		aggregator:  aggregate.New(registry, redis, logger, cfg.GlobalSettings),
		scorer:      match.NewScorer(),
		analyzer:    cvanalyzer.New(),
		csvExporter: export.NewCSVExporter(exportDir),
		exportDir:   exportDir,
		logger:      logger,
	}, nil
}

// Serve runs the HTTP API until SIGINT or SIGTERM.
func (app *Application) Serve() error {
	srv := server.New(app.aggregator, app.scorer, app.analyzer, app.registry, app.redis, app.logger)

	errCh := make(chan error, 1)
	go func() {
		app.logger.Infof("Listening on :%d", app.config.GlobalSettings.HTTPPort)
		errCh <- srv.Listen(app.config.GlobalSettings.HTTPPort)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		app.logger.Infof("Received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

// Run executes one aggregation cycle from the command line, optionally
// scoring the results against the provided skill list.
func (app *Application) Run(query, location string, remoteOnly bool, sourceNames, skills []string, exportFormat, exportFile string) error {
	start := time.Now()
	app.logger.Infof("Searching for %q in %q", query, location)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	postings, err := app.aggregator.Aggregate(ctx, aggregate.Request{
		Query:      query,
		Location:   location,
		RemoteOnly: remoteOnly,
		Sources:    sourceNames,
	})
	if err != nil {
		return err
	}
	app.logger.Infof("Aggregated %d postings in %v", len(postings), time.Since(start))

	if len(skills) > 0 {
		results, err := app.scorer.Score(models.CandidateProfile{Skills: skills, AcceptsRemote: true}, postings, nil)
		if err != nil {
			return err
		}
		app.displayMatches(results)
		if exportFormat != "" {
			return app.exportMatches(results, exportFormat, exportFile)
		}
		return nil
	}

	app.displayPostings(postings)
	if exportFormat != "" {
		return app.exportPostings(postings, exportFormat, exportFile)
	}
	return nil
}

func (app *Application) displayPostings(postings []models.JobPosting) {
	if len(postings) == 0 {
		fmt.Println("\nNo jobs found.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Printf("JOB POSTINGS (%d found)\n", len(postings))
	fmt.Println(strings.Repeat("=", 80))

	for i, p := range postings {
		fmt.Printf("\n%d. %s\n", i+1, p.Title)
		fmt.Printf("   Company: %s\n", p.Company)
		fmt.Printf("   Location: %s (%s)\n", p.Location, p.WorkMode)
		fmt.Printf("   Seniority: %s\n", p.Seniority)
		if p.Salary != "" {
			fmt.Printf("   Salary: %s\n", p.Salary)
		}
		if len(p.Skills) > 0 {
			fmt.Printf("   Skills: %s\n", strings.Join(p.Skills, ", "))
		}
		fmt.Printf("   Source: %s\n", p.Source)
		fmt.Printf("   Apply: %s\n", p.ApplyURL)
	}
}

func (app *Application) displayMatches(results []models.MatchResult) {
	if len(results) == 0 {
		fmt.Println("\nNo jobs found.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Printf("RANKED MATCHES (%d found)\n", len(results))
	fmt.Println(strings.Repeat("=", 80))

	for i, r := range results {
		fmt.Printf("\n%d. [%.2f] %s\n", i+1, r.MatchScore, r.Title)
		fmt.Printf("   Company: %s\n", r.Company)
		fmt.Printf("   Location: %s (%s)\n", r.Location, r.WorkMode)
		if len(r.Skills) > 0 {
			fmt.Printf("   Skills: %s\n", strings.Join(r.Skills, ", "))
		}
		fmt.Printf("   Source: %s\n", r.Source)
		fmt.Printf("   Apply: %s\n", r.ApplyURL)
	}
}

func (app *Application) exportPostings(postings []models.JobPosting, format, filename string) error {
	switch strings.ToLower(format) {
	case "csv":
		path, err := app.csvExporter.ExportPostings(postings, filename)
		if err != nil {
			return fmt.Errorf("CSV export failed: %w", err)
		}
		app.logger.Infof("Exported %d postings to %s", len(postings), path)
		return nil
	case "json":
		return app.exportJSON(postings, len(postings), filename)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

func (app *Application) exportMatches(results []models.MatchResult, format, filename string) error {
	switch strings.ToLower(format) {
	case "csv":
		path, err := app.csvExporter.ExportMatches(results, filename)
		if err != nil {
			return fmt.Errorf("CSV export failed: %w", err)
		}
		app.logger.Infof("Exported %d matches to %s", len(results), path)
		return nil
	case "json":
		return app.exportJSON(results, len(results), filename)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

func (app *Application) exportJSON(payload any, count int, filename string) error {
	if err := os.MkdirAll(app.exportDir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	if filename == "" {
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		filename = fmt.Sprintf("jobs_export_%s.json", timestamp)
	}
	if !strings.HasSuffix(filename, ".json") {
		filename += ".json"
	}

	path := filepath.Join(app.exportDir, filename)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		return fmt.Errorf("failed to encode export JSON: %w", err)
	}

	app.logger.Infof("Exported %d records to %s", count, path)
	return nil
}

func (app *Application) Close() {
	if app.redis != nil {
		app.redis.Close()
	}
}
