package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/xhad/fileseed/internal/models"
	cfgPkg "github.com/xhad/fileseed/pkg/config"
	"github.com/xhad/fileseed/pkg/processor"
	"github.com/xhad/fileseed/pkg/seeder"
	"github.com/xhad/fileseed/pkg/store"
)

type Config struct {
	Backend      string
	DBUrl        string
	DBName       string
	Collection   string
	Bucket       string
	Timeout      time.Duration
	RateLimit    float64
	InferTypes   bool
	Lowercase    bool
	Files        []models.SeedEntry
	SkipSeed     bool
	Verify       bool
	NoColor      bool
	HideProgress bool
}

func main() {
	config, err := parseFlags()
	if err != nil {
		log.Fatal(err)
	}

	if err := run(config); err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}

func parseFlags() (Config, error) {
	var config Config
	var configPath string

	registerFlags(flag.CommandLine, &config, &configPath)
	flag.Parse()

	cfg, err := cfgPkg.LoadConfig(configPath, flagOverrides(flag.CommandLine, config))
	if err != nil {
		return config, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config: %v", e)
		}
		return config, fmt.Errorf("invalid configuration (%d errors)", len(errs))
	}

	// Update config struct
	config.Backend = cfg.Database.Backend
	config.DBUrl = cfg.Database.URL
	config.DBName = cfg.Database.Name
	config.Collection = cfg.Database.Collection
	config.Bucket = cfg.Database.Bucket
	config.Timeout = cfg.Database.Timeout
	config.RateLimit = cfg.Seed.RateLimit
	config.InferTypes = cfg.Seed.InferTypes
	config.Lowercase = cfg.Seed.LowercaseTypes
	config.Files = cfg.Seed.Files
	config.NoColor = cfg.UI.NoColor
	config.HideProgress = cfg.UI.HideProgress

	return config, nil
}

func registerFlags(fs *flag.FlagSet, config *Config, configPath *string) {
	fs.StringVar(configPath, "config", "", "Path to config file")
	fs.StringVar(&config.Backend, "backend", "", "Store backend: mongo, postgres or memory")
	fs.StringVar(&config.DBUrl, "db-url", "", "Database connection string")
	fs.StringVar(&config.DBName, "db-name", "", "Database name")
	fs.StringVar(&config.Collection, "collection", "", "Metadata collection name")
	fs.StringVar(&config.Bucket, "bucket", "", "Binary storage bucket name")
	fs.DurationVar(&config.Timeout, "timeout", 0, "Per-operation store timeout")
	fs.Float64Var(&config.RateLimit, "rate-limit", 0, "Maximum upserts per second (0 = unlimited)")
	fs.BoolVar(&config.InferTypes, "infer-types", false, "Infer missing file types from filenames")
	fs.BoolVar(&config.Lowercase, "lowercase-types", false, "Lower-case file types before seeding")
	fs.BoolVar(&config.SkipSeed, "skip-seed", false, "Only inspect the collections, do not seed")
	fs.BoolVar(&config.Verify, "verify", false, "Verify the collection matches the seed list")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&config.HideProgress, "no-progress", false, "Disable the progress bar")
}

// flagOverrides applies the flags that were set on the command line on top
// of the config file.
func flagOverrides(fs *flag.FlagSet, config Config) cfgPkg.Override {
	return func(cfg *cfgPkg.Config) {
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "backend":
				cfg.Database.Backend = config.Backend
			case "db-url":
				cfg.Database.URL = config.DBUrl
			case "db-name":
				cfg.Database.Name = config.DBName
			case "collection":
				cfg.Database.Collection = config.Collection
			case "bucket":
				cfg.Database.Bucket = config.Bucket
			case "timeout":
				cfg.Database.Timeout = config.Timeout
			case "rate-limit":
				cfg.Seed.RateLimit = config.RateLimit
			case "infer-types":
				cfg.Seed.InferTypes = config.InferTypes
			case "lowercase-types":
				cfg.Seed.LowercaseTypes = config.Lowercase
			case "no-color":
				cfg.UI.NoColor = config.NoColor
			case "no-progress":
				cfg.UI.HideProgress = config.HideProgress
			}
		})
	}
}

func run(config Config) error {
	color.NoColor = color.NoColor || config.NoColor

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := processor.NewWithConfig(processor.ProcessorConfig{
		InferTypes:     config.InferTypes,
		LowercaseTypes: config.Lowercase,
	})

	entries, err := p.Process(config.Files)
	if err != nil {
		return fmt.Errorf("invalid seed list: %w", err)
	}

	metaStore, err := store.Open(ctx, store.Config{
		Backend:    config.Backend,
		URL:        config.DBUrl,
		Database:   config.DBName,
		Collection: config.Collection,
		Bucket:     config.Bucket,
		Timeout:    config.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize %s store: %w", config.Backend, err)
	}

	defer func() {
		warn("close store", metaStore.Close(context.Background()))
	}()

	var progress func(models.SeedEntry)
	var bar interface{ Finish() error }
	if !config.HideProgress && !config.SkipSeed {
		b := getProgressBar(len(entries), " Seeding file metadata")
		progress = func(models.SeedEntry) {
			warn("progress bar", b.Add(1))
		}
		bar = b
	}

	s := seeder.NewWithConfig(metaStore, seeder.SeederConfig{
		RateLimit:  config.RateLimit,
		OnProgress: progress,
	})

	if !config.SkipSeed {
		color.Blue("\nSeeding %s.%s with %d files\n", config.DBName, config.Collection, len(entries))

		report, err := s.Seed(ctx, entries)
		if bar != nil {
			warn("progress bar", bar.Finish())
			fmt.Println()
		}
		if err != nil {
			return err
		}
		printReport(report)
	}

	if config.Verify {
		if err := s.Verify(ctx, entries); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		color.Green("✓ Collection matches the seed list\n")
	}

	return inspect(ctx, metaStore, config)
}
