// Package cli implements the feedcache maintenance commands: inspect the
// cached feed, seed it from a JSON file, and clear it.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/feedcache"
	"github.com/lepinkainen/feedcache/internal/config"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"
)

// stdout is where commands print their output; tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// openStore opens the cache store at the configured database path.
var openStore = func() (*feedcache.Store, error) {
	return feedcache.New(config.DatabaseFile)
}

// CLI represents the complete command structure for the feedcache tool
type CLI struct {
	// Global flags
	DBFile  string `help:"Path to the cache database file (defaults to cache.dbfile from config, ./feedcache.db otherwise)"`
	Verbose bool   `help:"Enable debug logging"`

	Inspect InspectCmd `cmd:"" help:"Show the cached feed"`
	Seed    SeedCmd    `cmd:"" help:"Replace the cached feed with images from a JSON file"`
	Clear   ClearCmd   `cmd:"" help:"Delete the cached feed"`
}

// InspectCmd prints the cached feed
type InspectCmd struct {
	JSON bool `help:"Print the cached feed as JSON"`
}

// SeedCmd replaces the cached feed from a seed file
type SeedCmd struct {
	Input     string `short:"f" help:"Path to a JSON file holding the new feed" required:""`
	Timestamp string `help:"Snapshot timestamp in RFC 3339 form (defaults to now)"`
}

// ClearCmd deletes the cached feed
type ClearCmd struct{}

// Execute runs the Kong-based CLI
func Execute() {
	// Create CLI instance
	var cli CLI

	// Parse command line with Kong
	ctx := kong.Parse(&cli,
		kong.Name("feedcache"),
		kong.Description("Maintenance tool for the feed image cache database."),
		kong.UsageOnError(),
	)

	initLogging(cli.Verbose)
	initConfig()

	// Update global config based on parsed flags
	updateGlobalConfig(&cli)

	// Execute the selected command
	err := ctx.Run()
	if err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetConfigName("feedcache")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
		// No config file is fine, the defaults cover everything
		slog.Debug("No config file found, using defaults")
	}

	// Initialize global config
	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	// Update config based on CLI flags
	if cli.DBFile != "" {
		viper.Set("cache.dbfile", cli.DBFile)
		config.SetDatabaseFile(cli.DBFile)
	}
}

// Run methods for each command

func (c *InspectCmd) Run() error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("open cache store: %w", err)
	}
	defer func() { _ = store.Close() }()

	result := <-store.Retrieve()
	if result.Err != nil {
		return fmt.Errorf("retrieve cached feed: %w", result.Err)
	}

	if c.JSON {
		out, err := renderFeedJSON(result.Feed)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, out)
		return nil
	}

	fmt.Fprintln(stdout, renderFeed(result.Feed))
	return nil
}

func (c *SeedCmd) Run() error {
	images, fileStamp, err := loadSeedFile(c.Input)
	if err != nil {
		return err
	}

	// The flag wins over a timestamp from the seed file
	timestamp := time.Now().UTC()
	if fileStamp != nil {
		timestamp = *fileStamp
	}
	if c.Timestamp != "" {
		timestamp, err = time.Parse(time.RFC3339, c.Timestamp)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", c.Timestamp, err)
		}
	}

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("open cache store: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := <-store.Insert(images, timestamp); err != nil {
		return fmt.Errorf("insert cached feed: %w", err)
	}

	slog.Info("Cached feed replaced", "images", len(images), "timestamp", timestamp)
	return nil
}

func (c *ClearCmd) Run() error {
	slog.Info("Clearing cached feed", "database", config.DatabaseFile)

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("open cache store: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := <-store.DeleteCachedFeed(); err != nil {
		return fmt.Errorf("delete cached feed: %w", err)
	}

	slog.Info("Cached feed cleared")
	return nil
}

func initLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: level,
	})

	// Set the default logger
	slog.SetDefault(slog.New(handler))
}
