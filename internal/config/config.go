// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables and an
// optional JSON file.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Options holds the configuration values for the application.
type Options struct {
	// Address defines the server's listening address (ip:port).
	Address string `json:"address"`

	// StorageDSN selects the storage backend: file://dir, memory://,
	// postgres://... or redis://...
	StorageDSN string `json:"storage_dsn"`

	// LogLevel is a zap level name.
	LogLevel string `json:"log_level"`

	// SeedDemo creates the demo account on startup when it is missing.
	SeedDemo bool `json:"seed_demo"`

	// TombstoneInterval is how often deleted Postgres slots are purged; 0 disables.
	TombstoneInterval time.Duration `json:"tombstone_interval"`

	// TombstoneRetention is how long a deleted slot is kept before purging.
	TombstoneRetention time.Duration `json:"tombstone_retention"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// Defaults returns the options used when nothing else is set.
func Defaults() Options {
	return Options{
		Address:            "localhost:8080",
		StorageDSN:         "file://data",
		LogLevel:           "info",
		SeedDemo:           true,
		TombstoneInterval:  time.Hour,
		TombstoneRetention: 30 * 24 * time.Hour,
		Config:             "config.json",
	}
}

// Parse reads os.Args and the environment. It exits on invalid input.
func Parse() *Options {
	opts, err := Load(flag.CommandLine, os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return opts
}

// Load resolves options in increasing priority: defaults, the JSON config
// file, environment variables, then flags given explicitly in args.
func Load(fs *flag.FlagSet, args []string, getenv func(string) string) (*Options, error) {
	def := Defaults()
	flags := def

	fs.StringVar(&flags.Address, "a", def.Address, "run on ip:port server")
	fs.StringVar(&flags.StorageDSN, "s", def.StorageDSN, "storage dsn")
	fs.StringVar(&flags.LogLevel, "l", def.LogLevel, "log level")
	fs.BoolVar(&flags.SeedDemo, "seed-demo", def.SeedDemo, "create the demo account")
	fs.DurationVar(&flags.TombstoneInterval, "tombstone-interval", def.TombstoneInterval, "purge interval for deleted slots")
	fs.DurationVar(&flags.TombstoneRetention, "tombstone-retention", def.TombstoneRetention, "retention for deleted slots")
	fs.StringVar(&flags.Config, "config", def.Config, "path to config file")
	fs.StringVar(&flags.Config, "c", def.Config, "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts := def
	opts.Config = flags.Config
	if configPath := getenv("CONFIG"); configPath != "" && !isSet(fs, "config", "c") {
		opts.Config = configPath
	}
	if err := readFile(opts.Config, &opts); err != nil {
		return nil, err
	}

	if v := getenv("SERVER_ADDRESS"); v != "" {
		opts.Address = v
	}
	if v := getenv("STORAGE_DSN"); v != "" {
		opts.StorageDSN = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		opts.LogLevel = v
	}
	if v := getenv("SEED_DEMO"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("SEED_DEMO: %w", err)
		}
		opts.SeedDemo = b
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			opts.Address = flags.Address
		case "s":
			opts.StorageDSN = flags.StorageDSN
		case "l":
			opts.LogLevel = flags.LogLevel
		case "seed-demo":
			opts.SeedDemo = flags.SeedDemo
		case "tombstone-interval":
			opts.TombstoneInterval = flags.TombstoneInterval
		case "tombstone-retention":
			opts.TombstoneRetention = flags.TombstoneRetention
		}
	})
	return &opts, nil
}

// readFile overlays the JSON file at path onto opts. A missing file is not an error.
func readFile(path string, opts *Options) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	// Durations are written as strings like "1h" in the file.
	var file struct {
		Options
		TombstoneInterval  string `json:"tombstone_interval"`
		TombstoneRetention string `json:"tombstone_retention"`
	}
	file.Options = *opts
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	*opts = file.Options
	if file.TombstoneInterval != "" {
		if opts.TombstoneInterval, err = time.ParseDuration(file.TombstoneInterval); err != nil {
			return fmt.Errorf("error while parsing tombstone_interval: %w", err)
		}
	}
	if file.TombstoneRetention != "" {
		if opts.TombstoneRetention, err = time.ParseDuration(file.TombstoneRetention); err != nil {
			return fmt.Errorf("error while parsing tombstone_retention: %w", err)
		}
	}
	return nil
}

func isSet(fs *flag.FlagSet, names ...string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		for _, n := range names {
			if f.Name == n {
				set = true
			}
		}
	})
	return set
}
