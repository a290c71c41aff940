package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/logrusorgru/aurora"
	"github.com/lukehollenback/bourse/config"
	"github.com/lukehollenback/bourse/exchange"
	"github.com/lukehollenback/bourse/exchange/coinbasepro"
	"github.com/lukehollenback/bourse/exchange/poloniex"

	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	//
	// Cancel whatever is in flight when the operating system interrupts us.
	//
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

//
// run executes one command line and returns the process exit code.
//
func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	flags := flag.NewFlagSet("bourse", flag.ContinueOnError)
	flags.SetOutput(stderr)

	cfgPath := flags.String("config", "", "Path to a YAML config file.")
	venue := flags.String("venue", "", "The venue to talk to (poloniex or coinbasepro). Overrides the config file.")
	confirm := flags.Bool("confirm", false, "Ask before sending every authenticated request.")
	verbose := flags.Bool("verbose", false, "Log every request sent to the venue.")
	logFile := flags.String("log-file", "", "Write logs to a rotating file instead of stderr.")
	colors := flags.Bool("colors", true, "Colour console output.")

	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: bourse [flags] COMMAND [ARGS]\n\nCommands:\n")

		for _, c := range commands {
			fmt.Fprintf(stderr, "  %-10s %s\n", c.name, c.usage)
		}

		fmt.Fprintf(stderr, "\nFlags:\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load the configuration. (Error: %s)\n", err)

		return 1
	}

	//
	// Command line flags win over the config file.
	//
	if *venue != "" {
		cfg.Venue = *venue
	}

	cfg.Confirm = cfg.Confirm || *confirm
	cfg.Verbose = cfg.Verbose || *verbose

	if *logFile != "" {
		cfg.Log.File = *logFile
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Invalid configuration. (Error: %s)\n", err)

		return 1
	}

	if cfg.Log.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		}
		defer rotator.Close()

		log.SetOutput(rotator)
	}

	if flags.NArg() == 0 {
		flags.Usage()

		return 2
	}

	env := &environment{
		cfg: cfg,
		out: stdout,
		au:  aurora.NewAurora(*colors),
	}

	if cfg.Confirm {
		env.confirmer = exchange.NewConsoleConfirmer(stdin, stderr, *colors)
	}

	env.api = newAPI(cfg, env.confirmer)

	if err := dispatch(ctx, env, flags.Arg(0), flags.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			flags.Usage()

			return 2
		}

		fmt.Fprintf(stderr, "%s %s\n", env.au.Red("Error:"), err)

		return 1
	}

	return 0
}

//
// newAPI builds the facade for the configured venue.
//
func newAPI(cfg *config.Config, confirmer exchange.Confirmer) exchange.API {
	switch cfg.Venue {
	case config.CoinbasePro:
		opts := []coinbasepro.Option{
			coinbasepro.WithCredentials(cfg.CoinbasePro.Key, cfg.CoinbasePro.Secret, cfg.CoinbasePro.Passphrase),
			coinbasepro.WithCallLogging(cfg.Verbose),
			coinbasepro.WithConfirmer(confirmer),
		}

		if cfg.CoinbasePro.BaseURL != "" {
			opts = append(opts, coinbasepro.WithBaseURL(cfg.CoinbasePro.BaseURL))
		}

		if cfg.CoinbasePro.Interval > 0 {
			opts = append(opts, coinbasepro.WithThrottleInterval(cfg.CoinbasePro.Interval))
		}

		return coinbasepro.New(opts...)

	default:
		opts := []poloniex.Option{
			poloniex.WithCredentials(cfg.Poloniex.Key, cfg.Poloniex.Secret),
			poloniex.WithCallLogging(cfg.Verbose),
			poloniex.WithConfirmer(confirmer),
		}

		if cfg.Poloniex.Interval > 0 {
			opts = append(opts, poloniex.WithThrottleInterval(cfg.Poloniex.Interval))
		}

		return poloniex.New(opts...)
	}
}
