package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/storefront/internal/config"
	"github.com/vasiliy-maslov/storefront/internal/notify"
	"github.com/vasiliy-maslov/storefront/internal/session"
)

type command struct {
	usage string
	run   func(ctx context.Context, app *app, args []string) error
}

type app struct {
	cfg *config.Config
	s   *session.Session
}

var commands = map[string]command{
	"health":        {usage: "check that the API answers", run: runHealth},
	"profile":       {usage: "show the signed-in user", run: runProfile},
	"products":      {usage: "search products [-search -sort -min -max -page -limit]", run: runProducts},
	"product":       {usage: "show one product: product <id>", run: runProduct},
	"cart":          {usage: "cart [show|add <product-id> [qty]|update <item-id> <qty>|inc <item-id>|dec <item-id>|remove <item-id>|clear]", run: runCart},
	"addresses":     {usage: "addresses [list|add|update <id>|delete <id>|default <id>]", run: runAddresses},
	"checkout":      {usage: "place an order from the cart [-method cash_on_delivery|card -address <id> -wait]", run: runCheckout},
	"serve":         {usage: "serve the payment return pages until interrupted", run: runServe},
	"orders":        {usage: "orders [list|get <id>|cancel <id>|track <id>]", run: runOrders},
	"vendor-orders": {usage: "vendor-orders [list [-status s]|counts|advance <id> <status>]", run: runVendorOrders},
	"review":        {usage: "review [check|submit|list|stats] <product-id>, review [helpful|update|delete] <review-id>", run: runReview},
	"become-vendor": {usage: "upgrade the account [-business-name -phone -description]", run: runBecomeVendor},
	"shop":          {usage: "shop [create|slug <name>]", run: runShop},
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: storefront [-config file] [-env file] <command> [args]\n\ncommands:\n")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-14s %s\n", name, commands[name].usage)
	}
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.App.PrettyLogs {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", cfg.App.Name).Logger()
}

func main() {
	configPath := flag.String("config", "storefront.yaml", "path to the YAML config file")
	envPath := flag.String("env", ".env", "path to the .env file")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", flag.Arg(0))
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath, *envPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	setupLogging(cfg)
	log.Debug().Str("api", cfg.API.BaseURL).Bool("breaker", cfg.Breaker.Enabled).Msg("Configuration loaded")

	s, err := session.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start session")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if s.Tokens.SignedIn() {
		if err := s.SignIn(ctx, ""); err != nil {
			log.Warn().Err(err).Msg("Could not load cart")
		}
	}

	err = cmd.run(ctx, &app{cfg: cfg, s: s}, flag.Args()[1:])
	if err == nil {
		return
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(os.Stderr, "%s\nusage: storefront %s %s\n", usageErr.msg, flag.Arg(0), cmd.usage)
		os.Exit(2)
	}

	s.Report(err)
	kind, msg := notify.Classify(err)
	log.Debug().Err(err).Msg("Command failed")
	fmt.Fprintf(os.Stderr, "%s: %s\n", kind, msg)
	os.Exit(1)
}
