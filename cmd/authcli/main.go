package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/kvstore"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/jrsteele09/go-auth-client/ui"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	global := flag.NewFlagSet("authcli", flag.ContinueOnError)
	baseURL := global.String("api", "", "API base URL (default $API_BASE_URL)")
	noColour := global.Bool("no-color", false, "disable ANSI colours")
	quiet := global.Bool("q", false, "do not print the banner")
	global.Usage = func() { usage(global) }
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		usage(global)
		return 2
	}
	cmd, ok := commands[global.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", global.Arg(0))
		usage(global)
		return 2
	}

	c := config.Load()
	logger := newLogger(c)
	if !*quiet {
		displayAppname(c.GetAppName())
	}

	store, closeStore := newStore(c)
	defer closeStore()

	url := c.GetAPIBaseURL()
	if *baseURL != "" {
		url = *baseURL
	}
	client := apiclient.New(url, token.New(store), apiclient.WithLogger(logger))
	shell := ui.NewTerminal(os.Stdout, !*noColour)
	ctrl := ui.NewController(auth.NewService(client, logger), shell, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.run(ctx, ctrl, global.Args()[1:]); err != nil {
		return 1
	}
	return 0
}

func newStore(c config.Config) (kvstore.Store, func()) {
	switch c.GetStoreKind() {
	case config.StoreMemory:
		return kvstore.NewMemory(), func() {}
	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{Addr: c.GetRedisAddr()})
		return kvstore.NewRedis(rdb, c.GetRedisPrefix()), func() { _ = rdb.Close() }
	default:
		var opts []kvstore.FileOption
		if pass := c.GetTokenPassphrase(); pass != "" {
			opts = append(opts, kvstore.WithPassphrase(pass))
		}
		return kvstore.NewFile(c.GetTokenFile(), opts...), func() {}
	}
}

func newLogger(c config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

func usage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, "usage: authcli [flags] <command> [command flags]\n\ncommands:\n")
	for _, name := range commandOrder {
		fmt.Fprintf(os.Stderr, "  %-15s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(os.Stderr, "\nflags:\n")
	fs.PrintDefaults()
}
