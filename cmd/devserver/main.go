package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/server"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/rs/zerolog"
)

var (
	seedUser     = flag.String("seed-user", "", "create an approved CUSTOMER with this username on startup")
	seedPassword = flag.String("seed-password", "validpass1", "password for -seed-user")
	rotate       = flag.Bool("rotate", false, "issue a new refresh token on every refresh")
)

func main() {
	flag.Parse()
	c := config.Load()
	logger := newLogger(c)

	for {
		if err := run(c, logger); err != nil {
			logger.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	logger.Info().Msg("Server stopped")
}

func run(c config.Config, logger zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Msgf("Recovered from panic: %v", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(c.GetAppName() + " API")

	opts := server.OptionsFromConfig(c, logger)
	opts.RotateRefreshTokens = *rotate
	api := server.New(opts)
	if err := seed(api, logger); err != nil {
		// A bad seed will fail the same way on every restart
		logger.Fatal().Err(err).Msg("seed user")
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: api}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(httpServer, logger) }()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func seed(api *server.Server, logger zerolog.Logger) error {
	if *seedUser == "" {
		return nil
	}
	profile, err := api.CreateUser(users.Registration{
		Username:        *seedUser,
		Email:           *seedUser + "@example.com",
		Password:        *seedPassword,
		ConfirmPassword: *seedPassword,
		FirstName:       *seedUser,
		LastName:        "Dev",
		UserType:        users.UserTypeCustomer,
	}, true)
	if err != nil {
		return err
	}
	logger.Info().Str("username", profile.Username).Msg("seeded user")
	return nil
}

func listenAndServe(server *http.Server, logger zerolog.Logger) error {
	logger.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
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
