package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopstack/auth-service/auth"
	"github.com/shopstack/auth-service/internal/config"
	"github.com/shopstack/auth-service/password"
	"github.com/shopstack/auth-service/server"
	"github.com/shopstack/auth-service/token"
	"github.com/shopstack/auth-service/users"
	"github.com/shopstack/auth-service/users/postgres"
	fakeuserrepo "github.com/shopstack/auth-service/users/repofake"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()

	c := config.New()
	displayAppname(c.GetAppName())

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	httpHandler, closeStore, err := buildServer(c, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	httpServer := &http.Server{Addr: c.GetPort(), Handler: httpHandler}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func buildServer(c config.Config, logger zerolog.Logger) (http.Handler, func(), error) {
	accessSecret := c.GetAccessTokenSecret()
	refreshSecret := c.GetRefreshTokenSecret()
	if accessSecret == "" || refreshSecret == "" {
		return nil, nil, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set")
	}
	if accessSecret == refreshSecret {
		return nil, nil, errors.New("access and refresh token secrets must differ")
	}

	issuer, err := token.NewIssuer(
		token.NewHMACSigner(accessSecret),
		token.NewHMACSigner(refreshSecret),
		token.WithTTLs(c.GetAccessTokenTTL(), c.GetRefreshTokenTTL()),
	)
	if err != nil {
		return nil, nil, err
	}

	userRepo, closeStore, err := openUserRepo(c, logger)
	if err != nil {
		return nil, nil, err
	}

	authService, err := auth.NewService(auth.Deps{
		Users:  userRepo,
		Hasher: password.NewHasher(password.DefaultParams()),
		Tokens: issuer,
	})
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	srv, err := server.New(c, authService, issuer, logger)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return srv, closeStore, nil
}

func openUserRepo(c config.Config, logger zerolog.Logger) (users.Repo, func(), error) {
	dsn := c.GetDatabaseDSN()
	if dsn == "" {
		if c.GetEnv() != "DEV" {
			return nil, nil, errors.New("DATABASE_URL must be set outside DEV")
		}
		logger.Warn().Msg("DATABASE_URL not set, using in-memory user store")
		return fakeuserrepo.NewFakeUserRepo(), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	repo, err := postgres.Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	return repo, func() { _ = repo.Close() }, nil
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
