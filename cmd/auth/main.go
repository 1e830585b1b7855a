// Package main prints a Spotify refresh token for a new lyricpost user.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/lyricpost/internal/infra/logger"
	"github.com/osa030/lyricpost/internal/infra/spotify"
)

var (
	app          = kingpin.New("lyricpost-auth", "Obtains a Spotify refresh token for a lyricpost user")
	clientID     = app.Flag("client-id", "Spotify Client ID").Envar("SPOTIFY_CLIENT_ID").Required().String()
	clientSecret = app.Flag("client-secret", "Spotify Client Secret").Envar("SPOTIFY_CLIENT_SECRET").Required().String()
	port         = app.Flag("port", "Callback server port").Default("8888").Int()
	userName     = app.Flag("user", "User name to print in the config snippet").Default("me").String()
)

func main() {
	_ = godotenv.Load()
	kingpin.MustParse(app.Parse(os.Args[1:]))

	if err := logger.Init(logger.Config{Output: "stderr", Level: "info"}); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	authorizer := spotify.NewAuthorizer(*clientID, *clientSecret, fmt.Sprintf("http://127.0.0.1:%d/callback", *port))

	mux := http.NewServeMux()
	mux.Handle("/callback", authorizer)
	server := &http.Server{Addr: fmt.Sprintf(":%d", *port), Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("Failed to start callback server")
		}
	}()

	fmt.Printf("Open this URL while logged in to Spotify as %s:\n\n%s\n\n", *userName, authorizer.AuthURL())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	token, err := authorizer.Wait(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Warn().Err(err).Msg("Failed to shut down callback server")
	}
	if err != nil {
		zlog.Error().Err(err).Msg("No token received")
		stop()
		os.Exit(1)
	}

	fmt.Println("Add this user to your config:")
	fmt.Println()
	fmt.Println("users:")
	fmt.Printf("  - name: %q\n", *userName)
	fmt.Printf("    refresh_token: %q\n", token.RefreshToken)
	fmt.Println("    telegram_chat_id: 0 # destination chat")
}
