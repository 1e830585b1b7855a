package spotify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// Authorizer runs the authorization code flow that yields a user's refresh token.
type Authorizer struct {
	auth   *spotifyauth.Authenticator
	state  string
	tokens chan *oauth2.Token
}

// NewAuthorizer creates an authorizer that expects Spotify to redirect to redirectURL.
func NewAuthorizer(clientID, clientSecret, redirectURL string) *Authorizer {
	return &Authorizer{
		auth: spotifyauth.New(
			spotifyauth.WithRedirectURL(redirectURL),
			spotifyauth.WithClientID(clientID),
			spotifyauth.WithClientSecret(clientSecret),
			spotifyauth.WithScopes(Scopes...),
		),
		state:  uuid.NewString(),
		tokens: make(chan *oauth2.Token, 1),
	}
}

// AuthURL returns the page the user has to open.
func (a *Authorizer) AuthURL() string {
	return a.auth.AuthURL(a.state)
}

// ServeHTTP handles the redirect back from Spotify.
func (a *Authorizer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token, err := a.auth.Token(r.Context(), a.state, r)
	if err != nil {
		zlog.Warn().Err(err).Msg("authorization callback rejected")
		http.Error(w, "Authorization failed", http.StatusForbidden)
		return
	}

	fmt.Fprintln(w, "lyricpost is authorized. You can close this window.")
	select {
	case a.tokens <- token:
	default:
		// A token was already delivered.
	}
}

// Wait blocks until the callback delivers a token.
func (a *Authorizer) Wait(ctx context.Context) (*oauth2.Token, error) {
	select {
	case token := <-a.tokens:
		return token, nil
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "authorization aborted")
	}
}
