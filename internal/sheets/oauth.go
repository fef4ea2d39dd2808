package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

// DefaultCallbackAddr is where the interactive flow listens for Google's
// redirect.
const DefaultCallbackAddr = "localhost:8080"

const authTimeout = 5 * time.Minute

// OAuth2Config describes a desktop OAuth client.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	// TokenFile, if set, receives the granted token as JSON.
	TokenFile string
	// CallbackAddr defaults to DefaultCallbackAddr.
	CallbackAddr string
}

func oauthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
}

// callbackServer receives one authorization code on a local port.
type callbackServer struct {
	server   *http.Server
	codes    chan string
	errs     chan error
	redirect string
}

func startCallbackServer(addr, state string) (*callbackServer, error) {
	if addr == "" {
		addr = DefaultCallbackAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}

	cs := &callbackServer{
		codes:    make(chan string, 1),
		errs:     make(chan error, 1),
		redirect: "http://" + ln.Addr().String() + "/callback",
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", callbackHandler(state, cs.codes, cs.errs))
	cs.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := cs.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			trySend(cs.errs, fmt.Errorf("callback server failed: %w", err))
		}
	}()
	return cs, nil
}

func (cs *callbackServer) close(ctx context.Context) {
	if err := cs.server.Shutdown(context.WithoutCancel(ctx)); err != nil {
		slog.Warn("Error shutting down callback server", "error", err)
	}
}

// AuthenticateOAuth2Interactive logs a consent URL and waits for the
// browser redirect, then exchanges the code for an offline token.
func AuthenticateOAuth2Interactive(ctx context.Context, config OAuth2Config) (*oauth2.Token, error) {
	state := uuid.NewString()
	cs, err := startCallbackServer(config.CallbackAddr, state)
	if err != nil {
		return nil, err
	}
	defer cs.close(ctx)

	oauthCfg := oauthConfig(config.ClientID, config.ClientSecret, cs.redirect)
	authURL := oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	slog.Info("Open this URL to grant edrs access to Google Sheets", "url", authURL)

	var code string
	select {
	case code = <-cs.codes:
	case err := <-cs.errs:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(authTimeout):
		return nil, fmt.Errorf("authentication timeout: no response received within %s", authTimeout)
	}

	token, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if config.TokenFile != "" {
		if err := saveToken(config.TokenFile, token); err != nil {
			slog.Warn("Failed to save token to file", "error", err, "file", config.TokenFile)
		} else {
			slog.Info("Token saved", "file", config.TokenFile)
		}
	}
	return token, nil
}

const (
	pageOK     = `<html><body><h1>Authentication Successful</h1><p>You can close this window and return to the terminal.</p></body></html>`
	pageFailed = `<html><body><h1>Authentication Failed</h1><p>No authorization code received. Please try again.</p></body></html>`
)

func callbackHandler(state string, codes chan<- string, errs chan<- error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			trySend(errs, errors.New("oauth callback state mismatch"))
		case q.Get("code") == "":
			trySend(errs, errors.New("no authorization code received"))
			_, _ = fmt.Fprint(w, pageFailed)
		default:
			trySend(codes, q.Get("code"))
			_, _ = fmt.Fprint(w, pageOK)
		}
	}
}

func trySend[T any](ch chan<- T, v T) {
	select {
	case ch <- v:
	default:
	}
}

// LoadToken reads a token written by AuthenticateOAuth2Interactive.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, err
	}
	token := &oauth2.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, fmt.Errorf("failed to decode token %s: %w", path, err)
	}
	return token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
