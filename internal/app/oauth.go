package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/semmidev/litedump/internal/infrastructure/logger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

const (
	driveAuthPath     = "/auth/google/drive"
	driveCallbackPath = "/auth/google/callback"
)

var ErrNoRefreshToken = errors.New("no refresh token returned, revoke app access and authorize again")

// DriveAuth runs the OAuth consent flow for the gdrive upload target and turns
// the result into a credentials file that target can load.
type DriveAuth struct {
	config *oauth2.Config
	logger *logger.Logger
	state  string
	tokens chan *oauth2.Token
}

func NewDriveAuth(log *logger.Logger, clientSecretPath string) (*DriveAuth, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if clientSecretPath == "" {
		return nil, errors.New("client secret path cannot be empty")
	}

	b, err := os.ReadFile(clientSecretPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret: %w", err)
	}

	return newDriveAuth(log, b)
}

func newDriveAuth(log *logger.Logger, clientSecret []byte) (*DriveAuth, error) {
	cfg, err := google.ConfigFromJSON(clientSecret, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret: %w", err)
	}

	state := make([]byte, 16)
	if _, err := rand.Read(state); err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}

	return &DriveAuth{
		config: cfg,
		logger: log,
		state:  hex.EncodeToString(state),
		tokens: make(chan *oauth2.Token, 1),
	}, nil
}

func (a *DriveAuth) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+driveAuthPath, func(w http.ResponseWriter, r *http.Request) {
		authURL := a.config.AuthCodeURL(a.state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
		http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
	})

	mux.HandleFunc("GET "+driveCallbackPath, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("state") != a.state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}

		code := query.Get("code")
		if code == "" {
			http.Error(w, "missing code parameter", http.StatusBadRequest)
			return
		}

		token, err := a.config.Exchange(r.Context(), code)
		if err != nil {
			a.logger.Errorf("Token exchange failed: %v", err)
			http.Error(w, fmt.Sprintf("token exchange failed: %v", err), http.StatusBadGateway)
			return
		}

		if token.RefreshToken == "" {
			http.Error(w, ErrNoRefreshToken.Error(), http.StatusConflict)
			return
		}

		select {
		case a.tokens <- token:
		default:
		}

		fmt.Fprintln(w, "Authorization complete, you can close this window.")
	})

	return mux
}

// Serve listens on addr until a refresh token has been obtained or ctx ends.
func (a *DriveAuth) Serve(ctx context.Context, addr string) (*oauth2.Token, error) {
	server := &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Infof("Open http://%s%s to authorize Google Drive access", addr, driveAuthPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	var token *oauth2.Token
	var err error

	select {
	case token = <-a.tokens:
	case err = <-serveErr:
		err = fmt.Errorf("oauth server: %w", err)
	case <-ctx.Done():
		err = ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		a.logger.Warnf("Failed to shutdown OAuth server: %v", shutdownErr)
	}

	return token, err
}

// WriteCredentials stores token as an authorized_user credentials file, the
// format the gdrive target's credentials_file accepts.
func (a *DriveAuth) WriteCredentials(path string, token *oauth2.Token) error {
	if token == nil || token.RefreshToken == "" {
		return ErrNoRefreshToken
	}

	b, err := json.MarshalIndent(map[string]string{
		"type":          "authorized_user",
		"client_id":     a.config.ClientID,
		"client_secret": a.config.ClientSecret,
		"refresh_token": token.RefreshToken,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	if err := os.WriteFile(path, b, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}

	a.logger.Infof("Google Drive credentials written to %s", path)
	return nil
}
