package gdrive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// ErrCredentialUnavailable means no credential source could produce a
// Drive client: no usable delegated-user token and no usable service
// account file.
var ErrCredentialUnavailable = errors.New("no usable google drive credential source")

type Config struct {
	TokenPath   string // delegated-user OAuth token file (JSON)
	CredsPath   string // service-account credentials file (JSON)
	FolderID    string // upload target; Shared Drive folder for service accounts
	Impersonate string // optional domain-wide delegation subject
}

// Resolve builds an authenticated Drive client, trying credential sources
// in a fixed order: the delegated-user token file first, then the service
// account file. Resolution has no side effects beyond logging; callers
// re-resolve per upload.
func Resolve(ctx context.Context, cfg Config, log *slog.Logger) (*Client, error) {
	if ts, err := userTokenSource(ctx, cfg.TokenPath); err == nil {
		log.Info("using delegated-user OAuth token for drive uploads", "path", cfg.TokenPath)
		return newClient(ctx, ts, cfg.FolderID)
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Error("failed to load delegated-user token, falling back to service account",
			"path", cfg.TokenPath, "error", err)
	}

	ts, err := serviceTokenSource(ctx, cfg.CredsPath, cfg.Impersonate, log)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Error("failed to load service account credentials", "path", cfg.CredsPath, "error", err)
		}
		return nil, ErrCredentialUnavailable
	}
	return newClient(ctx, ts, cfg.FolderID)
}

func newClient(ctx context.Context, ts oauth2.TokenSource, folderID string) (*Client, error) {
	svc, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("build drive service: %w", err)
	}
	return &Client{svc: svc, folderID: folderID}, nil
}

// userToken is the shape written by the interactive consent flow: access
// and refresh tokens plus the client registration needed to refresh.
type userToken struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	TokenURI     string    `json:"token_uri"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	Scopes       []string  `json:"scopes"`
	Expiry       time.Time `json:"expiry"`
}

func userTokenSource(ctx context.Context, path string) (oauth2.TokenSource, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ut userToken
	if err := json.Unmarshal(b, &ut); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	if ut.Token == "" && ut.RefreshToken == "" {
		return nil, fmt.Errorf("token file %s holds neither access nor refresh token", path)
	}
	if ut.TokenURI == "" {
		ut.TokenURI = google.Endpoint.TokenURL
	}
	scopes := ut.Scopes
	if len(scopes) == 0 {
		scopes = []string{drive.DriveScope}
	}
	conf := &oauth2.Config{
		ClientID:     ut.ClientID,
		ClientSecret: ut.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: ut.TokenURI},
		Scopes:       scopes,
	}
	tok := &oauth2.Token{
		AccessToken:  ut.Token,
		RefreshToken: ut.RefreshToken,
		Expiry:       ut.Expiry,
	}
	return conf.TokenSource(ctx, tok), nil
}

func serviceTokenSource(ctx context.Context, path, subject string, log *slog.Logger) (oauth2.TokenSource, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	conf, err := google.JWTConfigFromJSON(b, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account file: %w", err)
	}
	if subject != "" {
		// Requires domain-wide delegation to be granted for the service
		// account; without it the token exchange fails at upload time.
		conf.Subject = subject
		log.Info("impersonating user for drive uploads", "subject", subject)
	}
	return conf.TokenSource(ctx), nil
}
