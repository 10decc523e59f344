package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendarapi "google.golang.org/api/calendar/v3"

	logx "github.com/sunrise-assist/server/pkg/logger"
)

// CredentialSource yields a valid OAuth token source for the calendar API,
// refreshing (and persisting the refreshed token) as needed.
type CredentialSource interface {
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)
}

// FileCredentialSource keeps the user token in a JSON file next to the
// server. The initial token must be obtained out of band (one-time consent
// flow); after that, refreshes are transparent and written back to disk.
type FileCredentialSource struct {
	oauthCfg  *oauth2.Config
	tokenPath string
}

// NewFileCredentialSource builds a credential source from the client id and
// secret plus a token file path.
func NewFileCredentialSource(cfg Config) (*FileCredentialSource, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("calendar client id and secret are required")
	}
	return &FileCredentialSource{
		oauthCfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{calendarapi.CalendarEventsScope},
		},
		tokenPath: cfg.TokenPath,
	}, nil
}

// TokenSource loads the stored token and wraps it in a source that persists
// refreshed tokens back to the token file.
func (s *FileCredentialSource) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	tok, err := readToken(s.tokenPath)
	if err != nil {
		return nil, fmt.Errorf("load calendar token from %s: %w", s.tokenPath, err)
	}
	return &persistingTokenSource{
		inner: s.oauthCfg.TokenSource(ctx, tok),
		path:  s.tokenPath,
		last:  tok,
	}, nil
}

// persistingTokenSource writes refreshed tokens back to disk so the refresh
// token survives process restarts.
type persistingTokenSource struct {
	inner oauth2.TokenSource
	path  string

	mu   sync.Mutex
	last *oauth2.Token
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.inner.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil || tok.AccessToken != p.last.AccessToken {
		if err := writeToken(p.path, tok); err != nil {
			// Refresh succeeded; losing the persisted copy is recoverable.
			logx.Warn().Err(err).Str("path", p.path).Msg("failed to persist refreshed calendar token")
		}
		p.last = tok
	}
	return tok, nil
}

func readToken(path string) (*oauth2.Token, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}
	return &tok, nil
}

func writeToken(path string, tok *oauth2.Token) error {
	b, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	// Tokens grant calendar access; keep the file user-only.
	return os.WriteFile(path, b, 0600)
}
