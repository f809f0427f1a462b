// Command calendar-token walks an operator through Google's OAuth consent
// screen and prints an access token for the venue calendar.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wolfman30/locus-venue/cmd/mainconfig"
	appconfig "github.com/wolfman30/locus-venue/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
)

var errMissingOAuthClient = errors.New("calendar-token: GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REDIRECT_URI are required")

func main() {
	mainconfig.LoadEnvFiles(".env.local")
	cfg := appconfig.Load()

	oauthCfg, err := oauthConfig(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := run(context.Background(), oauthCfg, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error getting tokens:", err)
		os.Exit(1)
	}
}

func oauthConfig(cfg *appconfig.Config) (*oauth2.Config, error) {
	if strings.TrimSpace(cfg.GoogleOAuthClientID) == "" ||
		strings.TrimSpace(cfg.GoogleOAuthClientSecret) == "" ||
		strings.TrimSpace(cfg.GoogleOAuthRedirectURI) == "" {
		return nil, errMissingOAuthClient
	}
	return &oauth2.Config{
		ClientID:     cfg.GoogleOAuthClientID,
		ClientSecret: cfg.GoogleOAuthClientSecret,
		RedirectURL:  cfg.GoogleOAuthRedirectURI,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gcal.CalendarReadonlyScope},
	}, nil
}

func run(ctx context.Context, oauthCfg *oauth2.Config, in io.Reader, out io.Writer) error {
	authURL := oauthCfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintln(out, "Authorize this app by visiting this url:", authURL)
	fmt.Fprint(out, "Enter the code from that page here: ")

	code, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return errors.New("no authorization code entered")
	}

	tok, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Add this access token to your .env.local file:")
	fmt.Fprintf(out, "GOOGLE_ACCESS_TOKEN=%s\n", tok.AccessToken)
	if tok.RefreshToken != "" {
		fmt.Fprintf(out, "GOOGLE_REFRESH_TOKEN=%s\n", tok.RefreshToken)
	}
	return nil
}
