package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/inkpress/blogapi/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// ErrExchangeFailed wraps any failure talking to the identity provider.
var ErrExchangeFailed = errors.New("identity exchange failed")

// DefaultScopes request the profile fields needed for an Identity.
var DefaultScopes = []string{
	googleoauth2.UserinfoProfileScope,
	googleoauth2.UserinfoEmailScope,
}

// Identity is the profile asserted by the identity provider.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// GoogleProvider runs the OAuth2 authorization-code flow against Google.
type GoogleProvider struct {
	oauth       *oauth2.Config
	apiEndpoint string
}

// NewGoogleProvider constructs a provider from the registered OAuth client.
func NewGoogleProvider(cfg config.GoogleConfig) *GoogleProvider {
	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       DefaultScopes,
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthURL builds the consent-screen URL. Scopes override the defaults when given.
func (g *GoogleProvider) AuthURL(state string, scopes ...string) string {
	var opts []oauth2.AuthCodeOption
	if len(scopes) > 0 {
		opts = append(opts, oauth2.SetAuthURLParam("scope", strings.Join(scopes, " ")))
	}
	return g.oauth.AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for the user's name and email.
func (g *GoogleProvider) Exchange(ctx context.Context, code string) (Identity, error) {
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: token exchange: %v", ErrExchangeFailed, err)
	}

	opts := []option.ClientOption{option.WithHTTPClient(g.oauth.Client(ctx, token))}
	if g.apiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(g.apiEndpoint))
	}
	svc, err := googleoauth2.NewService(ctx, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: userinfo client: %v", ErrExchangeFailed, err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return Identity{}, fmt.Errorf("%w: userinfo: %v", ErrExchangeFailed, err)
	}
	if strings.TrimSpace(info.Email) == "" {
		return Identity{}, fmt.Errorf("%w: provider returned no email", ErrExchangeFailed)
	}

	return Identity{Name: info.Name, Email: info.Email}, nil
}
