package auth0

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mealhow/mealhow-api/config"
	apperrors "github.com/mealhow/mealhow-api/internal/errors"
	"github.com/mealhow/mealhow-api/internal/ports"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Client wraps the identity provider's authentication and management APIs.
// Login uses the resource-owner password flow; management calls authenticate
// with a client-credentials token that is cached and refreshed by the
// oauth2 token source.
type Client struct {
	cfg        config.AuthConfig
	httpClient *http.Client
	logger     *slog.Logger

	loginConf *oauth2.Config
	mgmtToken oauth2.TokenSource
}

var _ ports.IdentityProvider = (*Client)(nil)

// ClientOptions configure a Client.
type ClientOptions struct {
	Config     config.AuthConfig
	HTTPClient *http.Client // Optional, defaults to a 30s-timeout client
	Logger     *slog.Logger // Optional
}

// NewClient constructs an identity provider client.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Config.Domain == "" {
		return nil, errors.New("identity provider domain is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tokenURL := fmt.Sprintf("https://%s/oauth/token", opts.Config.Domain)

	loginConf := &oauth2.Config{
		ClientID:     opts.Config.ClientID,
		ClientSecret: opts.Config.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}

	mgmtConf := &clientcredentials.Config{
		ClientID:     opts.Config.ManagementClientID,
		ClientSecret: opts.Config.ManagementClientSecret,
		TokenURL:     tokenURL,
		EndpointParams: url.Values{
			"audience": []string{opts.Config.ManagementAudience},
		},
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)

	return &Client{
		cfg:        opts.Config,
		httpClient: httpClient,
		logger:     logger.With("component", "identity_provider"),
		loginConf:  loginConf,
		mgmtToken:  mgmtConf.TokenSource(ctx),
	}, nil
}

// Login exchanges user credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (ports.LoginResult, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.loginConf.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response.StatusCode < http.StatusInternalServerError {
			return ports.LoginResult{}, apperrors.Unauthenticated("Wrong email or password")
		}
		return ports.LoginResult{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "Unable to reach the identity provider")
	}

	expiresIn := 0
	if !tok.Expiry.IsZero() {
		expiresIn = int(time.Until(tok.Expiry).Seconds())
	}
	return ports.LoginResult{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		ExpiresIn:   expiresIn,
	}, nil
}

// Signup creates an account on the configured database connection.
func (c *Client) Signup(ctx context.Context, in ports.SignupInput) (string, error) {
	body := map[string]string{
		"client_id":  c.cfg.ClientID,
		"connection": c.cfg.DefaultDBConnection,
		"email":      in.Email,
		"password":   in.Password,
		"name":       in.Name,
	}

	var out struct {
		ID string `json:"_id"`
	}
	endpoint := fmt.Sprintf("https://%s/dbconnections/signup", c.cfg.Domain)
	if err := c.postJSON(ctx, endpoint, body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// SendPasswordReset asks the provider to email a password reset link.
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	body := map[string]string{
		"client_id":  c.cfg.ClientID,
		"connection": c.cfg.DefaultDBConnection,
		"email":      email,
	}
	endpoint := fmt.Sprintf("https://%s/dbconnections/change_password", c.cfg.Domain)
	return c.postJSON(ctx, endpoint, body, nil)
}

// UpdatePassword sets a new password for the user via the Management API.
func (c *Client) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	tok, err := c.mgmtToken.Token()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "Unable to reach the identity provider")
	}

	payload, err := json.Marshal(map[string]string{"password": newPassword})
	if err != nil {
		return fmt.Errorf("marshal password update: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s/api/v2/users/%s", c.cfg.Domain, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build password update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	tok.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "Unable to reach the identity provider")
	}
	defer c.closeBody(resp.Body)

	return c.checkStatus(resp)
}

// postJSON posts a JSON body and decodes the response into out (when non-nil).
func (c *Client) postJSON(ctx context.Context, endpoint string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "Unable to reach the identity provider")
	}
	defer c.closeBody(resp.Body)

	if statusErr := c.checkStatus(resp); statusErr != nil {
		return statusErr
	}
	if out == nil {
		return nil
	}
	if decodeErr := json.NewDecoder(resp.Body).Decode(out); decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	return nil
}

// checkStatus maps provider error statuses onto the application taxonomy
// without leaking provider response bodies to callers.
func (c *Client) checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode < http.StatusBadRequest:
		return nil
	case resp.StatusCode == http.StatusConflict:
		return apperrors.Conflict("Account already exists")
	case resp.StatusCode == http.StatusBadRequest:
		return apperrors.Validation("The identity provider rejected the request")
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return apperrors.Unauthenticated("Bad credentials")
	default:
		return apperrors.Unavailable("Unable to reach the identity provider")
	}
}

func (c *Client) closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		c.logger.Warn("close response body", "error", err)
	}
}
