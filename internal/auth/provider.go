package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/fitzonehq/fitzone/internal/telemetry/tracing"
	"github.com/fitzonehq/fitzone/pkg"
)

// HTTPProvider talks to an OIDC-style identity provider over HTTP:
//   - GET  {base}/authorize     browser redirect target
//   - POST {base}/token         code -> access token
//   - GET  {base}/userinfo      access token -> identity
type HTTPProvider struct {
	baseURL      string
	clientID     string
	clientSecret string
	redirectURL  string
	httpClient   *http.Client
}

func NewHTTPProvider(
	baseURL string,
	clientID string,
	clientSecret string,
	redirectURL string,
	httpClient *http.Client,
) *HTTPProvider {
	return &HTTPProvider{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		httpClient:   httpClient,
	}
}

func (p *HTTPProvider) AuthCodeURL(state string) string {
	params := url.Values{}
	params.Set("client_id", p.clientID)
	params.Set("redirect_uri", p.redirectURL)
	params.Set("response_type", "code")
	params.Set("scope", "openid email profile")
	params.Set("state", state)
	return fmt.Sprintf("%s/authorize?%s", p.baseURL, params.Encode())
}

func (p *HTTPProvider) Authenticate(ctx context.Context, code string) (*Identity, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authProvider.authenticate")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	accessToken, err := p.exchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	identity, err := p.userInfo(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("get user info: %w", err)
	}

	return identity, nil
}

func (p *HTTPProvider) exchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", p.clientID)
	form.Set("client_secret", p.clientSecret)
	form.Set("redirect_uri", p.redirectURL)

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost,
		p.baseURL+"/token",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token endpoint status %d: %s", resp.StatusCode, body)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("empty access token received")
	}

	return tokenResp.AccessToken, nil
}

func (p *HTTPProvider) userInfo(ctx context.Context, accessToken string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/userinfo", nil)
	if err != nil {
		return nil, fmt.Errorf("create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("userinfo endpoint status %d: %s", resp.StatusCode, pkg.BytesToString(body))
	}

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("decode userinfo response: %w", err)
	}
	if identity.Subject == "" {
		return nil, fmt.Errorf("userinfo response has no subject")
	}

	return &identity, nil
}
