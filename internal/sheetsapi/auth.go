package sheetsapi

import (
	"context"
	"crypto/rsa"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/imroc/req/v3"

	"sheetsync/internal/utils"
)

const (
	// assertionTTL is the lifetime requested for the signed JWT. Google
	// caps it at one hour.
	assertionTTL = time.Hour

	// tokenSkew refreshes access tokens slightly before they expire so
	// in-flight requests never carry a stale one.
	tokenSkew = 60 * time.Second
)

// Credentials is the subset of a Google service account key file this
// client needs.
type Credentials struct {
	Type        string `json:"type"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// LoadCredentials reads and validates a service account key file.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	var creds Credentials
	if err := jsonUnmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return &creds, nil
}

// Validate checks the fields the token flow depends on and fills in the
// default token endpoint when the key file omits it.
func (c *Credentials) Validate() error {
	if c.ClientEmail == "" || c.PrivateKey == "" {
		return ErrInvalidCredentials
	}
	if err := utils.ValidateEmail(c.ClientEmail); err != nil {
		return fmt.Errorf("invalid client_email: %w", err)
	}
	if c.TokenURI == "" {
		c.TokenURI = defaultTokenURL
	}
	return nil
}

// tokenSource mints and caches OAuth2 access tokens for the
// spreadsheets scope using the two-legged service account flow.
type tokenSource struct {
	creds *Credentials
	http  *req.Client
	key   *rsa.PrivateKey

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func newTokenSource(creds *Credentials) (*tokenSource, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(creds.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	client := req.C().
		SetCommonRetryCount(2).
		SetCommonRetryFixedInterval(1 * time.Second).
		SetUserAgent(UserAgent).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)

	return &tokenSource{creds: creds, http: client, key: key}, nil
}

// Token returns a bearer token, reusing the cached one until it is
// within tokenSkew of expiry.
func (ts *tokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && time.Now().Before(ts.expiry) {
		return ts.token, nil
	}

	assertion, err := ts.assertion(time.Now())
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}

	var token *oauthToken
	res, err := ts.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type": jwtBearerGrant,
			"assertion":  assertion,
		}).
		SetSuccessResult(&token).
		Post(ts.creds.TokenURI)
	if err != nil {
		return "", fmt.Errorf("http request error: token exchange %w", err)
	}
	if res.IsErrorState() {
		return "", fmt.Errorf("token exchange: %s %s", res.Status, res.String())
	}
	if token == nil || token.AccessToken == "" {
		return "", ErrNoAccessToken
	}

	ts.token = token.AccessToken
	ts.expiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - tokenSkew)
	return ts.token, nil
}

// assertion builds the signed claim set for the token exchange. The
// audience must be a plain string, which MapClaims preserves.
func (ts *tokenSource) assertion(now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":   ts.creds.ClientEmail,
		"scope": scopeSpreadsheets,
		"aud":   ts.creds.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(ts.key)
}
