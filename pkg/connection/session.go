package connection

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/carbonblack/cbc-sdk-go/pkg/credentials"
)

// Header names set on every request.
const (
	HeaderAuthToken = "X-Auth-Token"
	HeaderUserAgent = "User-Agent"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	maxErrorBody      = 512
)

// Session is an authenticated HTTP session bound to one server.
// It is safe for concurrent use.
type Session struct {
	server string
	token  string
	orgKey string
	header map[string]string
	client *retryablehttp.Client
	logger *slog.Logger
}

// sessionConfig carries the BaseAPI options a session needs.
type sessionConfig struct {
	integrationName string
	timeout         time.Duration
	maxRetries      int
	logger          *slog.Logger
}

// UserAgent returns the User-Agent value for an integration.
func UserAgent(integrationName string) string {
	return fmt.Sprintf("%s cbc-sdk-go/%s (%s/%s)", integrationName, Version, runtime.GOOS, runtime.GOARCH)
}

func newSession(creds *credentials.Credentials, cfg sessionConfig) (*Session, error) {
	server := strings.TrimRight(creds.URL, "/")
	if _, err := url.ParseRequestURI(server); err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", creds.URL, err)
	}

	transport, err := buildTransport(creds)
	if err != nil {
		return nil, err
	}

	timeout := cfg.timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	// zero selects the default; negative disables retries
	maxRetries := cfg.maxRetries
	switch {
	case maxRetries == 0:
		maxRetries = defaultMaxRetries
	case maxRetries < 0:
		maxRetries = 0
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Transport: transport, Timeout: timeout}
	rc.RetryMax = maxRetries
	// keep default CheckRetry (retries on 429/5xx and honors Retry-After)
	// so the last response is returned for status mapping
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = cfg.logger

	return &Session{
		server: server,
		token:  creds.Token,
		orgKey: creds.OrgKey,
		header: map[string]string{
			HeaderAuthToken: creds.Token,
			HeaderUserAgent: UserAgent(cfg.integrationName),
		},
		client: rc,
		logger: cfg.logger,
	}, nil
}

// buildTransport applies the TLS and proxy options carried by creds.
func buildTransport(creds *credentials.Credentials) (*http.Transport, error) {
	t := cleanhttp.DefaultPooledTransport()

	switch {
	case creds.Proxy != "":
		proxyURL, err := url.Parse(creds.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url %q: %w", creds.Proxy, err)
		}
		t.Proxy = http.ProxyURL(proxyURL)
	case creds.IgnoreSystemProxy:
		t.Proxy = nil
	}

	tlsCfg, err := buildTLSConfig(creds)
	if err != nil {
		return nil, err
	}
	t.TLSClientConfig = tlsCfg
	return t, nil
}

func buildTLSConfig(creds *credentials.Credentials) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if creds.SSLForceTLS12 {
		cfg.MaxVersion = tls.VersionTLS12
	}

	if creds.SSLCertFile != "" {
		pem, err := os.ReadFile(creds.SSLCertFile)
		if err != nil {
			return nil, fmt.Errorf("reading ssl_cert_file: %w", err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("ssl_cert_file %s contains no PEM certificates", creds.SSLCertFile)
		}
		cfg.RootCAs = pool
	}

	switch {
	case !creds.SSLVerify:
		cfg.InsecureSkipVerify = true
	case !creds.SSLVerifyHostname:
		// Verify the chain ourselves, without the server name.
		roots := cfg.RootCAs
		cfg.InsecureSkipVerify = true
		cfg.VerifyConnection = func(cs tls.ConnectionState) error {
			if len(cs.PeerCertificates) == 0 {
				return fmt.Errorf("server presented no certificates")
			}
			opts := x509.VerifyOptions{Roots: roots, Intermediates: x509.NewCertPool()}
			for _, c := range cs.PeerCertificates[1:] {
				opts.Intermediates.AddCert(c)
			}
			_, err := cs.PeerCertificates[0].Verify(opts)
			return err
		}
	}
	return cfg, nil
}

// Server returns the base url requests are sent to.
func (s *Session) Server() string { return s.server }

// Token returns the API token.
func (s *Session) Token() string { return s.token }

// OrgKey returns the org key substituted for {org_key} in request paths.
func (s *Session) OrgKey() string { return s.orgKey }

// TokenHeader returns a copy of the headers added to every request.
func (s *Session) TokenHeader() map[string]string {
	h := make(map[string]string, len(s.header))
	for k, v := range s.header {
		h[k] = v
	}
	return h
}

// HTTPClient returns a standard client that retries like the session but
// does not add the auth headers.
func (s *Session) HTTPClient() *http.Client {
	return s.client.StandardClient()
}

// URL resolves path against the server, substituting {org_key}.
func (s *Session) URL(path string) string {
	path = strings.ReplaceAll(path, "{org_key}", url.PathEscape(s.orgKey))
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.server + path
}

// Get issues a GET and decodes the JSON response into out (which may be nil).
func (s *Session) Get(ctx context.Context, path string, out any) error {
	return s.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body.
func (s *Session) Post(ctx context.Context, path string, body, out any) error {
	return s.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body.
func (s *Session) Put(ctx context.Context, path string, body, out any) error {
	return s.Do(ctx, http.MethodPut, path, body, out)
}

// Patch issues a PATCH with a JSON body.
func (s *Session) Patch(ctx context.Context, path string, body, out any) error {
	return s.Do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE.
func (s *Session) Delete(ctx context.Context, path string) error {
	return s.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do sends an authenticated request. A non-nil body is encoded as JSON
// ([]byte and json.RawMessage are sent verbatim). A 2xx response is decoded
// into out when out is non-nil; other statuses return an *APIError.
func (s *Session) Do(ctx context.Context, method, path string, body, out any) error {
	target := s.URL(path)

	var payload []byte
	switch b := body.(type) {
	case nil:
	case []byte:
		payload = b
	case json.RawMessage:
		payload = b
	default:
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
	}

	var reqBody any
	if payload != nil {
		reqBody = payload
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	for k, v := range s.header {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	s.logger.Debug("api request", "method", method, "url", target)
	resp, err := s.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if sentinel := classifyStatus(resp.StatusCode); sentinel != nil {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		s.logger.Debug("api error response", "method", method, "url", target, "status", resp.StatusCode)
		return &APIError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(data)),
			Err:        sentinel,
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		*raw = bytes.TrimSpace(data)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
