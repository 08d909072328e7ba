package vvp

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	v1alpha1 "github.com/3bit-techs/vvpctl/pkg/apis/deployment/v1alpha1"
	"github.com/3bit-techs/vvpctl/pkg/client/netretry"
	"github.com/3bit-techs/vvpctl/pkg/svc/tree"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	contentTypeJSON       = "application/json"
	contentTypeMergePatch = "application/merge-patch+json"
	apiPrefix             = "api/v1/namespaces"
	defaultTimeout        = 30 * time.Second
)

// Options configures an HTTPClient.
type Options struct {
	// Server is the platform base URL, e.g. https://vvp.example.com.
	Server string
	// Token is sent as a bearer token when set.
	Token string
	// Insecure skips TLS certificate verification.
	Insecure bool
	// Timeout bounds each HTTP request.
	Timeout time.Duration
	// Retry bounds retries of transient failures.
	Retry netretry.Policy
	// UserAgent identifies vvpctl to the platform.
	UserAgent string
	// HTTP replaces the underlying http.Client, mainly for tests.
	HTTP *http.Client
	// Logger receives request diagnostics.
	Logger logrus.FieldLogger
}

// HTTPClient implements Client over REST/JSON.
type HTTPClient struct {
	server    *url.URL
	token     string
	userAgent string
	retry     netretry.Policy
	http      *http.Client
	logger    logrus.FieldLogger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient validates opts and returns a client.
func NewHTTPClient(opts Options) (*HTTPClient, error) {
	server, err := url.Parse(strings.TrimRight(opts.Server, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidServer, err)
	}

	if (server.Scheme != "http" && server.Scheme != "https") || server.Host == "" {
		return nil, fmt.Errorf("%w: %q must be an absolute http(s) url", ErrInvalidServer, opts.Server)
	}

	retry := opts.Retry
	if retry.MaxAttempts == 0 {
		retry = netretry.DefaultPolicy()
	}

	err = retry.Validate()
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "vvpctl"
	}

	return &HTTPClient{
		server:    server,
		token:     opts.Token,
		userAgent: userAgent,
		retry:     retry,
		http:      newHTTPClient(opts),
		logger:    logger,
	}, nil
}

func newHTTPClient(opts Options) *http.Client {
	if opts.HTTP != nil {
		return opts.HTTP
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport, _ := http.DefaultTransport.(*http.Transport)
	transport = transport.Clone()

	if opts.Insecure {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{} //nolint:gosec // MinVersion left to Go defaults
		}

		transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec // explicit user flag
	}

	return &http.Client{Timeout: timeout, Transport: transport}
}

// Get returns a single deployment.
func (c *HTTPClient) Get(ctx context.Context, id v1alpha1.Identity) (*Resource, error) {
	body, err := c.do(ctx, request{method: http.MethodGet, segments: deploymentSegments(id), idempotent: true})
	if err != nil {
		return nil, err
	}

	return NewResource(body)
}

// List returns every deployment in namespace ordered by name.
func (c *HTTPClient) List(ctx context.Context, namespace string) ([]*Resource, error) {
	body, err := c.do(ctx, request{
		method:     http.MethodGet,
		segments:   []string{namespace, "deployments"},
		idempotent: true,
	})
	if err != nil {
		return nil, err
	}

	items := gjson.GetBytes(body, "items").Array()
	resources := make([]*Resource, 0, len(items))

	for _, item := range items {
		resource, err := NewResource([]byte(item.Raw))
		if err != nil {
			return nil, err
		}

		resources = append(resources, resource)
	}

	slices.SortFunc(resources, func(a, b *Resource) int {
		return strings.Compare(a.Name, b.Name)
	})

	return resources, nil
}

// Create posts a new deployment.
func (c *HTTPClient) Create(ctx context.Context, namespace string, body tree.Tree) (*Resource, error) {
	payload, err := body.JSON()
	if err != nil {
		return nil, err
	}

	response, err := c.do(ctx, request{
		method:      http.MethodPost,
		segments:    []string{namespace, "deployments"},
		body:        payload,
		contentType: contentTypeJSON,
	})
	if err != nil {
		return nil, err
	}

	return NewResource(response)
}

// Patch applies a JSON merge patch to a deployment.
func (c *HTTPClient) Patch(ctx context.Context, id v1alpha1.Identity, patch tree.Tree) (*Resource, error) {
	payload, err := patch.JSON()
	if err != nil {
		return nil, err
	}

	response, err := c.do(ctx, request{
		method:      http.MethodPatch,
		segments:    deploymentSegments(id),
		body:        payload,
		contentType: contentTypeMergePatch,
		idempotent:  true,
	})
	if err != nil {
		return nil, err
	}

	return NewResource(response)
}

// Delete removes a deployment.
func (c *HTTPClient) Delete(ctx context.Context, id v1alpha1.Identity) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, segments: deploymentSegments(id), idempotent: true})

	return err
}

type request struct {
	method      string
	segments    []string
	body        []byte
	contentType string
	// idempotent requests are retried on any transient failure; others only
	// when the connection was never established.
	idempotent bool
}

func deploymentSegments(id v1alpha1.Identity) []string {
	return []string{id.Namespace, "deployments", id.Name}
}

func (c *HTTPClient) do(ctx context.Context, req request) ([]byte, error) {
	endpoint := c.server.JoinPath(append([]string{apiPrefix}, req.segments...)...)
	op := req.method + " " + endpoint.Path

	var body []byte

	attempts, err := netretry.Do(ctx, c.retry, func(ctx context.Context) error {
		var attemptErr error

		body, attemptErr = c.roundTrip(ctx, req, endpoint)
		if attemptErr != nil && !req.idempotent && !isDialError(attemptErr) {
			return permanent{attemptErr}
		}

		return attemptErr
	})
	if err == nil {
		return body, nil
	}

	var perm permanent
	if errors.As(err, &perm) {
		err = perm.err
	}

	if ctx.Err() == nil && netretry.IsRetryable(err) {
		return nil, &ConnectivityError{Op: op, Attempts: attempts, Err: err}
	}

	return nil, err
}

func (c *HTTPClient) roundTrip(ctx context.Context, req request, endpoint *url.URL) ([]byte, error) {
	var reader io.Reader
	if req.body != nil {
		reader = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	httpReq.Header.Set("Accept", contentTypeJSON)
	httpReq.Header.Set("User-Agent", c.userAgent)

	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}

	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	fields := logrus.Fields{"method": req.method, "path": endpoint.Path}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	fields["duration_ms"] = time.Since(start).Milliseconds()

	if err != nil {
		c.logger.WithFields(fields).WithError(err).Debug("request failed")

		hint := ""
		if strings.Contains(err.Error(), "x509") || strings.Contains(err.Error(), "certificate") {
			hint = " (TLS error: try --insecure)"
		}

		return nil, fmt.Errorf("request %s %s failed%s: %w", req.method, endpoint.Path, hint, err)
	}

	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response of %s %s: %w", req.method, endpoint.Path, err)
	}

	fields["status"] = resp.StatusCode

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if resp.StatusCode != http.StatusNotFound {
			c.logger.WithFields(fields).Warn("request returned an error status")
		}

		return nil, &APIError{
			Method:     req.method,
			Path:       endpoint.Path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(truncateBody(data)),
		}
	}

	c.logger.WithFields(fields).Debug("request")

	return data, nil
}

// permanent stops netretry.Do from retrying a non-idempotent request.
type permanent struct {
	err error
}

func (p permanent) Error() string   { return p.err.Error() }
func (p permanent) Unwrap() error   { return p.err }
func (p permanent) Retryable() bool { return false }

func isDialError(err error) bool {
	var opErr *net.OpError

	return errors.As(err, &opErr) && opErr.Op == "dial"
}
