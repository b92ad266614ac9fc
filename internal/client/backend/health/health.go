// Package health probes backend reachability before the app starts routing.
package health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/authflow/internal/client/backend"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

// None always succeeds.
var None Checker = CheckerFunc(func(context.Context) error { return nil })

// HTTPChecker expects a 2xx answer to GET URL.
type HTTPChecker struct {
	URL    string
	APIKey string
	Client *http.Client
}

func NewHTTPChecker(url, apiKey string, client *http.Client) *HTTPChecker {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPChecker{URL: url, APIKey: apiKey, Client: client}
}

func (c *HTTPChecker) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return err
	}
	if c.APIKey != "" {
		req.Header.Set("apikey", c.APIKey)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return backend.NetworkError(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return backend.NetworkError(fmt.Errorf("health %s: status %d", c.URL, resp.StatusCode))
	}
	return nil
}

// GRPCChecker asks a grpc.health.v1 server whether Service is SERVING.
type GRPCChecker struct {
	conn    *grpc.ClientConn
	client  healthpb.HealthClient
	Service string
}

// NewGRPCChecker dials addr lazily with insecure transport credentials.
func NewGRPCChecker(addr, service string, opts ...grpc.DialOption) (*GRPCChecker, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &GRPCChecker{conn: conn, client: healthpb.NewHealthClient(conn), Service: service}, nil
}

func (c *GRPCChecker) Check(ctx context.Context) error {
	resp, err := c.client.Check(ctx, &healthpb.HealthCheckRequest{Service: c.Service})
	if err != nil {
		return err
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return backend.NetworkError(fmt.Errorf("service %q is %s", c.Service, resp.GetStatus()))
	}
	return nil
}

func (c *GRPCChecker) Close() error {
	return c.conn.Close()
}

// All runs checkers in order and returns the first failure.
func All(checkers ...Checker) Checker {
	return CheckerFunc(func(ctx context.Context) error {
		for _, c := range checkers {
			if c == nil {
				continue
			}
			if err := c.Check(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// ErrUnknownKind is returned by New for an unsupported checker kind.
var ErrUnknownKind = errors.New("unknown health check kind")

type Options struct {
	HTTPURL     string
	APIKey      string
	HTTPClient  *http.Client
	GRPCAddr    string
	GRPCService string
}

// New builds the checker named by kind: "http", "grpc" or "none".
// A returned *GRPCChecker must be closed by the caller.
func New(kind string, o Options) (Checker, error) {
	switch kind {
	case "", "none":
		return None, nil
	case "http":
		return NewHTTPChecker(o.HTTPURL, o.APIKey, o.HTTPClient), nil
	case "grpc":
		return NewGRPCChecker(o.GRPCAddr, o.GRPCService)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}
