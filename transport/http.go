package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fastjson"

	"github.com/nerrad567/graylogging/gelf"
)

// HTTP defaults.
const (
	// DefaultHTTPPort is the Graylog GELF HTTP input's conventional port.
	DefaultHTTPPort = 12201

	// DefaultHTTPScheme is used when HTTPOptions.Scheme is empty.
	DefaultHTTPScheme = "https"

	// DefaultHTTPTimeout bounds one POST round trip.
	DefaultHTTPTimeout = 30 * time.Second

	// gelfPath is the fixed endpoint of a Graylog GELF HTTP input.
	gelfPath = "/gelf"

	// maxResponseBody caps how much of a response body is read.
	maxResponseBody = 1 << 20

	// maxErrorBody caps the body excerpt kept in a StatusError.
	maxErrorBody = 512

	// statusCodeKey is added to every successful Result.
	statusCodeKey = "status_code"

	// errorClassKey in a 2xx body marks a server-side failure.
	errorClassKey = "error_class"

	tlsMinVersion = tls.VersionTLS12
)

// HTTPOptions configures NewHTTP.
type HTTPOptions struct {
	Options

	// Scheme is "http" or "https" (default).
	Scheme string

	// Timeout defaults to DefaultHTTPTimeout.
	Timeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// IgnoreErrorClass accepts 2xx bodies that carry "error_class".
	IgnoreErrorClass bool
}

// HTTPClient posts GELF payloads to <scheme>://<host>:<port>/gelf.
//
// Unlike the socket transports, every delivery failure is returned.
type HTTPClient struct {
	url              string
	client           *http.Client
	ignoreErrorClass bool
	observer         Observer
	logger           *slog.Logger
}

// resultParsers is shared by all HTTP clients.
var resultParsers fastjson.ParserPool

// NewHTTP returns a client for host:port. A zero port selects DefaultHTTPPort.
func NewHTTP(host string, port int, opts HTTPOptions) *HTTPClient {
	scheme := strings.ToLower(opts.Scheme)
	if scheme == "" {
		scheme = DefaultHTTPScheme
	}
	if port == 0 {
		port = DefaultHTTPPort
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}

	t := http.DefaultTransport.(*http.Transport).Clone()
	t.DisableKeepAlives = true
	t.TLSClientConfig = &tls.Config{
		MinVersion:         tlsMinVersion,
		InsecureSkipVerify: opts.InsecureSkipVerify, // #nosec G402 -- operator opt-in
	}

	logger := opts.Logger
	if logger == nil {
		logger = stderrLogger()
	}

	return &HTTPClient{
		url: fmt.Sprintf("%s://%s%s", scheme, joinHostPort(host, port), gelfPath),
		client: &http.Client{
			Timeout:   timeout,
			Transport: t,
		},
		ignoreErrorClass: opts.IgnoreErrorClass,
		observer:         opts.Observer,
		logger:           logger,
	}
}

// URL returns the endpoint the client posts to.
func (c *HTTPClient) URL() string {
	return c.url
}

// Send validates p and posts it.
//
// Returns:
//   - Result: the decoded JSON body (empty when there is none) plus "status_code"
//   - error: validation errors, *StatusError for non-2xx responses,
//     ErrServerReported when the body carries "error_class", or ErrTransport
//     for network failures
func (c *HTTPClient) Send(ctx context.Context, p gelf.Payload) (Result, error) {
	if err := gelf.Validate(p); err != nil {
		return nil, err
	}
	body, err := encodePayload(p)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := c.post(ctx, body)
	if c.observer != nil {
		c.observer.ObserveDelivery(KindHTTP, err, time.Since(start))
	}
	if err != nil {
		c.logger.Debug("gelf http delivery failed", "url", c.url, "error", err)
	}

	return result, err
}

// Close releases idle connections held by the underlying transport.
func (c *HTTPClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) post(ctx context.Context, body []byte) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %w", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrTransport, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		excerpt := strings.TrimSpace(string(data))
		if len(excerpt) > maxErrorBody {
			excerpt = excerpt[:maxErrorBody]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: excerpt}
	}

	result := Result{}
	if len(bytes.TrimSpace(data)) > 0 {
		result, err = parseResult(data)
		if err != nil {
			return nil, fmt.Errorf("%w: decoding response: %w", ErrTransport, err)
		}
	}
	result[statusCodeKey] = resp.StatusCode

	if errorClass, ok := result[errorClassKey]; ok && !c.ignoreErrorClass {
		return result, fmt.Errorf("%w: %v", ErrServerReported, errorClass)
	}

	return result, nil
}

// parseResult decodes a JSON object body into a Result.
func parseResult(data []byte) (Result, error) {
	p := resultParsers.Get()
	defer resultParsers.Put(p)

	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, err
	}
	obj, err := v.Object()
	if err != nil {
		return nil, fmt.Errorf("response body is %s, want object", v.Type())
	}

	result := make(Result, obj.Len()+1)
	obj.Visit(func(key []byte, v *fastjson.Value) {
		result[string(key)] = jsonValue(v)
	})
	return result, nil
}

// jsonValue copies a fastjson value into plain Go values, the same shapes
// encoding/json produces for an interface{} target.
func jsonValue(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeObject:
		obj := v.GetObject()
		m := make(map[string]any, obj.Len())
		obj.Visit(func(key []byte, child *fastjson.Value) {
			m[string(key)] = jsonValue(child)
		})
		return m
	case fastjson.TypeArray:
		items := v.GetArray()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = jsonValue(item)
		}
		return out
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		return v.GetFloat64()
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	default:
		return nil
	}
}
