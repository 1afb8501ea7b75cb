package ndex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/vk/hiertask/internal/ctxlog"
	"github.com/vk/hiertask/internal/hierarchy"
	"github.com/vk/hiertask/internal/table"
	"resty.dev/v3"
)

// Visibility values accepted by NDEx.
const (
	VisibilityPublic  = "PUBLIC"
	VisibilityPrivate = "PRIVATE"
)

// Credentials authenticate against the NDEx server.
type Credentials struct {
	Identity string
	Secret   string
}

// Request describes one publication.
type Request struct {
	Name        string
	Features    *table.FeatureTable
	MainFeature string
	// Server is the fully qualified base URL, e.g. http://test.ndexbio.org.
	Server      string
	Credentials Credentials
	Layout      string
	Visibility  string
}

// Metadata describes the network that was created.
type Metadata struct {
	UUID      string
	NodeCount int
	EdgeCount int
}

// PublishError reports a failed call to the NDEx server.
type PublishError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *PublishError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ndex %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("ndex %s failed with status %d: %s", e.Op, e.Status, e.Body)
}

func (e *PublishError) Unwrap() error { return e.Err }

// Client talks to the NDEx v2 REST API.
type Client struct {
	http *resty.Client
}

// NewClient returns a client. A zero timeout means requests are bounded only
// by the context passed to Publish.
func NewClient(timeout time.Duration) *Client {
	c := resty.New().
		SetDisableWarn(true).
		SetHeader("User-Agent", "hiertask")
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &Client{http: c}
}

// Close releases idle connections.
func (c *Client) Close() error {
	return c.http.Close()
}

// Publish uploads the hierarchy and returns the URL reported by the server.
func (c *Client) Publish(ctx context.Context, h *hierarchy.Hierarchy, req Request) (string, *Metadata, error) {
	logger := ctxlog.FromContext(ctx).With("server", req.Server, "name", req.Name)

	doc, err := newNetwork(h, encodeOptions{
		Name:        req.Name,
		Layout:      req.Layout,
		MainFeature: req.MainFeature,
		Features:    req.Features,
	})
	if err != nil {
		return "", nil, &PublishError{Op: "encode", Err: err}
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", nil, &PublishError{Op: "encode", Err: err}
	}
	logger.Debug("Uploading network.", "bytes", len(payload), "nodes", len(doc.nodes), "edges", len(doc.edges))

	base := strings.TrimRight(req.Server, "/")
	res, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(req.Credentials.Identity, req.Credentials.Secret).
		SetFileReader("CXNetworkStream", "network.cx", bytes.NewReader(payload)).
		Post(base + "/v2/network")
	if err != nil {
		return "", nil, &PublishError{Op: "upload", Err: err}
	}
	if !res.IsSuccess() {
		return "", nil, &PublishError{Op: "upload", Status: res.StatusCode(), Body: res.String()}
	}

	networkURL := strings.Trim(res.String(), `"`)
	if networkURL == "" {
		networkURL = res.Header().Get("Location")
	}
	id, err := networkUUID(networkURL)
	if err != nil {
		return "", nil, &PublishError{Op: "upload", Status: res.StatusCode(), Body: res.String(), Err: err}
	}
	logger.Info("Network uploaded.", "uuid", id)

	if strings.EqualFold(req.Visibility, VisibilityPublic) {
		res, err = c.http.R().
			SetContext(ctx).
			SetBasicAuth(req.Credentials.Identity, req.Credentials.Secret).
			SetBody(map[string]string{"visibility": VisibilityPublic}).
			Put(base + "/v2/network/" + id + "/systemproperty")
		if err != nil {
			return "", nil, &PublishError{Op: "set visibility", Err: err}
		}
		if !res.IsSuccess() {
			return "", nil, &PublishError{Op: "set visibility", Status: res.StatusCode(), Body: res.String()}
		}
		logger.Debug("Network made public.", "uuid", id)
	}

	return networkURL, &Metadata{UUID: id, NodeCount: len(doc.nodes), EdgeCount: len(doc.edges)}, nil
}

// networkUUID extracts the last path segment of a network URL.
func networkUUID(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("unparseable network URL %q: %w", raw, err)
	}
	id := path.Base(u.Path)
	if id == "" || id == "." || id == "/" {
		return "", fmt.Errorf("no network id in URL %q", raw)
	}
	return id, nil
}
