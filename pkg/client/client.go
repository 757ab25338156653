package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/fatih/structs"
	"github.com/tavern-lab/backend/pkg/errorx"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

type envelope struct {
	Code  int             `json:"code"`
	Error string          `json:"error"`
	Data  json.RawMessage `json:"data"`
}

// Client calls the tavern API. Errors returned by the server are decoded to
// errorx.Error.
type Client struct {
	endpoint   string
	httpClient *http.Client

	mu          sync.RWMutex
	accessToken string
}

func New(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = token
}

func (c *Client) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

func get[Request, Response any](ctx context.Context, c *Client, path string, req *Request) (*Response, error) {
	u := c.endpoint + path
	if query := encodeQuery(req); len(query) > 0 {
		u += "?" + query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	return do[Response](ctx, c, httpReq)
}

func post[Request, Response any](ctx context.Context, c *Client, path string, req *Request) (*Response, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return do[Response](ctx, c, httpReq)
}

// upload posts a single file as the multipart form key "image". Fields of req
// travel in the query string.
func upload[Request, Response any](
	ctx context.Context, c *Client, path string, req *Request, filename string, data []byte,
) (*Response, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}

	if _, err := part.Write(data); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	u := c.endpoint + path
	if query := encodeQuery(req); len(query) > 0 {
		u += "?" + query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	return do[Response](ctx, c, httpReq)
}

func do[Response any](ctx context.Context, c *Client, req *http.Request) (*Response, error) {
	if token := c.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		xcontext.Logger(ctx).Warnf("An error occured when calling to %s: %v", req.URL.Path, err)
		return nil, errorx.New(errorx.Unavailable, "Cannot reach the server")
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errorx.New(errorx.BadResponse, "Cannot read the response")
	}

	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		xcontext.Logger(ctx).Debugf("Invalid response of %s (%d): %s", req.URL.Path, resp.StatusCode, b)
		return nil, errorx.New(errorx.BadResponse, "Invalid response with status %d", resp.StatusCode)
	}

	if env.Code != 0 {
		return nil, errorx.New(errorx.Code(env.Code), "%s", env.Error)
	}

	result := new(Response)
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return nil, errorx.New(errorx.BadResponse, "Invalid response data: %v", err)
		}
	}

	return result, nil
}

func encodeQuery(req any) url.Values {
	values := url.Values{}
	if req == nil || !structs.IsStruct(req) {
		return values
	}

	s := structs.New(req)
	s.TagName = "json"
	for k, v := range s.Map() {
		switch t := v.(type) {
		case string:
			if t != "" {
				values.Set(k, t)
			}
		case int:
			if t != 0 {
				values.Set(k, fmt.Sprint(t))
			}
		case bool:
			if t {
				values.Set(k, "true")
			}
		default:
			values.Set(k, fmt.Sprint(t))
		}
	}

	return values
}
