package forum

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to the forum REST API. All state lives on the far side; the
// client is a thin translation layer from Go calls to /api/v1 requests.
//
// A Client without a token performs anonymous reads. WithToken derives a
// client that sends the bearer credential on every request.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a forum API client for the given base URL
// (e.g. "https://forum.example.com/api/v1").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
	}
}

// WithToken returns a copy of the client that authorizes requests with the
// given bearer credential. The receiver is not modified.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// apiError extracts the upstream error detail, tolerating non-JSON bodies.
func apiError(resp *http.Response) string {
	var body struct {
		Detail string `json:"detail"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(data, &body); err == nil && body.Detail != "" {
		return body.Detail
	}
	return ""
}

// doRead performs a request for a read path and decodes the JSON response
// into out. Failures map to ErrUnauthorized or FetchFailed per the error
// taxonomy; callers degrade to empty views, never crash.
func (c *Client) doRead(ctx context.Context, op, method, path string, out any) error {
	req, err := c.newRequest(ctx, method, path, nil)
	if err != nil {
		return &FetchFailed{Op: op, Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchFailed{Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	case resp.StatusCode >= 400:
		return &FetchFailed{Op: op, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchFailed{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// doWrite performs a mutating request. Failures map to ErrUnauthorized or
// ActionRejected; the operation is never retried automatically.
func (c *Client) doWrite(ctx context.Context, op, method, path string, body io.Reader, contentType string, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return &ActionRejected{Op: op, Detail: err.Error()}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &ActionRejected{Op: op, Detail: err.Error()}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	case resp.StatusCode >= 400:
		return &ActionRejected{Op: op, Status: resp.StatusCode, Detail: apiError(resp)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &ActionRejected{Op: op, Status: resp.StatusCode, Detail: "undecodable response"}
		}
	}
	return nil
}

// Me validates the bearer credential against GET /users/me.
// Returns ErrUnauthorized when the credential is missing or stale.
func (c *Client) Me(ctx context.Context) (*Identity, error) {
	if c.token == "" {
		return nil, fmt.Errorf("me: %w", ErrUnauthorized)
	}
	var id Identity
	if err := c.doRead(ctx, "me", http.MethodGet, "/users/me", &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// UpdateProfile saves the nickname and the three background image URLs.
func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*Identity, error) {
	payload, err := json.Marshal(upd)
	if err != nil {
		return nil, &ActionRejected{Op: "update profile", Detail: err.Error()}
	}
	var id Identity
	if err := c.doWrite(ctx, "update profile", http.MethodPatch, "/users/me",
		bytes.NewReader(payload), "application/json", &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// ListBoards fetches all boards.
func (c *Client) ListBoards(ctx context.Context) ([]Board, error) {
	var boards []Board
	if err := c.doRead(ctx, "list boards", http.MethodGet, "/boards/", &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

// ListPosts fetches posts matching the query. The board and user filters are
// mutually exclusive on the wire; UserID takes precedence when both are set.
func (c *Client) ListPosts(ctx context.Context, q PostQuery) ([]Post, error) {
	params := url.Values{}
	switch {
	case q.UserID != nil:
		params.Set("user_id", strconv.FormatInt(*q.UserID, 10))
	case q.BoardID != nil:
		params.Set("board_id", strconv.FormatInt(*q.BoardID, 10))
	}
	path := "/posts/"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	var posts []Post
	if err := c.doRead(ctx, "list posts", http.MethodGet, path, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// CreatePost publishes a new post.
func (c *Client) CreatePost(ctx context.Context, in PostCreate) (*Post, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, &ActionRejected{Op: "create post", Detail: err.Error()}
	}
	var post Post
	if err := c.doWrite(ctx, "create post", http.MethodPost, "/posts/",
		bytes.NewReader(payload), "application/json", &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes a post. Ownership is enforced server-side.
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.doWrite(ctx, "delete post", http.MethodDelete,
		"/posts/"+strconv.FormatInt(id, 10), nil, "", nil)
}

// Vote casts an up (dir=1) or down (dir=-1) vote on a post.
func (c *Client) Vote(ctx context.Context, postID int64, dir int) error {
	if dir != 1 && dir != -1 {
		return &ActionRejected{Op: "vote", Detail: fmt.Sprintf("invalid direction %d", dir)}
	}
	path := fmt.Sprintf("/posts/%d/vote?dir=%d", postID, dir)
	return c.doWrite(ctx, "vote", http.MethodPost, path, nil, "", nil)
}

// ListComments fetches the comments of a post.
func (c *Client) ListComments(ctx context.Context, postID int64) ([]Comment, error) {
	var comments []Comment
	path := fmt.Sprintf("/posts/%d/comments", postID)
	if err := c.doRead(ctx, "list comments", http.MethodGet, path, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateComment appends a comment to a post. The upstream API takes the
// content and spoiler flag as query parameters.
func (c *Client) CreateComment(ctx context.Context, postID int64, content string, isSpoiler bool) (*Comment, error) {
	params := url.Values{}
	params.Set("content", content)
	params.Set("is_spoiler", strconv.FormatBool(isSpoiler))
	path := fmt.Sprintf("/posts/%d/comments?%s", postID, params.Encode())
	var comment Comment
	if err := c.doWrite(ctx, "create comment", http.MethodPost, path, nil, "", &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// UploadImage sends an image as multipart form data and returns the public
// URL the API stored it under. The caller turns the URL into Markdown image
// syntax.
func (c *Client) UploadImage(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return "", &ActionRejected{Op: "upload image", Detail: err.Error()}
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", &ActionRejected{Op: "upload image", Detail: err.Error()}
	}
	if err := mw.Close(); err != nil {
		return "", &ActionRejected{Op: "upload image", Detail: err.Error()}
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := c.doWrite(ctx, "upload image", http.MethodPost, "/upload/image",
		&buf, mw.FormDataContentType(), &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", &ActionRejected{Op: "upload image", Detail: "empty URL in response"}
	}
	return out.URL, nil
}
