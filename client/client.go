// Package client talks to the SocioMate API and keeps the local application
// state a front end renders from.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sociomate/views"

	"github.com/goccy/go-json"
)

// APIError is a non-2xx response. Message comes from the server's
// {"message": ...} body when present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// File is an image to upload.
type File struct {
	Name string
	Body io.Reader
}

// ProfileUpdate holds the fields to change. Empty fields are left alone.
type ProfileUpdate struct {
	Username string
	Bio      string
	Picture  *File
}

// Client is safe for concurrent use once Token is set.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Register(ctx context.Context, username, email, password string) (*views.AuthUser, error) {
	var out views.AuthUser
	body := map[string]string{"username": username, "email": email, "password": password}
	if err := c.send(ctx, http.MethodPost, "/api/auth/register", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*views.AuthUser, error) {
	var out views.AuthUser
	body := map[string]string{"email": email, "password": password}
	if err := c.send(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Posts(ctx context.Context) ([]views.Post, error) {
	var out []views.Post
	err := c.send(ctx, http.MethodGet, "/api/posts", nil, &out)
	return out, err
}

func (c *Client) UserPosts(ctx context.Context, userID string) ([]views.Post, error) {
	var out []views.Post
	err := c.send(ctx, http.MethodGet, "/api/posts/user/"+url.PathEscape(userID), nil, &out)
	return out, err
}

func (c *Client) CreatePost(ctx context.Context, content string, image *File) (*views.Post, error) {
	var out views.Post
	err := c.sendForm(ctx, http.MethodPost, "/api/posts", map[string]string{"content": content}, "image", image, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ToggleLike(ctx context.Context, postID string) (*views.Post, error) {
	return c.post(ctx, http.MethodPut, "/api/posts/"+url.PathEscape(postID)+"/like", nil)
}

func (c *Client) AddComment(ctx context.Context, postID, content string) (*views.Post, error) {
	return c.post(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(postID)+"/comment", map[string]string{"content": content})
}

func (c *Client) DeleteComment(ctx context.Context, postID, commentID string) (*views.Post, error) {
	return c.post(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(postID)+"/comments/"+url.PathEscape(commentID), nil)
}

func (c *Client) DeletePost(ctx context.Context, postID string) error {
	return c.send(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(postID), nil, nil)
}

func (c *Client) Profile(ctx context.Context, userID string) (*views.User, error) {
	return c.user(ctx, http.MethodGet, "/api/users/profile/"+url.PathEscape(userID))
}

func (c *Client) ToggleFollow(ctx context.Context, userID string) (*views.User, error) {
	return c.user(ctx, http.MethodPut, "/api/users/"+url.PathEscape(userID)+"/follow")
}

func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*views.User, error) {
	fields := map[string]string{}
	if upd.Username != "" {
		fields["username"] = upd.Username
	}
	if upd.Bio != "" {
		fields["bio"] = upd.Bio
	}
	var out views.User
	if err := c.sendForm(ctx, http.MethodPut, "/api/users/profile", fields, "profilePicture", upd.Picture, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, method, path string, body any) (*views.Post, error) {
	var out views.Post
	if err := c.send(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) user(ctx context.Context, method, path string) (*views.User, error) {
	var out views.User
	if err := c.send(ctx, method, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// send issues a JSON request and decodes the JSON response into out.
func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) sendForm(ctx context.Context, method, path string, fields map[string]string, fileField string, f *File, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	if f != nil {
		fw, err := mw.CreateFormFile(fileField, f.Name)
		if err != nil {
			return err
		}
		if _, err := io.Copy(fw, f.Body); err != nil {
			return fmt.Errorf("read %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var body struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &body) == nil && body.Message != "" {
			apiErr.Message = body.Message
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
