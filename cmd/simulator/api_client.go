package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api/v1/users",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Fullname   string `json:"fullname"`
	Email      string `json:"email"`
	Avatar     string `json:"avatar"`
	CoverImage string `json:"coverImage"`
}

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type LoginResponse struct {
	User User `json:"user"`
	Tokens
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Errors     []string        `json:"errors"`
}

// APIError is a non-2xx answer from the backend
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// placeholderPNG is a 1x1 transparent PNG used as avatar for simulated users
var placeholderPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// Register creates a user with a generated avatar
func (c *APIClient) Register(username, fullname, email, password string) (*User, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	mw.WriteField("username", username)
	mw.WriteField("fullname", fullname)
	mw.WriteField("email", email)
	mw.WriteField("password", password)
	part, err := mw.CreateFormFile("avatar", "avatar.png")
	if err != nil {
		return nil, err
	}
	part.Write(placeholderPNG)
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/register", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var user User
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login returns the user and the issued token pair
func (c *APIClient) Login(username, password string) (*LoginResponse, error) {
	req, err := c.jsonRequest(http.MethodPost, "/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var resp LoginResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh exchanges a refresh token for a new pair
func (c *APIClient) Refresh(refreshToken string) (*Tokens, error) {
	req, err := c.jsonRequest(http.MethodPost, "/refresh-token", "", map[string]string{
		"refreshToken": refreshToken,
	})
	if err != nil {
		return nil, err
	}

	var tokens Tokens
	if err := c.do(req, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// CurrentUser fetches the caller's profile
func (c *APIClient) CurrentUser(accessToken string) (*User, error) {
	req, err := c.jsonRequest(http.MethodGet, "/current-user", accessToken, nil)
	if err != nil {
		return nil, err
	}

	var user User
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword replaces the caller's password
func (c *APIClient) ChangePassword(accessToken, oldPassword, newPassword string) error {
	req, err := c.jsonRequest(http.MethodPost, "/change-password", accessToken, map[string]string{
		"oldPassword": oldPassword,
		"newPassword": newPassword,
	})
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Logout ends the caller's session
func (c *APIClient) Logout(accessToken string) error {
	req, err := c.jsonRequest(http.MethodPost, "/logout", accessToken, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *APIClient) jsonRequest(method, path, accessToken string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	return req, nil
}

func (c *APIClient) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("status %d: unexpected body: %s", resp.StatusCode, string(raw))
	}
	if resp.StatusCode >= 300 || !env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	if out != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}
