package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/whatthenote/internal/client/models"
	"github.com/dmitrijs2005/whatthenote/internal/common"
	"github.com/dmitrijs2005/whatthenote/internal/logging"
	"github.com/dmitrijs2005/whatthenote/internal/netx"
	"github.com/google/uuid"
)

// HTTPClient implements Client over the backend's JSON/HTTP API.
type HTTPClient struct {
	baseURL           string
	httpClient        *http.Client
	credentials       CredentialStore
	logger            logging.Logger
	requestTimeout    time.Duration
	processingTimeout time.Duration

	mu             sync.Mutex
	onUnauthorized []func(ctx context.Context)
}

// Option customizes an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

// WithTimeouts sets the deadline for ordinary calls and for the calls that
// run the model on the backend (upload, ask). Zero disables a deadline.
func WithTimeouts(request, processing time.Duration) Option {
	return func(c *HTTPClient) {
		c.requestTimeout = request
		c.processingTimeout = processing
	}
}

// NewHTTPClient builds a client for baseURL reading the bearer credential
// from credentials.
func NewHTTPClient(baseURL string, credentials CredentialStore, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:           strings.TrimRight(baseURL, "/"),
		httpClient:        &http.Client{},
		credentials:       credentials,
		logger:            logging.Discard(),
		requestTimeout:    15 * time.Second,
		processingTimeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnUnauthorized registers fn to run after any request is answered with 401
// and the stored credential has been cleared.
func (c *HTTPClient) OnUnauthorized(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = append(c.onUnauthorized, fn)
}

type call struct {
	method      string
	segments    []string
	query       url.Values
	body        []byte
	contentType string
	anonymous   bool
	processing  bool
}

func jsonCall(method string, payload any, segments ...string) (call, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return call{}, err
	}
	return call{method: method, segments: segments, body: b, contentType: "application/json"}, nil
}

func (c *HTTPClient) Register(ctx context.Context, name, email, password string) (models.User, error) {
	req, err := jsonCall(http.MethodPost, map[string]string{"name": name, "email": email, "password": password}, "register")
	if err != nil {
		return models.User{}, &APIError{Kind: KindRequest, Message: err.Error(), Err: err}
	}
	req.anonymous = true

	var user models.User
	if err := c.do(ctx, req, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a bearer token. The backend expects the
// OAuth2 password form, with the e-mail as username.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req := call{
		method:      http.MethodPost,
		segments:    []string{"token"},
		body:        []byte(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
		anonymous:   true,
	}

	var resp tokenResponse
	if err := c.do(ctx, req, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", &APIError{Kind: KindRequest, Status: http.StatusOK, Message: "Login failed"}
	}
	return resp.AccessToken, nil
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (models.User, error) {
	var user models.User
	if err := c.do(ctx, call{method: http.MethodGet, segments: []string{"users", "me"}}, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (c *HTTPClient) UpdateUser(ctx context.Context, name, email string) (models.User, error) {
	req, err := jsonCall(http.MethodPut, map[string]string{"name": name, "email": email}, "users", "me")
	if err != nil {
		return models.User{}, &APIError{Kind: KindRequest, Message: err.Error(), Err: err}
	}

	var user models.User
	if err := c.do(ctx, req, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (c *HTTPClient) DeleteUser(ctx context.Context) error {
	return c.do(ctx, call{method: http.MethodDelete, segments: []string{"users", "me"}}, nil)
}

func (c *HTTPClient) ListDocuments(ctx context.Context) ([]models.Document, error) {
	var docs []models.Document
	if err := c.do(ctx, call{method: http.MethodGet, segments: []string{"documents"}}, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Dashboard lists documents filtered server side by subject. The
// common.AllSubjects sentinel (or "") requests every document.
func (c *HTTPClient) Dashboard(ctx context.Context, subject string) ([]models.Document, error) {
	req := call{method: http.MethodGet, segments: []string{"dashboard"}}
	if subject != "" && subject != common.AllSubjects {
		req.query = url.Values{"subject": []string{subject}}
	}

	var docs []models.Document
	if err := c.do(ctx, req, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *HTTPClient) GetDocument(ctx context.Context, id models.ID) (models.Document, error) {
	var doc models.Document
	if err := c.do(ctx, call{method: http.MethodGet, segments: []string{"documents", id.String()}}, &doc); err != nil {
		return models.Document{}, err
	}
	doc.SortQueries()
	return doc, nil
}

func (c *HTTPClient) UploadDocument(ctx context.Context, filename string, r io.Reader) (models.Document, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err == nil {
		_, err = io.Copy(part, r)
	}
	if err == nil {
		err = writer.Close()
	}
	if err != nil {
		return models.Document{}, &APIError{Kind: KindRequest, Message: fmt.Sprintf("reading %s: %v", filename, err), Err: err}
	}

	req := call{
		method:      http.MethodPost,
		segments:    []string{"documents", "upload"},
		body:        body.Bytes(),
		contentType: writer.FormDataContentType(),
		processing:  true,
	}

	var doc models.Document
	if err := c.do(ctx, req, &doc); err != nil {
		return models.Document{}, err
	}
	return doc, nil
}

func (c *HTTPClient) DeleteDocument(ctx context.Context, id models.ID) error {
	return c.do(ctx, call{method: http.MethodDelete, segments: []string{"documents", id.String()}}, nil)
}

func (c *HTTPClient) AskQuestion(ctx context.Context, id models.ID, question string) (models.Query, error) {
	req, err := jsonCall(http.MethodPost, map[string]string{"question": question}, "documents", id.String(), "query")
	if err != nil {
		return models.Query{}, &APIError{Kind: KindRequest, Message: err.Error(), Err: err}
	}
	req.processing = true

	var q models.Query
	if err := c.do(ctx, req, &q); err != nil {
		return models.Query{}, err
	}
	return q, nil
}

func (c *HTTPClient) Features(ctx context.Context) ([]models.Feature, error) {
	var features []models.Feature
	if err := c.do(ctx, call{method: http.MethodGet, segments: []string{"features"}, anonymous: true}, &features); err != nil {
		return nil, err
	}
	return features, nil
}

// do sends req and decodes a 2xx JSON body into out (when non-nil). Every
// failure is normalized into an *APIError; a 401 additionally clears the
// stored credential and fires the OnUnauthorized handlers.
func (c *HTTPClient) do(ctx context.Context, req call, out any) error {
	timeout := c.requestTimeout
	if req.processing {
		timeout = c.processingTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	target := netx.JoinURL(c.baseURL, req.segments...)
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return &APIError{Kind: KindRequest, Message: err.Error(), Err: err}
	}

	requestID := uuid.NewString()
	httpReq.Header.Set(common.RequestIDHeaderName, requestID)
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if !req.anonymous {
		if err := c.addAuthHeader(ctx, httpReq); err != nil {
			return &APIError{Kind: KindRequest, Message: "reading stored credential failed", Err: err}
		}
	}

	log := c.logger.With("method", req.method, "path", httpReq.URL.Path, "request_id", requestID)
	started := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Warn(ctx, "request failed", "error", err, "network", netx.IsNetworkError(err))
		return networkError(err)
	}
	defer resp.Body.Close()

	log.Debug(ctx, "request done", "status", resp.StatusCode, "elapsed", time.Since(started))

	if resp.StatusCode >= 400 {
		apiErr := statusError(resp.StatusCode, decodeErrorMessage(resp.Body))
		if apiErr.Kind == KindAuth {
			c.handleUnauthorized(ctx)
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if netx.IsNetworkError(err) || errors.Is(err, io.ErrUnexpectedEOF) {
			return networkError(err)
		}
		return &APIError{Kind: KindRequest, Status: resp.StatusCode, Message: "Unexpected response from server", Err: err}
	}
	return nil
}

func (c *HTTPClient) addAuthHeader(ctx context.Context, req *http.Request) error {
	if c.credentials == nil {
		return nil
	}
	token, err := c.credentials.Token(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(token) == "" {
		return nil
	}
	req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	return nil
}

func (c *HTTPClient) handleUnauthorized(ctx context.Context) {
	if c.credentials != nil {
		if err := c.credentials.ClearToken(ctx); err != nil {
			c.logger.Error(ctx, "clearing stored credential failed", "error", err)
		}
	}

	c.mu.Lock()
	handlers := append([]func(context.Context){}, c.onUnauthorized...)
	c.mu.Unlock()

	for _, fn := range handlers {
		fn(ctx)
	}
}

// decodeErrorMessage extracts the server-provided message: FastAPI's
// "detail" (a string, or a validation list whose first "msg" is used),
// then "message", then "error".
func decodeErrorMessage(r io.Reader) string {
	var body struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 1<<20)).Decode(&body); err != nil {
		return ""
	}

	if len(body.Detail) > 0 {
		var s string
		if err := json.Unmarshal(body.Detail, &s); err == nil && s != "" {
			return s
		}
		var list []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(body.Detail, &list); err == nil && len(list) > 0 && list[0].Msg != "" {
			return list[0].Msg
		}
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

var _ Client = (*HTTPClient)(nil)
