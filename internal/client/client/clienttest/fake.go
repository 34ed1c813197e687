// Package clienttest provides a scriptable client.Client for tests.
package clienttest

import (
	"context"
	"io"
	"sync"

	"github.com/dmitrijs2005/whatthenote/internal/client/client"
	"github.com/dmitrijs2005/whatthenote/internal/client/models"
)

// Client implements client.Client. Unset funcs fail the call with a
// request error so tests notice unexpected traffic.
type Client struct {
	mu    sync.Mutex
	calls map[string]int

	RegisterFn      func(name, email, password string) (models.User, error)
	LoginFn         func(email, password string) (string, error)
	CurrentUserFn   func() (models.User, error)
	UpdateUserFn    func(name, email string) (models.User, error)
	DeleteUserFn    func() error
	ListDocumentsFn func() ([]models.Document, error)
	DashboardFn     func(subject string) ([]models.Document, error)
	GetDocumentFn   func(id models.ID) (models.Document, error)
	UploadFn        func(filename string, r io.Reader) (models.Document, error)
	DeleteFn        func(id models.ID) error
	AskFn           func(ctx context.Context, id models.ID, question string) (models.Query, error)
	FeaturesFn      func() ([]models.Feature, error)
}

// ErrUnexpected is returned by calls without a scripted func.
var ErrUnexpected = &client.APIError{Kind: client.KindRequest, Status: 500, Message: "unexpected call"}

func (f *Client) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

// Count returns how many times method name was called.
func (f *Client) Count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

// Total returns the number of calls made.
func (f *Client) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *Client) Register(_ context.Context, name, email, password string) (models.User, error) {
	f.hit("Register")
	if f.RegisterFn == nil {
		return models.User{}, ErrUnexpected
	}
	return f.RegisterFn(name, email, password)
}

func (f *Client) Login(_ context.Context, email, password string) (string, error) {
	f.hit("Login")
	if f.LoginFn == nil {
		return "", ErrUnexpected
	}
	return f.LoginFn(email, password)
}

func (f *Client) CurrentUser(context.Context) (models.User, error) {
	f.hit("CurrentUser")
	if f.CurrentUserFn == nil {
		return models.User{}, ErrUnexpected
	}
	return f.CurrentUserFn()
}

func (f *Client) UpdateUser(_ context.Context, name, email string) (models.User, error) {
	f.hit("UpdateUser")
	if f.UpdateUserFn == nil {
		return models.User{}, ErrUnexpected
	}
	return f.UpdateUserFn(name, email)
}

func (f *Client) DeleteUser(context.Context) error {
	f.hit("DeleteUser")
	if f.DeleteUserFn == nil {
		return ErrUnexpected
	}
	return f.DeleteUserFn()
}

func (f *Client) ListDocuments(context.Context) ([]models.Document, error) {
	f.hit("ListDocuments")
	if f.ListDocumentsFn == nil {
		return nil, ErrUnexpected
	}
	return f.ListDocumentsFn()
}

func (f *Client) Dashboard(_ context.Context, subject string) ([]models.Document, error) {
	f.hit("Dashboard")
	if f.DashboardFn == nil {
		return nil, ErrUnexpected
	}
	return f.DashboardFn(subject)
}

func (f *Client) GetDocument(_ context.Context, id models.ID) (models.Document, error) {
	f.hit("GetDocument")
	if f.GetDocumentFn == nil {
		return models.Document{}, ErrUnexpected
	}
	return f.GetDocumentFn(id)
}

func (f *Client) UploadDocument(_ context.Context, filename string, r io.Reader) (models.Document, error) {
	f.hit("UploadDocument")
	if f.UploadFn == nil {
		return models.Document{}, ErrUnexpected
	}
	return f.UploadFn(filename, r)
}

func (f *Client) DeleteDocument(_ context.Context, id models.ID) error {
	f.hit("DeleteDocument")
	if f.DeleteFn == nil {
		return ErrUnexpected
	}
	return f.DeleteFn(id)
}

func (f *Client) AskQuestion(ctx context.Context, id models.ID, question string) (models.Query, error) {
	f.hit("AskQuestion")
	if f.AskFn == nil {
		return models.Query{}, ErrUnexpected
	}
	return f.AskFn(ctx, id, question)
}

func (f *Client) Features(context.Context) ([]models.Feature, error) {
	f.hit("Features")
	if f.FeaturesFn == nil {
		return nil, ErrUnexpected
	}
	return f.FeaturesFn()
}

var _ client.Client = (*Client)(nil)
