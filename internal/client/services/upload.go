package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dmitrijs2005/whatthenote/internal/client/client"
	"github.com/dmitrijs2005/whatthenote/internal/client/collection"
	"github.com/dmitrijs2005/whatthenote/internal/client/models"
	"github.com/dmitrijs2005/whatthenote/internal/common"
	"github.com/dmitrijs2005/whatthenote/internal/logging"
)

// ErrUploadInProgress is returned when the flow is asked to change while a
// file is being uploaded.
var ErrUploadInProgress = errors.New("an upload is already in progress")

// UploadFailedMessage is shown when the server gives no reason.
const UploadFailedMessage = "Upload failed"

type UploadState int

const (
	UploadIdle UploadState = iota
	UploadValidating
	UploadUploading
	UploadSucceeded
	UploadFailed
)

func (s UploadState) String() string {
	switch s {
	case UploadValidating:
		return "validating"
	case UploadUploading:
		return "uploading"
	case UploadSucceeded:
		return "succeeded"
	case UploadFailed:
		return "failed"
	default:
		return "idle"
	}
}

// UploadRules are the local checks applied before any request.
type UploadRules struct {
	// AllowedTypes are lower-case extensions with the dot; "*" allows any.
	AllowedTypes []string
	MaxSizeMB    int
}

// Validate checks a candidate by name and size.
func (r UploadRules) Validate(name string, size int64) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !r.allows(ext) {
		return common.NewValidationError("file",
			fmt.Sprintf("Invalid file type. Allowed types: %s", strings.Join(r.AllowedTypes, ", ")))
	}
	if r.MaxSizeMB > 0 && size > int64(r.MaxSizeMB)*1024*1024 {
		return common.NewValidationError("file",
			fmt.Sprintf("File too large. Maximum size: %dMB", r.MaxSizeMB))
	}
	return nil
}

func (r UploadRules) allows(ext string) bool {
	for _, t := range r.AllowedTypes {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "*" {
			return true
		}
		if !strings.HasPrefix(t, ".") {
			t = "." + t
		}
		if ext != "" && t == ext {
			return true
		}
	}
	return false
}

// UploadStatus is a snapshot of the flow.
type UploadStatus struct {
	State    UploadState
	FileName string
	Error    error
	Document models.Document
}

// UploadFlow drives one upload at a time: validate locally, send, then
// insert the created document at the front of the cache.
type UploadFlow struct {
	api    client.Client
	cache  *collection.Cache
	rules  UploadRules
	logger logging.Logger

	mu     sync.Mutex
	status UploadStatus
}

func NewUploadFlow(api client.Client, cache *collection.Cache, rules UploadRules, logger logging.Logger) *UploadFlow {
	if logger == nil {
		logger = logging.Discard()
	}
	return &UploadFlow{api: api, cache: cache, rules: rules, logger: logger}
}

func (f *UploadFlow) Rules() UploadRules {
	return f.rules
}

func (f *UploadFlow) Status() UploadStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Reset returns to idle from any state but uploading.
func (f *UploadFlow) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status.State == UploadUploading {
		return ErrUploadInProgress
	}
	f.status = UploadStatus{}
	return nil
}

// Upload validates name/size and, if they pass, sends r. A validation
// failure returns the flow to idle and never reaches the network.
func (f *UploadFlow) Upload(ctx context.Context, name string, size int64, r io.Reader) (models.Document, error) {
	f.mu.Lock()
	if f.status.State == UploadUploading || f.status.State == UploadValidating {
		f.mu.Unlock()
		return models.Document{}, ErrUploadInProgress
	}
	f.status = UploadStatus{State: UploadValidating, FileName: name}
	f.mu.Unlock()

	if err := f.rules.Validate(name, size); err != nil {
		f.set(UploadStatus{State: UploadIdle, FileName: name, Error: err})
		return models.Document{}, err
	}

	f.set(UploadStatus{State: UploadUploading, FileName: name})
	f.logger.Info(ctx, "uploading document", "file", name, "size", size)

	doc, err := f.api.UploadDocument(ctx, filepath.Base(name), r)
	if err != nil {
		err = uploadError(err)
		f.set(UploadStatus{State: UploadFailed, FileName: name, Error: err})
		return models.Document{}, err
	}

	f.cache.InsertFront(doc)
	f.set(UploadStatus{State: UploadSucceeded, FileName: name, Document: doc})
	return doc, nil
}

func (f *UploadFlow) set(s UploadStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = s
}

// uploadError keeps the server's message verbatim and falls back to
// UploadFailedMessage when there is none.
func uploadError(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Kind == client.KindRequest && apiErr.Detail == "" {
		return &client.APIError{Kind: apiErr.Kind, Status: apiErr.Status, Message: UploadFailedMessage, Err: apiErr}
	}
	return err
}
