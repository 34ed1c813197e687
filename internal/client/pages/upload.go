package pages

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/dmitrijs2005/whatthenote/internal/client/models"
	"github.com/dmitrijs2005/whatthenote/internal/client/services"
	"github.com/dmitrijs2005/whatthenote/internal/common"
)

// UploadPage selects a local file and hands it to the upload flow.
type UploadPage struct {
	flow *services.UploadFlow

	mu   sync.Mutex
	path string
	size int64
}

func NewUploadPage(flow *services.UploadFlow) *UploadPage {
	return &UploadPage{flow: flow}
}

// Select remembers path as the file to upload and clears the previous
// outcome.
func (p *UploadPage) Select(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return common.NewValidationError("file", fmt.Sprintf("Cannot read %s", path))
	}
	if fi.IsDir() {
		return common.NewValidationError("file", fmt.Sprintf("%s is a directory", path))
	}
	if err := p.flow.Reset(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.path, p.size = path, fi.Size()
	return nil
}

// Submit uploads the selected file.
func (p *UploadPage) Submit(ctx context.Context) (models.Document, error) {
	p.mu.Lock()
	path, size := p.path, p.size
	p.mu.Unlock()
	if path == "" {
		return models.Document{}, common.NewValidationError("file", "Please select a file")
	}

	// Local validation needs no open file.
	if err := p.flow.Rules().Validate(path, size); err != nil {
		return p.flow.Upload(ctx, path, size, nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return models.Document{}, common.NewValidationError("file", fmt.Sprintf("Cannot read %s", path))
	}
	defer f.Close()

	doc, err := p.flow.Upload(ctx, path, size, f)
	if err == nil {
		p.mu.Lock()
		p.path, p.size = "", 0
		p.mu.Unlock()
	}
	return doc, err
}

// Reset clears the selection and the flow.
func (p *UploadPage) Reset() error {
	if err := p.flow.Reset(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.path, p.size = "", 0
	return nil
}

// Selected returns the chosen path and its size.
func (p *UploadPage) Selected() (string, int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.path, p.size
}

func (p *UploadPage) Status() services.UploadStatus {
	return p.flow.Status()
}
