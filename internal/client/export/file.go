package export

import (
	"context"

	"github.com/dmitrijs2005/whatthenote/internal/client/models"
	"github.com/dmitrijs2005/whatthenote/internal/filex"
)

// FileExporter writes reports into Dir, creating it on first use.
type FileExporter struct {
	Dir string
}

func NewFileExporter(dir string) *FileExporter {
	return &FileExporter{Dir: dir}
}

func (e *FileExporter) Export(ctx context.Context, doc models.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir, err := filex.EnsureDir(e.Dir)
	if err != nil {
		return "", err
	}
	return filex.WriteFileAtomic(dir, FileName(doc), Render(doc))
}
