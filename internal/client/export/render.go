// Package export turns a document into a Markdown report and stores it
// on the local filesystem or in an S3-compatible bucket.
package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/whatthenote/internal/client/models"
	"github.com/dmitrijs2005/whatthenote/internal/filex"
)

// Exporter stores the report of doc and returns where it went.
type Exporter interface {
	Export(ctx context.Context, doc models.Document) (string, error)
}

const dateLayout = "January 2, 2006 15:04 MST"

// Render produces the Markdown report of doc.
func Render(doc models.Document) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	fmt.Fprintf(&b, "- Subject: %s\n", doc.SubjectOrDefault())
	if !doc.UploadedDate.IsZero() {
		fmt.Fprintf(&b, "- Uploaded: %s\n", doc.UploadedDate.UTC().Format(dateLayout))
	}
	if lv, ok := doc.LastViewedAt(); ok {
		fmt.Fprintf(&b, "- Last viewed: %s\n", lv.UTC().Format(dateLayout))
	}

	b.WriteString("\n## Summary\n\n")
	if doc.Processed() {
		b.WriteString(strings.TrimSpace(doc.Summary))
	} else {
		b.WriteString("_No summary available._")
	}
	b.WriteString("\n")

	if content := strings.TrimSpace(doc.Content); content != "" {
		b.WriteString("\n## Content\n\n")
		b.WriteString(content)
		b.WriteString("\n")
	}

	if len(doc.Queries) > 0 {
		b.WriteString("\n## Questions\n")
		for _, q := range doc.Queries {
			fmt.Fprintf(&b, "\n### %s\n\n", strings.TrimSpace(q.Question))
			if !q.Timestamp.IsZero() {
				fmt.Fprintf(&b, "_%s_\n\n", q.Timestamp.UTC().Format(dateLayout))
			}
			b.WriteString(strings.TrimSpace(q.Answer))
			b.WriteString("\n")
		}
	}
	return []byte(b.String())
}

// FileName is "<id>-<slug>.md".
func FileName(doc models.Document) string {
	return fmt.Sprintf("%s-%s.md", filex.Slug(doc.ID.String()), filex.Slug(doc.Title))
}

// ObjectKey is the bucket key of the report, partitioned by export date.
func ObjectKey(doc models.Document, at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("exports/%04d/%02d/%02d/%s", at.Year(), int(at.Month()), at.Day(), FileName(doc))
}
