package merge

import (
	"time"

	"github.com/justinaw04/box-pdf-merger/pkg/box"
)

// State bag keys shared across workflow nodes.
const (
	KeyFolderID   = "folder_id"
	KeyOutputName = "output_name"
	KeySession    = "session"
	KeyFiles      = "files"
	KeyStaged     = "staged"
	KeyJob        = "job"
	KeyResult     = "result"
	KeyPageCount  = "page_count"
	KeyUpload     = "upload"
	KeyLink       = "link"
	KeyDegraded   = "degraded"
)

// Outcome is the final result of a merge run. It is only constructed after
// the merged artifact has been stored; a run that fails earlier returns an
// error instead.
type Outcome struct {
	File        *box.File `json:"file"`
	SharedLink  string    `json:"shared_link,omitempty"`
	Degraded    bool      `json:"degraded"`
	SourceCount int       `json:"source_count"`
	PageCount   int       `json:"page_count,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}
