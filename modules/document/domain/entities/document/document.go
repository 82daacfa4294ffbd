package document

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrMemberNotFound    = errors.New("sender member not found")
	ErrRecipientNotFound = errors.New("recipient account not found")
	ErrFileType          = errors.New("file type not allowed")
)

// MaxSize is the default upload limit for a single document.
const MaxSize int64 = 10 << 20

// Document is a file an administrator sent to member accounts. FilePath is
// the stored name, FileName the name it was uploaded with.
type Document struct {
	ID          int64
	Title       string
	FilePath    string
	FileName    string
	MemberID    string
	SenderName  string
	Description string
	UploadedAt  time.Time
	// Recipients is a display list of recipient names, "-" when there are none.
	Recipients string
}

// DownloadName is the file name offered to the browser.
func (d Document) DownloadName() string {
	if d.FileName != "" {
		return d.FileName
	}
	return filepath.Base(d.FilePath)
}

var allowedTypes = map[string][]string{
	".pdf":  {"application/pdf"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
	".xlsx": {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "application/zip"},
	".png":  {"image/png"},
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
}

// AllowedExtension reports whether filename carries one of the accepted
// document extensions.
func AllowedExtension(filename string) bool {
	_, ok := allowedTypes[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// AcceptsContent reports whether the sniffed content type matches the
// extension. OOXML files may sniff as plain zip archives.
func AcceptsContent(filename, mime string) bool {
	for _, m := range allowedTypes[strings.ToLower(filepath.Ext(filename))] {
		if m == mime {
			return true
		}
	}
	return false
}

type Repository interface {
	List(ctx context.Context) ([]Document, error)
	GetByID(ctx context.Context, id int64) (Document, error)
	Create(ctx context.Context, d Document) (Document, error)
	Delete(ctx context.Context, id int64) error

	// AddRecipients links the document to the given accounts and returns the
	// number of new links. Accounts already linked are skipped.
	AddRecipients(ctx context.Context, documentID int64, userIDs []int64) (int64, error)
	UserAccountIDs(ctx context.Context) ([]int64, error)

	ListForUser(ctx context.Context, userID int64) ([]Document, error)
	GetForUser(ctx context.Context, documentID, userID int64) (Document, error)
}

// Storage keeps the uploaded bytes. Names are opaque to callers.
type Storage interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Open(name string) (File, error)
	Remove(name string) error
}

type File interface {
	io.ReadSeekCloser
	ModTime() time.Time
}
