package attrib

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/mlanser/f451-comms/pkg/errors"
	"github.com/mlanser/f451-comms/pkg/utils/text"
)

// Attachment dispositions, used as multipart field names by email senders.
const (
	DispositionAttachment = "attachment"
	DispositionInline     = "inline"
)

// defaultMaxMedia caps media lists when no explicit bound is given.
const defaultMaxMedia = 10

// imageFormats accepted by media lists, keyed by sniffed content type.
var imageFormats = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// FileConfig bounds a file-backed list.
type FileConfig struct {
	Strict bool
	MaxNum int
}

// AttachmentList is a list of verified attachment file paths.
type AttachmentList struct {
	base
	disposition string
	paths       []string
}

// NewAttachmentList verifies a file list (a single path, a "|"-delimited
// string, or a []string). Blank entries are always dropped. A path that
// does not exist is skipped silently in non-strict mode; in strict mode it
// fails construction with an invalid-attribute error naming the file.
func NewAttachmentList(keyword, disposition string, input interface{}, cfg FileConfig) (*AttachmentList, error) {
	al := &AttachmentList{
		base: base{
			keyword: keyword,
			valid:   true,
			maxNum:  cfg.MaxNum,
		},
		disposition: disposition,
	}

	paths, err := verifyFileList(input, cfg.Strict, nil)
	if err != nil {
		return nil, err
	}
	al.paths = capItems(paths, al.maxNum)

	return al, nil
}

// Len returns the number of attachments.
func (al *AttachmentList) Len() int { return len(al.paths) }

// Disposition returns the multipart disposition for these files.
func (al *AttachmentList) Disposition() string { return al.disposition }

// Raw returns the verified file paths.
func (al *AttachmentList) Raw() []string { return al.paths }

// Clean returns the verified file paths; transport reads file content at
// send time.
func (al *AttachmentList) Clean() []string { return al.paths }

// Basenames returns the base filename of each attachment.
func (al *AttachmentList) Basenames() []string {
	out := make([]string, 0, len(al.paths))
	for _, p := range al.paths {
		out = append(out, filepath.Base(p))
	}
	return out
}

// MediaList is a list of verified image file paths.
type MediaList struct {
	base
	paths []string
}

// NewMediaList verifies a media file list the way NewAttachmentList does,
// and additionally checks that each file is a supported image format
// (jpeg, png, gif, webp). Invalid formats are skipped in non-strict mode
// and fail construction in strict mode. The list is capped at MaxNum
// (default 10).
func NewMediaList(keyword string, input interface{}, cfg FileConfig) (*MediaList, error) {
	maxNum := cfg.MaxNum
	if maxNum <= 0 {
		maxNum = defaultMaxMedia
	}

	ml := &MediaList{
		base: base{
			keyword: keyword,
			valid:   true,
			maxNum:  maxNum,
		},
	}

	paths, err := verifyFileList(input, cfg.Strict, isValidImage)
	if err != nil {
		return nil, err
	}
	ml.paths = capItems(paths, ml.maxNum)

	return ml, nil
}

// Len returns the number of media files.
func (ml *MediaList) Len() int { return len(ml.paths) }

// Raw returns the verified file paths.
func (ml *MediaList) Raw() []string { return ml.paths }

// Clean returns the verified file paths.
func (ml *MediaList) Clean() []string { return ml.paths }

// verifyFileList normalizes the input forms and verifies each path,
// applying an optional content check.
func verifyFileList(input interface{}, strict bool, check func(string) bool) ([]string, error) {
	var raw []string
	switch v := input.(type) {
	case string:
		raw = text.SplitList(v)
	case []string:
		raw = v
	}

	out := make([]string, 0, len(raw))
	for _, path := range raw {
		if path = strings.TrimSpace(path); path == "" {
			continue
		}
		if err := verifyFile(path, strict, check); err != nil {
			return nil, err
		}
		if fileOK(path, check) {
			out = append(out, path)
		}
	}
	return out, nil
}

func verifyFile(path string, strict bool, check func(string) bool) error {
	if !strict {
		return nil
	}
	if !fileOK(path, nil) {
		return errors.NewInvalidAttribute("File '" + path + "' does not exist.").WithAttribute(path)
	}
	if check != nil && !check(path) {
		return errors.NewInvalidAttribute("File '" + path + "' is not a supported media format.").WithAttribute(path)
	}
	return nil
}

func fileOK(path string, check func(string) bool) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if check != nil {
		return check(path)
	}
	return true
}

// isValidImage sniffs the file content and reports whether it is one of
// the supported image formats.
func isValidImage(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if n == 0 && err != nil {
		return false
	}
	_, ok := imageFormats[http.DetectContentType(buf[:n])]
	return ok
}
