package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"anoa.com/campusrecruit/pkg/apperror"
	commonDto "anoa.com/campusrecruit/pkg/dto"
	"anoa.com/campusrecruit/pkg/storage"
	"github.com/gabriel-vasile/mimetype"
)

const MaxFileSize = 10 << 20

// sniffLen covers the zip directory mimetype reads to detect office files.
const sniffLen = 3072

type Kind string

const (
	KindResume       Kind = "resume"
	KindProfileImage Kind = "profile_image"
	KindFile         Kind = "file"
)

const (
	mimePDF  = "application/pdf"
	mimeDOC  = "application/msword"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeJPEG = "image/jpeg"
	mimePNG  = "image/png"
)

var (
	documentTypes = map[string]bool{mimePDF: true, mimeDOC: true, mimeDOCX: true}
	imageTypes    = map[string]bool{mimeJPEG: true, mimePNG: true}
)

type UploadService interface {
	Upload(ctx context.Context, kind Kind, file *commonDto.FileUpload) (*storage.UploadResult, error)
}

type uploadService struct {
	storage storage.FileStorage
}

func NewUploadService(storage storage.FileStorage) UploadService {
	return &uploadService{storage: storage}
}

func allowedFor(kind Kind, mime string) bool {
	switch kind {
	case KindProfileImage:
		return imageTypes[mime]
	default:
		return documentTypes[mime] || imageTypes[mime]
	}
}

// folderFor mirrors the bucket layout already used by stored URLs.
func folderFor(kind Kind, mime string) string {
	switch kind {
	case KindResume:
		return "campus_resumes"
	case KindProfileImage:
		return "campus_profile_images"
	}
	switch {
	case strings.HasPrefix(mime, "image/"):
		return "campus_images"
	case documentTypes[mime]:
		return "campus_documents"
	}
	return "campus_uploads"
}

// resolveMIME walks the sniffed type's parents so a docx reported as zip
// still matches. Legacy .doc files only sniff as OLE containers, so the
// declared type is trusted for that one case.
func resolveMIME(sniffed *mimetype.MIME, declared string) string {
	for m := sniffed; m != nil; m = m.Parent() {
		if documentTypes[m.String()] || imageTypes[m.String()] {
			return m.String()
		}
	}
	if sniffed.Is("application/x-ole-storage") && declared == mimeDOC {
		return mimeDOC
	}
	return sniffed.String()
}

// sniff detects the content type from the first bytes and returns a reader
// that still yields the whole stream.
func sniff(r io.Reader) (io.Reader, *mimetype.MIME, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head := buf[:n]
	return io.MultiReader(bytes.NewReader(head), r), mimetype.Detect(head), nil
}

func (s *uploadService) Upload(ctx context.Context, kind Kind, file *commonDto.FileUpload) (*storage.UploadResult, error) {
	if file == nil || file.Reader == nil {
		return nil, newBadRequest("no file uploaded")
	}
	if file.Size > MaxFileSize {
		return nil, newBadRequest("file exceeds the 10MB limit")
	}

	body, sniffed, err := sniff(file.Reader)
	if err != nil {
		return nil, err
	}
	mime := resolveMIME(sniffed, file.ContentType)
	if !allowedFor(kind, mime) {
		if kind == KindProfileImage {
			return nil, newBadRequest("only JPEG and PNG images are allowed")
		}
		return nil, newBadRequest("only PDF, Word documents, and images are allowed")
	}

	if s.storage == nil {
		return nil, storage.ErrNotConfigured
	}

	// the size header can lie; cap the stream as well
	limited := io.LimitReader(body, MaxFileSize+1)
	counted := &countingReader{r: limited}
	res, err := s.storage.Upload(ctx, counted, folderFor(kind, mime), file.FileName)
	if err != nil {
		return nil, err
	}
	if counted.n > MaxFileSize {
		_ = s.storage.Delete(ctx, res.URL)
		return nil, newBadRequest("file exceeds the 10MB limit")
	}
	return res, nil
}

func newBadRequest(msg string) error {
	return apperror.New(http.StatusBadRequest, msg, apperror.ErrBadRequest)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
