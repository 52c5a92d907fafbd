package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/adampresley/adamgokit/slices"

	"vippyadmin/pkg/services"
)

const (
	MaxFiles      = 100
	MaxFileSize   = 50 * 1024 * 1024
	parsingMemory = 32 * 1024 * 1024
)

var (
	ErrTooManyFiles    = fmt.Errorf("too many files. A maximum of %d images is allowed", MaxFiles)
	ErrFileTooLarge    = fmt.Errorf("file too large. The maximum size is 50MB")
	ErrInvalidFileType = fmt.Errorf("invalid file type. Only JPEG, PNG, and WebP are allowed")

	allowedTypes = []string{"image/jpeg", "image/png", "image/webp"}
)

/*
FromRequest reads every uploaded file under the named multipart field
into memory, enforcing the count, size and content type limits.
*/
func FromRequest(r *http.Request, field string) ([]services.UploadedImage, error) {
	if err := parseMultipart(r); err != nil {
		return nil, err
	}

	if r.MultipartForm == nil {
		return []services.UploadedImage{}, nil
	}

	headers := r.MultipartForm.File[field]

	if len(headers) > MaxFiles {
		return nil, ErrTooManyFiles
	}

	result := []services.UploadedImage{}

	for _, header := range headers {
		upload, err := readUpload(header, allowedTypes)

		if err != nil {
			return nil, err
		}

		result = append(result, upload)
	}

	return result, nil
}

/*
SingleFromRequest returns the first file under the field, or nil when
the form carries none.
*/
func SingleFromRequest(r *http.Request, field string) (*services.UploadedImage, error) {
	return single(r, field, allowedTypes)
}

/*
SingleRawFromRequest is SingleFromRequest without the image content
type restriction, for uploads like favicons. Size limits still apply.
*/
func SingleRawFromRequest(r *http.Request, field string) (*services.UploadedImage, error) {
	return single(r, field, nil)
}

func single(r *http.Request, field string, allowed []string) (*services.UploadedImage, error) {
	if err := parseMultipart(r); err != nil {
		return nil, err
	}

	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, nil
	}

	upload, err := readUpload(r.MultipartForm.File[field][0], allowed)

	if err != nil {
		return nil, err
	}

	return &upload, nil
}

func parseMultipart(r *http.Request) error {
	err := r.ParseMultipartForm(parsingMemory)

	if err != nil && err != http.ErrNotMultipart {
		return fmt.Errorf("error parsing multipart form: %w", err)
	}

	return nil
}

func readUpload(header *multipart.FileHeader, allowed []string) (services.UploadedImage, error) {
	var (
		err    error
		result services.UploadedImage
	)

	if header.Size > MaxFileSize {
		return result, ErrFileTooLarge
	}

	contentType := header.Header.Get("Content-Type")

	if allowed != nil && !slices.IsInSlice(contentType, allowed) {
		return result, ErrInvalidFileType
	}

	f, err := header.Open()

	if err != nil {
		return result, fmt.Errorf("error opening uploaded file '%s': %w", header.Filename, err)
	}

	defer f.Close()

	data, err := io.ReadAll(f)

	if err != nil {
		return result, fmt.Errorf("error reading uploaded file '%s': %w", header.Filename, err)
	}

	result = services.UploadedImage{
		Name:        header.Filename,
		ContentType: contentType,
		Data:        data,
	}

	return result, nil
}
