package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"math"

	"github.com/alitto/pond/v2"
	"github.com/chai2010/webp"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"

	"vippyadmin/pkg/b2"
	"vippyadmin/pkg/models"
)

const (
	fullSizeQuality  = 95
	thumbnailWidth   = 600
	thumbnailQuality = 85
)

/*
UploadedImage is one file received from a multipart request, held in
memory for the duration of the request.
*/
type UploadedImage struct {
	Name        string
	ContentType string
	Data        []byte
}

/*
ImageServicer ingests image batches for an album: probe dimensions,
normalize to JPEG, generate a WebP preview, upload both variants and
return manifest entries in the order the files were received.
*/
type ImageServicer interface {
	IngestBatch(ctx context.Context, slug string, startSeq int, uploads []UploadedImage) ([]models.ImageEntry, error)
}

type ImageServiceConfig struct {
	MaxUploadWorkers int
	Storage          b2.Storage
}

type ImageService struct {
	maxUploadWorkers int
	storage          b2.Storage
}

func NewImageService(config ImageServiceConfig) ImageService {
	workers := config.MaxUploadWorkers

	if workers < 1 {
		workers = 1
	}

	return ImageService{
		maxUploadWorkers: workers,
		storage:          config.Storage,
	}
}

/*
IngestBatch assigns each upload a sequence number up front
(startSeq, startSeq+1, ...) so remote key numbering is independent of
what runs first, then processes the batch on a bounded worker pool.
The first failure aborts the batch; objects already uploaded at that
point stay in the bucket with no manifest entry.
*/
func (s ImageService) IngestBatch(ctx context.Context, slug string, startSeq int, uploads []UploadedImage) ([]models.ImageEntry, error) {
	results := make([]models.ImageEntry, len(uploads))
	errs := make([]error, len(uploads))

	pool := pond.NewPool(s.maxUploadWorkers, pond.WithContext(ctx))

	for i, upload := range uploads {
		seq := startSeq + i

		pool.Submit(func() {
			results[i], errs[i] = s.ingestOne(ctx, slug, seq, upload)
		})
	}

	/*
	 * A canceled context makes the pool discard submitted tasks, leaving
	 * their slots zero-valued with a nil error. Wait surfaces that as
	 * the context error, which must abort the batch before the empty
	 * entries can reach a manifest.
	 */
	if err := pool.Stop().Wait(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

func (s ImageService) ingestOne(ctx context.Context, slug string, seq int, upload UploadedImage) (models.ImageEntry, error) {
	var (
		err    error
		entry  models.ImageEntry
		img    image.Image
		format string
	)

	if img, format, err = image.Decode(bytes.NewReader(upload.Data)); err != nil {
		return entry, fmt.Errorf("error decoding image '%s': %w", upload.Name, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	aspectRatio := math.Round(float64(width)/float64(height)*10000) / 10000

	/*
	 * Full-size variant: JPEG is the canonical encoding. Anything else
	 * gets transcoded, JPEG sources pass through untouched.
	 */
	fullKey := imageKey(slug, seq)
	fullBytes := upload.Data

	if format != "jpeg" {
		buf := bytes.Buffer{}

		if err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: fullSizeQuality}); err != nil {
			return entry, fmt.Errorf("error transcoding image '%s': %w", upload.Name, err)
		}

		fullBytes = buf.Bytes()
	}

	if err = s.storage.Upload(ctx, fullKey, fullBytes, "image/jpeg"); err != nil {
		return entry, err
	}

	/*
	 * Preview variant: 600px wide WebP, never upscaled.
	 */
	thumbImage := img

	if width > thumbnailWidth {
		thumbImage = resize.Resize(thumbnailWidth, 0, img, resize.Lanczos3)
	}

	thumbBuf := bytes.Buffer{}

	if err = webp.Encode(&thumbBuf, thumbImage, &webp.Options{Quality: thumbnailQuality}); err != nil {
		return entry, fmt.Errorf("error encoding thumbnail for '%s': %w", upload.Name, err)
	}

	thumbKey := thumbnailKey(slug, seq)

	if err = s.storage.Upload(ctx, thumbKey, thumbBuf.Bytes(), "image/webp"); err != nil {
		return entry, err
	}

	entry = models.ImageEntry{
		URL:         s.storage.FileURL(fullKey),
		Thumb:       s.storage.FileURL(thumbKey),
		AspectRatio: aspectRatio,
		Width:       width,
		Height:      height,
	}

	return entry, nil
}

func imageKey(slug string, seq int) string {
	return fmt.Sprintf("%s/img%03d.jpg", slug, seq)
}

func thumbnailKey(slug string, seq int) string {
	return fmt.Sprintf("%s/thumb/img%03d.webp", slug, seq)
}
