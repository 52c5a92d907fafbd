package services_test

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"sync"
	"testing"

	"vippyadmin/pkg/b2"
	"vippyadmin/pkg/models"
	"vippyadmin/pkg/services"
)

/*
fakeStorage records uploads and deletes in memory. FileURL mimics the
CDN form so key reconstruction from URLs can be exercised.
*/
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	creds   b2.Credentials
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		objects: map[string][]byte{},
	}
}

func (f *fakeStorage) Authorize(ctx context.Context, forceRefresh bool) error {
	return nil
}

func (f *fakeStorage) Configured() bool {
	return true
}

func (f *fakeStorage) Delete(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleted = append(f.deleted, key)

	if _, ok := f.objects[key]; !ok {
		return false, nil
	}

	delete(f.objects, key)
	return true, nil
}

func (f *fakeStorage) FileURL(key string) string {
	return "https://cdn.example.com/" + key
}

func (f *fakeStorage) SetCredentials(creds b2.Credentials) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.creds = creds
}

func (f *fakeStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.objects[key] = append([]byte{}, data...)
	return nil
}

func (f *fakeStorage) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := []string{}

	for key := range f.objects {
		result = append(result, key)
	}

	return result
}

/*
fakeIngester produces manifest entries without touching image data, so
album tests stay focused on manifest bookkeeping.
*/
type fakeIngester struct {
	storage b2.Storage
}

func (f fakeIngester) IngestBatch(ctx context.Context, slug string, startSeq int, uploads []services.UploadedImage) ([]models.ImageEntry, error) {
	entries := []models.ImageEntry{}

	for i := range uploads {
		seq := startSeq + i
		fullKey := fmt.Sprintf("%s/img%03d.jpg", slug, seq)
		thumbKey := fmt.Sprintf("%s/thumb/img%03d.webp", slug, seq)

		if f.storage != nil {
			if err := f.storage.Upload(ctx, fullKey, uploads[i].Data, "image/jpeg"); err != nil {
				return nil, err
			}

			if err := f.storage.Upload(ctx, thumbKey, uploads[i].Data, "image/webp"); err != nil {
				return nil, err
			}
		}

		entries = append(entries, models.ImageEntry{
			URL:         "https://cdn.example.com/" + fullKey,
			Thumb:       "https://cdn.example.com/" + thumbKey,
			AspectRatio: 1.5,
			Width:       3000,
			Height:      2000,
		})
	}

	return entries, nil
}

func pngUpload(t *testing.T, name string, width, height int) services.UploadedImage {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	buf := bytes.Buffer{}

	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("unexpected error encoding test image: %v", err)
	}

	return services.UploadedImage{
		Name:        name,
		ContentType: "image/png",
		Data:        buf.Bytes(),
	}
}

/*
newAlbumFixture wires an album service against real content and order
services in a temp directory, with fake storage and ingest.
*/
func newAlbumFixture(t *testing.T) (services.AlbumServicer, services.ContentServicer, services.OrderServicer, *fakeStorage) {
	t.Helper()

	dataDir := t.TempDir()
	postsDir := t.TempDir()

	storage := newFakeStorage()

	contentService := services.NewContentService(services.ContentServiceConfig{
		DataDir:  dataDir,
		PostsDir: postsDir,
	})

	orderService := services.NewOrderService(services.OrderServiceConfig{
		LedgerPath: filepath.Join(dataDir, "_album-order.json"),
	})

	albumService := services.NewAlbumService(services.AlbumServiceConfig{
		ContentService:   contentService,
		ImageService:     fakeIngester{storage: storage},
		MaxDeleteWorkers: 2,
		OrderService:     orderService,
		Storage:          storage,
	})

	return albumService, contentService, orderService, storage
}
