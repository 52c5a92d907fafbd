package services_test

import (
	"bytes"
	"context"
	"image/jpeg"
	"testing"

	"golang.org/x/image/webp"

	"vippyadmin/pkg/services"
)

func newImageService(storage *fakeStorage) services.ImageServicer {
	return services.NewImageService(services.ImageServiceConfig{
		MaxUploadWorkers: 2,
		Storage:          storage,
	})
}

func TestIngestBatchUploadsBothVariants(t *testing.T) {
	storage := newFakeStorage()
	imageService := newImageService(storage)

	entries, err := imageService.IngestBatch(context.Background(), "night-city", 0, []services.UploadedImage{
		pngUpload(t, "one.png", 800, 600),
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("unexpected entry count: got %d want 1", len(entries))
	}

	entry := entries[0]

	if entry.URL != "https://cdn.example.com/night-city/img000.jpg" {
		t.Fatalf("unexpected url: got %q", entry.URL)
	}

	if entry.Thumb != "https://cdn.example.com/night-city/thumb/img000.webp" {
		t.Fatalf("unexpected thumb url: got %q", entry.Thumb)
	}

	if entry.Width != 800 || entry.Height != 600 {
		t.Fatalf("unexpected dimensions: got %dx%d", entry.Width, entry.Height)
	}

	if entry.AspectRatio != 1.3333 {
		t.Fatalf("unexpected aspect ratio: got %v", entry.AspectRatio)
	}

	fullData, ok := storage.objects["night-city/img000.jpg"]

	if !ok {
		t.Fatalf("full-size object not uploaded. have %v", storage.keys())
	}

	/* PNG input must come out as JPEG. */
	if _, err = jpeg.Decode(bytes.NewReader(fullData)); err != nil {
		t.Fatalf("full-size object is not a jpeg: %v", err)
	}

	if _, ok = storage.objects["night-city/thumb/img000.webp"]; !ok {
		t.Fatalf("thumbnail object not uploaded. have %v", storage.keys())
	}
}

func TestIngestBatchResizesThumbnails(t *testing.T) {
	storage := newFakeStorage()
	imageService := newImageService(storage)

	_, err := imageService.IngestBatch(context.Background(), "wide", 0, []services.UploadedImage{
		pngUpload(t, "wide.png", 1200, 800),
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	thumb, err := webp.Decode(bytes.NewReader(storage.objects["wide/thumb/img000.webp"]))

	if err != nil {
		t.Fatalf("unexpected error decoding thumbnail: %v", err)
	}

	if got := thumb.Bounds().Dx(); got != 600 {
		t.Fatalf("unexpected thumbnail width: got %d want 600", got)
	}
}

func TestIngestBatchNeverUpscalesThumbnails(t *testing.T) {
	storage := newFakeStorage()
	imageService := newImageService(storage)

	_, err := imageService.IngestBatch(context.Background(), "small", 0, []services.UploadedImage{
		pngUpload(t, "small.png", 400, 300),
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	thumb, err := webp.Decode(bytes.NewReader(storage.objects["small/thumb/img000.webp"]))

	if err != nil {
		t.Fatalf("unexpected error decoding thumbnail: %v", err)
	}

	if got := thumb.Bounds().Dx(); got != 400 {
		t.Fatalf("thumbnail was upscaled: got width %d want 400", got)
	}
}

func TestIngestBatchSequenceAndOrder(t *testing.T) {
	storage := newFakeStorage()
	imageService := newImageService(storage)

	entries, err := imageService.IngestBatch(context.Background(), "batch", 5, []services.UploadedImage{
		pngUpload(t, "first.png", 640, 480),
		pngUpload(t, "second.png", 480, 640),
		pngUpload(t, "third.png", 320, 320),
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantURLs := []string{
		"https://cdn.example.com/batch/img005.jpg",
		"https://cdn.example.com/batch/img006.jpg",
		"https://cdn.example.com/batch/img007.jpg",
	}

	for i, want := range wantURLs {
		if entries[i].URL != want {
			t.Fatalf("entry %d out of order: got %q want %q", i, entries[i].URL, want)
		}
	}

	if entries[1].AspectRatio != 0.75 {
		t.Fatalf("unexpected portrait aspect ratio: got %v", entries[1].AspectRatio)
	}

	if entries[2].AspectRatio != 1 {
		t.Fatalf("unexpected square aspect ratio: got %v", entries[2].AspectRatio)
	}
}

func TestIngestBatchFailsOnCanceledContext(t *testing.T) {
	storage := newFakeStorage()
	imageService := newImageService(storage)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	entries, err := imageService.IngestBatch(ctx, "canceled", 0, []services.UploadedImage{
		pngUpload(t, "one.png", 800, 600),
		pngUpload(t, "two.png", 800, 600),
	})

	if err == nil {
		t.Fatalf("expected error for canceled context, got entries %+v", entries)
	}

	if entries != nil {
		t.Fatalf("expected no entries for canceled context: got %+v", entries)
	}
}

func TestIngestBatchRejectsUndecodableData(t *testing.T) {
	storage := newFakeStorage()
	imageService := newImageService(storage)

	_, err := imageService.IngestBatch(context.Background(), "bad", 0, []services.UploadedImage{
		{Name: "bad.jpg", ContentType: "image/jpeg", Data: []byte("not an image")},
	})

	if err == nil {
		t.Fatalf("expected error for undecodable image data")
	}
}
