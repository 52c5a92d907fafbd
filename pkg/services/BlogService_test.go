package services_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"vippyadmin/pkg/models"
	"vippyadmin/pkg/services"
)

func newBlogService(t *testing.T) (services.BlogServicer, string, *fakeStorage) {
	t.Helper()

	postsDir := t.TempDir()
	storage := newFakeStorage()

	return services.NewBlogService(services.BlogServiceConfig{
		PostsDir: postsDir,
		Storage:  storage,
	}), postsDir, storage
}

func TestSavePostAndGetPosts(t *testing.T) {
	blogService, _, _ := newBlogService(t)

	fileSlug, err := blogService.SavePost(context.Background(), services.SavePostParams{
		Title:      "Hello World",
		Date:       "2025-03-01",
		Author:     "Vip",
		Categories: "blog, updates",
		Tags:       "first",
		Excerpt:    "An excerpt",
		Content:    "Body text here.",
	}, nil)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fileSlug != "2025-03-01-hello-world" {
		t.Fatalf("unexpected file slug: got %q", fileSlug)
	}

	posts, err := blogService.GetPosts()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(posts) != 1 {
		t.Fatalf("unexpected post count: got %d want 1", len(posts))
	}

	post := posts[0]

	if post.Title != "Hello World" || post.Author != "Vip" {
		t.Fatalf("unexpected post: %+v", post)
	}

	if !reflect.DeepEqual(post.Categories, []string{"blog", "updates"}) {
		t.Fatalf("unexpected categories: got %v", post.Categories)
	}

	if strings.TrimSpace(post.Content) != "Body text here." {
		t.Fatalf("unexpected content: got %q", post.Content)
	}
}

func TestGetPostsSkipsAlbumPosts(t *testing.T) {
	blogService, postsDir, _ := newBlogService(t)

	album := `---
layout: post
title: An Album
date: "2025-01-01"
categories:
  - virtual-photography
---
`

	if err := os.WriteFile(filepath.Join(postsDir, "2025-01-01-an-album.md"), []byte(album), 0644); err != nil {
		t.Fatalf("unexpected error seeding album post: %v", err)
	}

	if _, err := blogService.SavePost(context.Background(), services.SavePostParams{
		Title: "Real Post",
		Date:  "2025-02-01",
	}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	posts, err := blogService.GetPosts()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(posts) != 1 || posts[0].Title != "Real Post" {
		t.Fatalf("album post not skipped: %+v", posts)
	}
}

func TestGetPostsNewestFirst(t *testing.T) {
	blogService, _, _ := newBlogService(t)

	for _, post := range []struct{ title, date string }{
		{"Oldest", "2023-01-01"},
		{"Newest", "2025-01-01"},
		{"Middle", "2024-01-01"},
	} {
		if _, err := blogService.SavePost(context.Background(), services.SavePostParams{
			Title: post.title,
			Date:  post.date,
		}, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	posts, err := blogService.GetPosts()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := []string{}

	for _, post := range posts {
		got = append(got, post.Title)
	}

	if !reflect.DeepEqual(got, []string{"Newest", "Middle", "Oldest"}) {
		t.Fatalf("unexpected order: got %v", got)
	}
}

func TestSavePostUploadsHeaderImage(t *testing.T) {
	blogService, _, storage := newBlogService(t)

	_, err := blogService.SavePost(context.Background(), services.SavePostParams{
		Title: "With Image",
		Date:  "2025-03-01",
	}, &services.UploadedImage{
		Name:        "Header.JPG",
		ContentType: "image/jpeg",
		Data:        []byte("jpeg bytes"),
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	keys := storage.keys()

	if len(keys) != 1 {
		t.Fatalf("unexpected upload count: got %d want 1", len(keys))
	}

	if !strings.HasPrefix(keys[0], "blog/") || !strings.HasSuffix(keys[0], ".jpg") {
		t.Fatalf("unexpected key: got %q", keys[0])
	}

	posts, err := blogService.GetPosts()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if posts[0].Image != "https://cdn.example.com/"+keys[0] {
		t.Fatalf("image url not written to front matter: got %q", posts[0].Image)
	}
}

func TestSavePostRemovesRenamedFile(t *testing.T) {
	blogService, postsDir, _ := newBlogService(t)

	fileSlug, err := blogService.SavePost(context.Background(), services.SavePostParams{
		Title: "Original Title",
		Date:  "2025-03-01",
	}, nil)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = blogService.SavePost(context.Background(), services.SavePostParams{
		Title:            "Renamed Title",
		Date:             "2025-03-01",
		OriginalFileSlug: fileSlug,
	}, nil)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err = os.Stat(filepath.Join(postsDir, fileSlug+".md")); !os.IsNotExist(err) {
		t.Fatalf("old post file still exists")
	}

	if _, err = os.Stat(filepath.Join(postsDir, "2025-03-01-renamed-title.md")); err != nil {
		t.Fatalf("new post file missing: %v", err)
	}
}

func TestDeletePost(t *testing.T) {
	blogService, _, _ := newBlogService(t)

	fileSlug, err := blogService.SavePost(context.Background(), services.SavePostParams{
		Title: "Doomed",
		Date:  "2025-03-01",
	}, nil)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err = blogService.DeletePost(fileSlug); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err = blogService.DeletePost(fileSlug); !errors.Is(err, models.ErrPostNotFound) {
		t.Fatalf("unexpected error: got %v want %v", err, models.ErrPostNotFound)
	}
}
