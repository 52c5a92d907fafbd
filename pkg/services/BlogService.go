package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adampresley/adamgokit/slices"

	"vippyadmin/pkg/b2"
	"vippyadmin/pkg/models"
)

const vpCategory = "virtual-photography"

type BlogServicer interface {
	DeletePost(fileSlug string) error
	GetPosts() ([]models.BlogPost, error)
	SavePost(ctx context.Context, params SavePostParams, headerImage *UploadedImage) (string, error)
}

type SavePostParams struct {
	Title            string
	Date             string
	Author           string
	Categories       string
	Tags             string
	Excerpt          string
	Content          string
	ImageURL         string
	OriginalFileSlug string
}

type BlogServiceConfig struct {
	PostsDir string
	Storage  b2.Storage
}

type BlogService struct {
	postsDir string
	storage  b2.Storage
}

func NewBlogService(config BlogServiceConfig) BlogService {
	return BlogService{
		postsDir: config.PostsDir,
		storage:  config.Storage,
	}
}

/*
GetPosts returns regular blog posts, newest first. Posts in the
virtual-photography category belong to albums and are skipped here.
*/
func (s BlogService) GetPosts() ([]models.BlogPost, error) {
	entries, err := os.ReadDir(s.postsDir)

	if err != nil {
		return nil, fmt.Errorf("error reading posts directory: %w", err)
	}

	posts := []models.BlogPost{}

	for _, entry := range entries {
		name := entry.Name()

		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}

		var fm models.PostFrontMatter

		body, err := readFrontMatterFile(filepath.Join(s.postsDir, name), &fm)

		if err != nil {
			return nil, err
		}

		if slices.IsInSlice(vpCategory, []string(fm.Categories)) {
			continue
		}

		posts = append(posts, models.BlogPost{
			Filename:   name,
			FileSlug:   strings.TrimSuffix(name, ".md"),
			Title:      defaultString(fm.Title, "Untitled"),
			Date:       fm.Date,
			Author:     fm.Author,
			Categories: []string(fm.Categories),
			Tags:       []string(fm.Tags),
			Image:      fm.Image,
			Excerpt:    fm.Excerpt,
			Content:    body,
		})
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date > posts[j].Date
	})

	return posts, nil
}

/*
SavePost writes the post under "<date>-<slug>.md". When editing
changed the date or title, the file under the old name is removed. An
uploaded header image goes to storage under a timestamped key and its
public URL replaces the submitted one.
*/
func (s BlogService) SavePost(ctx context.Context, params SavePostParams, headerImage *UploadedImage) (string, error) {
	var (
		err      error
		imageURL = params.ImageURL
	)

	if headerImage != nil {
		key := fmt.Sprintf("blog/%d%s", time.Now().UnixMilli(), strings.ToLower(filepath.Ext(headerImage.Name)))

		if err = s.storage.Upload(ctx, key, headerImage.Data, headerImage.ContentType); err != nil {
			return "", err
		}

		imageURL = s.storage.FileURL(key)
	}

	date := params.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	filename := fmt.Sprintf("%s-%s.md", date, CreateSlug(params.Title))

	fm := models.PostFrontMatter{
		Layout:     "post",
		Title:      params.Title,
		Date:       date,
		Author:     params.Author,
		Categories: splitCommaList(params.Categories, []string{"blog"}),
		Tags:       splitCommaList(params.Tags, []string{}),
		Image:      imageURL,
		Excerpt:    params.Excerpt,
	}

	if params.OriginalFileSlug != "" && params.OriginalFileSlug+".md" != filename {
		if err = removeIfExists(filepath.Join(s.postsDir, params.OriginalFileSlug+".md")); err != nil {
			return "", err
		}
	}

	if err = writeFrontMatterFile(filepath.Join(s.postsDir, filename), fm, params.Content); err != nil {
		return "", err
	}

	return strings.TrimSuffix(filename, ".md"), nil
}

func (s BlogService) DeletePost(fileSlug string) error {
	path := filepath.Join(s.postsDir, filepath.Base(fileSlug)+".md")

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return models.ErrPostNotFound
		}

		return fmt.Errorf("error deleting post '%s': %w", fileSlug, err)
	}

	return nil
}

func splitCommaList(value string, fallback []string) models.StringList {
	if strings.TrimSpace(value) == "" {
		return models.StringList(fallback)
	}

	items := models.StringList{}

	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}
