package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"vippyadmin/pkg/models"
)

/*
ContentServicer is the accessor for album content on disk: a post file
with YAML front matter in the posts directory and a JSON image
manifest in the data directory, both keyed by slug.
*/
type ContentServicer interface {
	FindPostFile(slug string) (string, error)
	ListManifestSlugs() ([]string, error)
	ManifestExists(slug string) bool
	ReadAlbumPost(postFile string) (models.AlbumFrontMatter, error)
	ReadManifest(slug string) ([]models.ImageEntry, error)
	RemoveManifest(slug string) error
	RemovePost(postFile string) error
	RenamePost(oldFile, newFile string) error
	WithAlbumLock(slug string, fn func() error) error
	WriteAlbumPost(postFile string, fm models.AlbumFrontMatter) error
	WriteManifest(slug string, entries []models.ImageEntry) error
}

type ContentServiceConfig struct {
	DataDir  string
	PostsDir string
}

type ContentService struct {
	dataDir  string
	postsDir string
}

func NewContentService(config ContentServiceConfig) ContentService {
	return ContentService{
		dataDir:  config.DataDir,
		postsDir: config.PostsDir,
	}
}

/*
FindPostFile locates the post whose filename ends with "<slug>.md".
Post filenames are "<date>-<slug>.md", so the date segment can change
without breaking the association. An empty result means no post
matches.
*/
func (s ContentService) FindPostFile(slug string) (string, error) {
	entries, err := os.ReadDir(s.postsDir)

	if err != nil {
		return "", fmt.Errorf("error reading posts directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if strings.HasSuffix(entry.Name(), slug+".md") {
			return entry.Name(), nil
		}
	}

	return "", nil
}

/*
ListManifestSlugs returns the slug of every manifest in the data
directory. Files starting with an underscore are reserved (the
ordering ledger lives there) and are skipped, as are lock files.
*/
func (s ContentService) ListManifestSlugs() ([]string, error) {
	entries, err := os.ReadDir(s.dataDir)

	if err != nil {
		return nil, fmt.Errorf("error reading data directory: %w", err)
	}

	slugs := []string{}

	for _, entry := range entries {
		name := entry.Name()

		if entry.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, "_") {
			continue
		}

		slugs = append(slugs, strings.TrimSuffix(name, ".json"))
	}

	return slugs, nil
}

func (s ContentService) ManifestExists(slug string) bool {
	_, err := os.Stat(s.manifestPath(slug))
	return err == nil
}

func (s ContentService) ReadAlbumPost(postFile string) (models.AlbumFrontMatter, error) {
	var (
		err error
		fm  models.AlbumFrontMatter
	)

	if _, err = readFrontMatterFile(filepath.Join(s.postsDir, postFile), &fm); err != nil {
		return fm, err
	}

	fm.ApplyDefaults()
	return fm, nil
}

/*
ReadManifest loads an album's image list. A manifest that exists but
cannot be parsed yields an empty list rather than failing the whole
album, matching how hand edited files are tolerated elsewhere.
*/
func (s ContentService) ReadManifest(slug string) ([]models.ImageEntry, error) {
	var (
		err  error
		raw  []byte
		list []models.ImageEntry
	)

	if raw, err = os.ReadFile(s.manifestPath(slug)); err != nil {
		return nil, fmt.Errorf("error reading manifest for '%s': %w", slug, err)
	}

	if err = json.Unmarshal(raw, &list); err != nil {
		slog.Error("error parsing image manifest", "slug", slug, "error", err)
		return []models.ImageEntry{}, nil
	}

	return list, nil
}

func (s ContentService) RemoveManifest(slug string) error {
	return removeIfExists(s.manifestPath(slug))
}

func (s ContentService) RemovePost(postFile string) error {
	return removeIfExists(filepath.Join(s.postsDir, postFile))
}

/*
RenamePost moves a post file when its date segment changes. A missing
source is a no-op, not an error, so a retried update cannot fail the
whole operation.
*/
func (s ContentService) RenamePost(oldFile, newFile string) error {
	if oldFile == newFile {
		return nil
	}

	err := os.Rename(filepath.Join(s.postsDir, oldFile), filepath.Join(s.postsDir, newFile))

	if err != nil && os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("error renaming post '%s' to '%s': %w", oldFile, newFile, err)
	}

	return nil
}

/*
WithAlbumLock serializes manifest read-modify-write sequences for one
slug with an advisory file lock, so concurrent image batches against
the same album cannot overwrite each other's appends.
*/
func (s ContentService) WithAlbumLock(slug string, fn func() error) error {
	lock := flock.New(filepath.Join(s.dataDir, slug+".lock"))

	if err := lock.Lock(); err != nil {
		return fmt.Errorf("error acquiring lock for '%s': %w", slug, err)
	}

	defer func() {
		_ = lock.Unlock()
	}()

	return fn()
}

func (s ContentService) WriteAlbumPost(postFile string, fm models.AlbumFrontMatter) error {
	// Album posts have no body text. All content lives in front matter.
	return writeFrontMatterFile(filepath.Join(s.postsDir, postFile), fm, "")
}

func (s ContentService) WriteManifest(slug string, entries []models.ImageEntry) error {
	encoded, err := json.MarshalIndent(entries, "", "  ")

	if err != nil {
		return fmt.Errorf("error encoding manifest for '%s': %w", slug, err)
	}

	if err = os.WriteFile(s.manifestPath(slug), encoded, 0644); err != nil {
		return fmt.Errorf("error writing manifest for '%s': %w", slug, err)
	}

	return nil
}

func (s ContentService) manifestPath(slug string) string {
	return filepath.Join(s.dataDir, slug+".json")
}

func removeIfExists(path string) error {
	err := os.Remove(path)

	if err != nil && os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("error removing '%s': %w", path, err)
	}

	return nil
}
