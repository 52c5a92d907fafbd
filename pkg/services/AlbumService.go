package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alitto/pond/v2"

	"vippyadmin/pkg/b2"
	"vippyadmin/pkg/models"
)

type AlbumServicer interface {
	AddImages(ctx context.Context, slug string, uploads []UploadedImage) (int, error)
	CreateAlbum(ctx context.Context, params CreateAlbumParams, uploads []UploadedImage) (string, int, error)
	DeleteAlbum(ctx context.Context, slug string) error
	DeleteImage(ctx context.Context, slug string, index int) error
	GetAlbum(slug string) (models.Album, error)
	GetAlbums() ([]models.Album, error)
	ReorderImages(slug string, order []int) error
	UpdateAlbum(slug string, params UpdateAlbumParams) error
}

type CreateAlbumParams struct {
	Title       string
	Description string
	Developer   string
	Date        string
}

/*
UpdateAlbumParams is a patch. Nil fields keep the current value.
*/
type UpdateAlbumParams struct {
	Title         *string
	Description   *string
	Developer     *string
	Date          *string
	Tags          *[]string
	CardImage     *int
	CardOffset    *int
	CardOffsetX   *int
	CardZoom      *int
	BannerImage   *int
	BannerOffset  *int
	BannerOffsetX *int
	BannerZoom    *int
}

type AlbumServiceConfig struct {
	ContentService   ContentServicer
	ImageService     ImageServicer
	MaxDeleteWorkers int
	OrderService     OrderServicer
	Storage          b2.Storage
}

type AlbumService struct {
	contentService   ContentServicer
	imageService     ImageServicer
	maxDeleteWorkers int
	orderService     OrderServicer
	storage          b2.Storage
}

func NewAlbumService(config AlbumServiceConfig) AlbumService {
	workers := config.MaxDeleteWorkers

	if workers < 1 {
		workers = 1
	}

	return AlbumService{
		contentService:   config.ContentService,
		imageService:     config.ImageService,
		maxDeleteWorkers: workers,
		orderService:     config.OrderService,
		storage:          config.Storage,
	}
}

/*
GetAlbums scans the data and posts directories once and joins the two
sides by slug. A manifest with no matching post is an orphan and is
dropped from the listing. Albums named in the ordering ledger sort
first, in ledger order; the rest follow newest first.
*/
func (s AlbumService) GetAlbums() ([]models.Album, error) {
	var (
		err   error
		slugs []string
		order []string
	)

	if slugs, err = s.contentService.ListManifestSlugs(); err != nil {
		return nil, err
	}

	albums := []models.Album{}

	for _, slug := range slugs {
		postFile, err := s.contentService.FindPostFile(slug)

		if err != nil {
			return nil, err
		}

		if postFile == "" {
			continue
		}

		fm, err := s.contentService.ReadAlbumPost(postFile)

		if err != nil {
			slog.Error("error reading album post", "slug", slug, "postFile", postFile, "error", err)
			continue
		}

		images, err := s.contentService.ReadManifest(slug)

		if err != nil {
			slog.Error("error reading album manifest", "slug", slug, "error", err)
			images = []models.ImageEntry{}
		}

		albums = append(albums, buildAlbum(slug, postFile, fm, images))
	}

	if order, err = s.orderService.GetOrder(); err != nil {
		return nil, err
	}

	sortAlbums(albums, order)
	return albums, nil
}

/*
GetAlbum re-runs the full listing and filters. There is no indexed
lookup and no cache; every call re-reads the filesystem.
*/
func (s AlbumService) GetAlbum(slug string) (models.Album, error) {
	albums, err := s.GetAlbums()

	if err != nil {
		return models.Album{}, err
	}

	for _, album := range albums {
		if album.Slug == slug {
			return album, nil
		}
	}

	return models.Album{}, models.ErrAlbumNotFound
}

/*
CreateAlbum allocates both files together: the manifest is written
first, then the post file. An existing manifest under the same slug
rejects the whole request.
*/
func (s AlbumService) CreateAlbum(ctx context.Context, params CreateAlbumParams, uploads []UploadedImage) (string, int, error) {
	var (
		count int
		slug  string
	)

	slug = CreateSlug(params.Title)

	date := params.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	err := s.contentService.WithAlbumLock(slug, func() error {
		if s.contentService.ManifestExists(slug) {
			return models.ErrAlbumExists
		}

		images, err := s.imageService.IngestBatch(ctx, slug, 0, uploads)

		if err != nil {
			return err
		}

		if err = s.contentService.WriteManifest(slug, images); err != nil {
			return err
		}

		fm := models.AlbumFrontMatter{
			Date:        date,
			Title:       params.Title,
			Description: defaultString(params.Description, "Virtual Photography"),
			Developer:   params.Developer,
			Tags:        models.StringList{},
			Slug:        slug,
		}
		fm.ApplyDefaults()

		count = len(images)
		return s.contentService.WriteAlbumPost(fmt.Sprintf("%s-%s.md", date, slug), fm)
	})

	if err != nil {
		return "", 0, err
	}

	return slug, count, nil
}

/*
UpdateAlbum rewrites the front matter as a whole. A changed date also
renames the post file, keeping the slug (and with it the manifest
association) intact.
*/
func (s AlbumService) UpdateAlbum(slug string, params UpdateAlbumParams) error {
	album, err := s.GetAlbum(slug)

	if err != nil {
		return err
	}

	applyPatch(&album, params)

	postFile := album.PostFile
	wantFile := fmt.Sprintf("%s-%s.md", album.Date, album.Slug)

	if wantFile != postFile {
		if err = s.contentService.RenamePost(postFile, wantFile); err != nil {
			return err
		}

		postFile = wantFile
	}

	return s.contentService.WriteAlbumPost(postFile, frontMatterFromAlbum(album))
}

/*
AddImages appends a batch to an existing album. The sequence start is
taken from the highest number already present in the manifest, not the
list length, so deletes never cause key collisions. The whole
read-ingest-write runs under the album lock.
*/
func (s AlbumService) AddImages(ctx context.Context, slug string, uploads []UploadedImage) (int, error) {
	var total int

	err := s.contentService.WithAlbumLock(slug, func() error {
		album, err := s.GetAlbum(slug)

		if err != nil {
			return err
		}

		startSeq := nextImageSequence(album.Images)
		added, err := s.imageService.IngestBatch(ctx, slug, startSeq, uploads)

		if err != nil {
			return err
		}

		merged := append(album.Images, added...)
		total = len(merged)

		return s.contentService.WriteManifest(slug, merged)
	})

	return total, err
}

/*
DeleteImage removes entry index from the manifest and deletes the two
remote objects whose keys are reconstructed from the entry's URLs.
Remote deletion failures are logged and swallowed so the manifest
cleanup still happens; remaining entries keep their relative order and
their storage keys are not renumbered.
*/
func (s AlbumService) DeleteImage(ctx context.Context, slug string, index int) error {
	return s.contentService.WithAlbumLock(slug, func() error {
		album, err := s.GetAlbum(slug)

		if err != nil {
			return err
		}

		if index < 0 || index >= len(album.Images) {
			return models.ErrInvalidImageIndex
		}

		entry := album.Images[index]
		s.deleteRemoteObjects(ctx, entry)

		remaining := append([]models.ImageEntry{}, album.Images[:index]...)
		remaining = append(remaining, album.Images[index+1:]...)

		return s.contentService.WriteManifest(slug, remaining)
	})
}

/*
ReorderImages applies a permutation: element i of the new manifest is
the old element order[i].
*/
func (s AlbumService) ReorderImages(slug string, order []int) error {
	return s.contentService.WithAlbumLock(slug, func() error {
		album, err := s.GetAlbum(slug)

		if err != nil {
			return err
		}

		if !isPermutation(order, len(album.Images)) {
			return models.ErrInvalidOrder
		}

		reordered := make([]models.ImageEntry, len(album.Images))

		for i, from := range order {
			reordered[i] = album.Images[from]
		}

		return s.contentService.WriteManifest(slug, reordered)
	})
}

/*
DeleteAlbum removes every remote object pair referenced by the
manifest, then both local files. Object deletion runs on a bounded
pool and failures are swallowed, so the album can report deleted while
orphaned objects remain in the bucket.
*/
func (s AlbumService) DeleteAlbum(ctx context.Context, slug string) error {
	album, err := s.GetAlbum(slug)

	if err != nil {
		return err
	}

	pool := pond.NewPool(s.maxDeleteWorkers, pond.WithContext(ctx))

	for _, entry := range album.Images {
		pool.Submit(func() {
			s.deleteRemoteObjects(ctx, entry)
		})
	}

	_ = pool.Stop().Wait()

	if err = s.contentService.RemovePost(album.PostFile); err != nil {
		return err
	}

	return s.contentService.RemoveManifest(slug)
}

func (s AlbumService) deleteRemoteObjects(ctx context.Context, entry models.ImageEntry) {
	for _, object := range []struct {
		rawURL   string
		segments int
	}{
		{entry.URL, 2},
		{entry.Thumb, 3},
	} {
		key, err := storageKeyFromURL(object.rawURL, object.segments)

		if err != nil {
			slog.Error("error deriving storage key", "url", object.rawURL, "error", err)
			continue
		}

		if _, err = s.storage.Delete(ctx, key); err != nil {
			slog.Error("error deleting object from storage", "key", key, "error", err)
		}
	}
}

/*
Keys are rebuilt from public URLs by taking the trailing path
segments: "slug/imgNNN.jpg" for full-size, "slug/thumb/imgNNN.webp"
for thumbnails. This works for both CDN and direct URL forms.
*/
func storageKeyFromURL(rawURL string, segments int) (string, error) {
	parsed, err := url.Parse(rawURL)

	if err != nil {
		return "", fmt.Errorf("error parsing object URL '%s': %w", rawURL, err)
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")

	if len(parts) < segments {
		return "", fmt.Errorf("object URL '%s' has fewer than %d path segments", rawURL, segments)
	}

	return strings.Join(parts[len(parts)-segments:], "/"), nil
}

var imageKeyExpr = regexp.MustCompile(`img(\d+)\.[a-z]+$`)

/*
nextImageSequence returns one past the highest sequence number among
the entries. Sequence numbers are never reused after deletes, which
is why this is not simply len(entries).
*/
func nextImageSequence(entries []models.ImageEntry) int {
	next := len(entries)

	for _, entry := range entries {
		match := imageKeyExpr.FindStringSubmatch(entry.URL)

		if match == nil {
			continue
		}

		if n, err := strconv.Atoi(match[1]); err == nil && n+1 > next {
			next = n + 1
		}
	}

	return next
}

func buildAlbum(slug, postFile string, fm models.AlbumFrontMatter, images []models.ImageEntry) models.Album {
	tags := []string(fm.Tags)

	if tags == nil {
		tags = []string{}
	}

	return models.Album{
		Slug:          slug,
		Title:         defaultString(fm.Title, slug),
		Description:   defaultString(fm.Description, "Virtual Photography"),
		Developer:     fm.Developer,
		Date:          fm.Date,
		Tags:          tags,
		CardImage:     fm.CardImage,
		CardOffset:    fm.CardOffset,
		CardOffsetX:   fm.CardOffsetX,
		CardZoom:      fm.CardZoom,
		BannerImage:   fm.BannerImage,
		BannerOffset:  fm.BannerOffset,
		BannerOffsetX: fm.BannerOffsetX,
		BannerZoom:    fm.BannerZoom,
		Images:        images,
		ImageCount:    len(images),
		PostFile:      postFile,
		ManifestFile:  slug + ".json",
	}
}

func frontMatterFromAlbum(album models.Album) models.AlbumFrontMatter {
	fm := models.AlbumFrontMatter{
		Date:          album.Date,
		Title:         album.Title,
		Description:   album.Description,
		Developer:     album.Developer,
		Tags:          models.StringList(album.Tags),
		Slug:          album.Slug,
		CardImage:     album.CardImage,
		CardOffset:    album.CardOffset,
		CardOffsetX:   album.CardOffsetX,
		CardZoom:      album.CardZoom,
		BannerImage:   album.BannerImage,
		BannerOffset:  album.BannerOffset,
		BannerOffsetX: album.BannerOffsetX,
		BannerZoom:    album.BannerZoom,
	}

	fm.ApplyDefaults()
	return fm
}

/*
Dates are ISO strings (YYYY-MM-DD), so lexical comparison orders them
chronologically.
*/
func sortAlbums(albums []models.Album, order []string) {
	position := map[string]int{}

	for i, slug := range order {
		position[slug] = i
	}

	sort.SliceStable(albums, func(i, j int) bool {
		a, aListed := position[albums[i].Slug]
		b, bListed := position[albums[j].Slug]

		switch {
		case aListed && bListed:
			return a < b
		case aListed:
			return true
		case bListed:
			return false
		}

		return albums[i].Date > albums[j].Date
	})
}

func isPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}

	seen := make([]bool, n)

	for _, index := range order {
		if index < 0 || index >= n || seen[index] {
			return false
		}

		seen[index] = true
	}

	return true
}

func applyPatch(album *models.Album, params UpdateAlbumParams) {
	if params.Title != nil {
		album.Title = *params.Title
	}

	if params.Description != nil {
		album.Description = *params.Description
	}

	if params.Developer != nil {
		album.Developer = *params.Developer
	}

	if params.Date != nil && *params.Date != "" {
		album.Date = *params.Date
	}

	if params.Tags != nil {
		album.Tags = *params.Tags
	}

	if params.CardImage != nil {
		album.CardImage = *params.CardImage
	}

	if params.CardOffset != nil {
		album.CardOffset = *params.CardOffset
	}

	if params.CardOffsetX != nil {
		album.CardOffsetX = *params.CardOffsetX
	}

	if params.CardZoom != nil {
		album.CardZoom = *params.CardZoom
	}

	if params.BannerImage != nil {
		album.BannerImage = *params.BannerImage
	}

	if params.BannerOffset != nil {
		album.BannerOffset = *params.BannerOffset
	}

	if params.BannerOffsetX != nil {
		album.BannerOffsetX = *params.BannerOffsetX
	}

	if params.BannerZoom != nil {
		album.BannerZoom = *params.BannerZoom
	}
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
