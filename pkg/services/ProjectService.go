package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"vippyadmin/pkg/b2"
	"vippyadmin/pkg/models"
)

type ProjectServicer interface {
	DeleteProject(fileSlug string) error
	GetProjects() ([]models.Project, error)
	SaveProject(ctx context.Context, params SaveProjectParams, image *UploadedImage) (string, error)
}

type SaveProjectParams struct {
	Name             string
	Tools            string
	Description      string
	ExternalURL      string
	Content          string
	ImageURL         string
	OriginalFileSlug string
}

type ProjectServiceConfig struct {
	ProjectsDir string
	Storage     b2.Storage
}

type ProjectService struct {
	projectsDir string
	storage     b2.Storage
}

func NewProjectService(config ProjectServiceConfig) ProjectService {
	return ProjectService{
		projectsDir: config.ProjectsDir,
		storage:     config.Storage,
	}
}

func (s ProjectService) GetProjects() ([]models.Project, error) {
	entries, err := os.ReadDir(s.projectsDir)

	if err != nil {
		return nil, fmt.Errorf("error reading projects directory: %w", err)
	}

	projects := []models.Project{}

	for _, entry := range entries {
		name := entry.Name()

		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}

		var fm models.ProjectFrontMatter

		body, err := readFrontMatterFile(filepath.Join(s.projectsDir, name), &fm)

		if err != nil {
			return nil, err
		}

		tools := []string(fm.Tools)

		if tools == nil {
			tools = []string{}
		}

		projects = append(projects, models.Project{
			Filename:    name,
			FileSlug:    strings.TrimSuffix(name, ".md"),
			Name:        defaultString(fm.Name, "Untitled"),
			Tools:       tools,
			Image:       fm.Image,
			Description: fm.Description,
			ExternalURL: fm.ExternalURL,
			Content:     body,
		})
	}

	sort.SliceStable(projects, func(i, j int) bool {
		return naturalLess(projects[i].Filename, projects[j].Filename)
	})

	return projects, nil
}

func (s ProjectService) SaveProject(ctx context.Context, params SaveProjectParams, image *UploadedImage) (string, error) {
	var (
		err      error
		imageURL = params.ImageURL
	)

	if image != nil {
		key := fmt.Sprintf("projects/%d%s", time.Now().UnixMilli(), strings.ToLower(filepath.Ext(image.Name)))

		if err = s.storage.Upload(ctx, key, image.Data, image.ContentType); err != nil {
			return "", err
		}

		imageURL = s.storage.FileURL(key)
	}

	fileSlug := params.OriginalFileSlug
	if fileSlug == "" {
		fileSlug = CreateSlug(params.Name)
	}

	fm := models.ProjectFrontMatter{
		Name:        params.Name,
		Tools:       splitCommaList(params.Tools, []string{}),
		Image:       imageURL,
		Description: params.Description,
		ExternalURL: params.ExternalURL,
	}

	filename := fileSlug + ".md"

	if err = writeFrontMatterFile(filepath.Join(s.projectsDir, filename), fm, params.Content); err != nil {
		return "", err
	}

	return fileSlug, nil
}

func (s ProjectService) DeleteProject(fileSlug string) error {
	path := filepath.Join(s.projectsDir, filepath.Base(fileSlug)+".md")

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return models.ErrProjectNotFound
		}

		return fmt.Errorf("error deleting project '%s': %w", fileSlug, err)
	}

	return nil
}

/*
naturalLess compares filenames so that "project-2" sorts before
"project-10".
*/
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		aDigit := unicode.IsDigit(rune(a[0]))
		bDigit := unicode.IsDigit(rune(b[0]))

		if aDigit && bDigit {
			aNum, aRest := leadingNumber(a)
			bNum, bRest := leadingNumber(b)

			if aNum != bNum {
				return aNum < bNum
			}

			a, b = aRest, bRest
			continue
		}

		if a[0] != b[0] {
			return a[0] < b[0]
		}

		a, b = a[1:], b[1:]
	}

	return len(a) < len(b)
}

func leadingNumber(s string) (int, string) {
	i := 0

	for i < len(s) && unicode.IsDigit(rune(s[i])) {
		i++
	}

	n := 0

	for _, c := range s[:i] {
		n = n*10 + int(c-'0')
	}

	return n, s[i:]
}
