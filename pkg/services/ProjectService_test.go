package services_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"vippyadmin/pkg/models"
	"vippyadmin/pkg/services"
)

func newProjectService(t *testing.T) (services.ProjectServicer, string, *fakeStorage) {
	t.Helper()

	projectsDir := t.TempDir()
	storage := newFakeStorage()

	return services.NewProjectService(services.ProjectServiceConfig{
		ProjectsDir: projectsDir,
		Storage:     storage,
	}), projectsDir, storage
}

func TestSaveProjectAndGetProjects(t *testing.T) {
	projectService, _, _ := newProjectService(t)

	fileSlug, err := projectService.SaveProject(context.Background(), services.SaveProjectParams{
		Name:        "Site Generator",
		Tools:       "go, yaml",
		Description: "Builds the site",
		ExternalURL: "https://example.com",
		Content:     "Project details.",
	}, nil)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fileSlug != "site-generator" {
		t.Fatalf("unexpected file slug: got %q", fileSlug)
	}

	projects, err := projectService.GetProjects()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(projects) != 1 {
		t.Fatalf("unexpected project count: got %d want 1", len(projects))
	}

	project := projects[0]

	if project.Name != "Site Generator" || project.ExternalURL != "https://example.com" {
		t.Fatalf("unexpected project: %+v", project)
	}

	if !reflect.DeepEqual(project.Tools, []string{"go", "yaml"}) {
		t.Fatalf("unexpected tools: got %v", project.Tools)
	}
}

func TestSaveProjectKeepsOriginalFileSlug(t *testing.T) {
	projectService, projectsDir, _ := newProjectService(t)

	fileSlug, err := projectService.SaveProject(context.Background(), services.SaveProjectParams{
		Name:             "Renamed Project",
		OriginalFileSlug: "legacy-name",
	}, nil)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fileSlug != "legacy-name" {
		t.Fatalf("unexpected file slug: got %q", fileSlug)
	}

	if _, err = os.Stat(filepath.Join(projectsDir, "legacy-name.md")); err != nil {
		t.Fatalf("project file missing: %v", err)
	}
}

func TestGetProjectsNaturalOrder(t *testing.T) {
	projectService, _, _ := newProjectService(t)

	for _, name := range []string{"project-10", "project-2", "project-1"} {
		if _, err := projectService.SaveProject(context.Background(), services.SaveProjectParams{
			Name:             name,
			OriginalFileSlug: name,
		}, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	projects, err := projectService.GetProjects()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := []string{}

	for _, project := range projects {
		got = append(got, project.FileSlug)
	}

	if !reflect.DeepEqual(got, []string{"project-1", "project-2", "project-10"}) {
		t.Fatalf("unexpected order: got %v", got)
	}
}

func TestDeleteProject(t *testing.T) {
	projectService, _, _ := newProjectService(t)

	fileSlug, err := projectService.SaveProject(context.Background(), services.SaveProjectParams{
		Name: "Doomed",
	}, nil)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err = projectService.DeleteProject(fileSlug); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err = projectService.DeleteProject(fileSlug); !errors.Is(err, models.ErrProjectNotFound) {
		t.Fatalf("unexpected error: got %v want %v", err, models.ErrProjectNotFound)
	}
}
