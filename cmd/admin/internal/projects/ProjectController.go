package projects

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/adampresley/adamgokit/httphelpers"

	"vippyadmin/cmd/admin/internal/respond"
	"vippyadmin/cmd/admin/internal/uploads"
	"vippyadmin/pkg/models"
	"vippyadmin/pkg/services"
)

type ProjectControllerConfig struct {
	ProjectService services.ProjectServicer
}

type ProjectController struct {
	projectService services.ProjectServicer
}

func NewProjectController(config ProjectControllerConfig) ProjectController {
	return ProjectController{
		projectService: config.ProjectService,
	}
}

/*
GET /vippy/projects
*/
func (c ProjectController) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := c.projectService.GetProjects()

	if err != nil {
		slog.Error("error listing projects", "error", err)
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{"projects": projects})
}

/*
POST /vippy/projects/save
*/
func (c ProjectController) SaveProject(w http.ResponseWriter, r *http.Request) {
	image, err := uploads.SingleFromRequest(r, "image")

	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	params := services.SaveProjectParams{
		Name:             httphelpers.GetFromRequest[string](r, "name"),
		Tools:            httphelpers.GetFromRequest[string](r, "tools"),
		Description:      httphelpers.GetFromRequest[string](r, "description"),
		ExternalURL:      httphelpers.GetFromRequest[string](r, "externalUrl"),
		Content:          httphelpers.GetFromRequest[string](r, "content"),
		ImageURL:         httphelpers.GetFromRequest[string](r, "imageUrl"),
		OriginalFileSlug: httphelpers.GetFromRequest[string](r, "originalFileSlug"),
	}

	if params.Name == "" {
		respond.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	fileSlug, err := c.projectService.SaveProject(r.Context(), params, image)

	if err != nil {
		slog.Error("error saving project", "name", params.Name, "error", err)
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	respond.Success(w, map[string]any{"fileSlug": fileSlug})
}

/*
POST /vippy/projects/delete/{fileSlug}
*/
func (c ProjectController) DeleteProject(w http.ResponseWriter, r *http.Request) {
	fileSlug := httphelpers.GetFromRequest[string](r, "fileSlug")

	if err := c.projectService.DeleteProject(fileSlug); err != nil {
		if errors.Is(err, models.ErrProjectNotFound) {
			respond.Error(w, http.StatusNotFound, err.Error())
			return
		}

		slog.Error("error deleting project", "fileSlug", fileSlug, "error", err)
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	respond.Success(w, map[string]any{"message": "Project deleted"})
}
