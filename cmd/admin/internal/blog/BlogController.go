package blog

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

type BlogControllerConfig struct {
	BlogService services.BlogServicer
}

type BlogController struct {
	blogService services.BlogServicer
}

func NewBlogController(config BlogControllerConfig) BlogController {
	return BlogController{
		blogService: config.BlogService,
	}
}

/*
GET /vippy/blog
*/
func (c BlogController) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := c.blogService.GetPosts()

	if err != nil {
		slog.Error("error listing blog posts", "error", err)
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{"posts": posts})
}

/*
POST /vippy/blog/save
*/
func (c BlogController) SavePost(w http.ResponseWriter, r *http.Request) {
	headerImage, err := uploads.SingleFromRequest(r, "headerImage")

	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	params := services.SavePostParams{
		Title:            httphelpers.GetFromRequest[string](r, "title"),
		Date:             httphelpers.GetFromRequest[string](r, "date"),
		Author:           httphelpers.GetFromRequest[string](r, "author"),
		Categories:       httphelpers.GetFromRequest[string](r, "categories"),
		Tags:             httphelpers.GetFromRequest[string](r, "tags"),
		Excerpt:          httphelpers.GetFromRequest[string](r, "excerpt"),
		Content:          httphelpers.GetFromRequest[string](r, "content"),
		ImageURL:         httphelpers.GetFromRequest[string](r, "imageUrl"),
		OriginalFileSlug: httphelpers.GetFromRequest[string](r, "originalFileSlug"),
	}

	if params.Title == "" {
		respond.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	fileSlug, err := c.blogService.SavePost(r.Context(), params, headerImage)

	if err != nil {
		slog.Error("error saving blog post", "title", params.Title, "error", err)
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	respond.Success(w, map[string]any{"fileSlug": fileSlug})
}

/*
POST /vippy/blog/delete/{fileSlug}
*/
func (c BlogController) DeletePost(w http.ResponseWriter, r *http.Request) {
	fileSlug := httphelpers.GetFromRequest[string](r, "fileSlug")

	if err := c.blogService.DeletePost(fileSlug); err != nil {
		if errors.Is(err, models.ErrPostNotFound) {
			respond.Error(w, http.StatusNotFound, err.Error())
			return
		}

		slog.Error("error deleting blog post", "fileSlug", fileSlug, "error", err)
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	respond.Success(w, map[string]any{"message": "Post deleted"})
}
