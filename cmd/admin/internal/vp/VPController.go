package vp

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/adampresley/adamgokit/httphelpers"

	"vippyadmin/cmd/admin/internal/respond"
	"vippyadmin/cmd/admin/internal/uploads"
	"vippyadmin/pkg/b2"
	"vippyadmin/pkg/models"
	"vippyadmin/pkg/services"
)

type VPControllerConfig struct {
	AlbumService services.AlbumServicer
	OrderService services.OrderServicer
	Storage      b2.Storage
}

type VPController struct {
	albumService services.AlbumServicer
	orderService services.OrderServicer
	storage      b2.Storage
}

func NewVPController(config VPControllerConfig) VPController {
	return VPController{
		albumService: config.AlbumService,
		orderService: config.OrderService,
		storage:      config.Storage,
	}
}

/*
GET /vippy/vp
*/
func (c VPController) ListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := c.albumService.GetAlbums()

	if err != nil {
		slog.Error("error listing albums", "error", err)
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"albums":            albums,
		"storageConfigured": c.storage.Configured(),
	})
}

/*
GET /vippy/vp/{slug}
*/
func (c VPController) GetAlbum(w http.ResponseWriter, r *http.Request) {
	slug := httphelpers.GetFromRequest[string](r, "slug")
	album, err := c.albumService.GetAlbum(slug)

	if err != nil {
		c.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, album)
}

/*
POST /vippy/vp/create
*/
func (c VPController) CreateAlbum(w http.ResponseWriter, r *http.Request) {
	images, err := uploads.FromRequest(r, "images")

	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	params := services.CreateAlbumParams{
		Title:       httphelpers.GetFromRequest[string](r, "title"),
		Description: httphelpers.GetFromRequest[string](r, "description"),
		Developer:   httphelpers.GetFromRequest[string](r, "developer"),
		Date:        httphelpers.GetFromRequest[string](r, "date"),
	}

	if params.Title == "" {
		respond.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	slug, count, err := c.albumService.CreateAlbum(r.Context(), params, images)

	if err != nil {
		slog.Error("error creating album", "title", params.Title, "error", err)
		c.writeError(w, err)
		return
	}

	respond.Success(w, map[string]any{
		"slug":    slug,
		"message": fmt.Sprintf("Album %q created with %d images", params.Title, count),
	})
}

/*
POST /vippy/vp/update/{slug}
*/
func (c VPController) UpdateAlbum(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	slug := httphelpers.GetFromRequest[string](r, "slug")

	params := services.UpdateAlbumParams{
		Title:         formString(r, "title"),
		Description:   formString(r, "description"),
		Developer:     formString(r, "developer"),
		Date:          formString(r, "date"),
		CardImage:     formInt(r, "cardImage"),
		CardOffset:    formInt(r, "cardOffset"),
		CardOffsetX:   formInt(r, "cardOffsetX"),
		CardZoom:      formInt(r, "cardZoom"),
		BannerImage:   formInt(r, "bannerImage"),
		BannerOffset:  formInt(r, "bannerOffset"),
		BannerOffsetX: formInt(r, "bannerOffsetX"),
		BannerZoom:    formInt(r, "bannerZoom"),
	}

	if raw := formString(r, "tags"); raw != nil {
		tags := []string{}

		for _, tag := range strings.Split(*raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}

		params.Tags = &tags
	}

	if err := c.albumService.UpdateAlbum(slug, params); err != nil {
		slog.Error("error updating album", "slug", slug, "error", err)
		c.writeError(w, err)
		return
	}

	respond.Success(w, map[string]any{"message": "Album updated"})
}

/*
POST /vippy/vp/add-images/{slug}
*/
func (c VPController) AddImages(w http.ResponseWriter, r *http.Request) {
	slug := httphelpers.GetFromRequest[string](r, "slug")
	images, err := uploads.FromRequest(r, "images")

	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	total, err := c.albumService.AddImages(r.Context(), slug, images)

	if err != nil {
		slog.Error("error adding images", "slug", slug, "error", err)
		c.writeError(w, err)
		return
	}

	respond.Success(w, map[string]any{
		"message":     fmt.Sprintf("Added %d images", len(images)),
		"totalImages": total,
	})
}

/*
POST /vippy/vp/delete-image/{slug}/{index}
*/
func (c VPController) DeleteImage(w http.ResponseWriter, r *http.Request) {
	slug := httphelpers.GetFromRequest[string](r, "slug")
	index, err := strconv.Atoi(httphelpers.GetFromRequest[string](r, "index"))

	if err != nil {
		respond.Error(w, http.StatusBadRequest, models.ErrInvalidImageIndex.Error())
		return
	}

	if err = c.albumService.DeleteImage(r.Context(), slug, index); err != nil {
		slog.Error("error deleting image", "slug", slug, "index", index, "error", err)
		c.writeError(w, err)
		return
	}

	respond.Success(w, map[string]any{"message": "Image deleted"})
}

/*
POST /vippy/vp/delete/{slug}
*/
func (c VPController) DeleteAlbum(w http.ResponseWriter, r *http.Request) {
	slug := httphelpers.GetFromRequest[string](r, "slug")

	if err := c.albumService.DeleteAlbum(r.Context(), slug); err != nil {
		slog.Error("error deleting album", "slug", slug, "error", err)
		c.writeError(w, err)
		return
	}

	respond.Success(w, map[string]any{"message": "Album deleted"})
}

/*
POST /vippy/vp/reorder-images/{slug}
*/
func (c VPController) ReorderImages(w http.ResponseWriter, r *http.Request) {
	slug := httphelpers.GetFromRequest[string](r, "slug")

	body := struct {
		Order []int `json:"order"`
	}{}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.Error(w, http.StatusBadRequest, models.ErrInvalidOrder.Error())
		return
	}

	if err := c.albumService.ReorderImages(slug, body.Order); err != nil {
		slog.Error("error reordering images", "slug", slug, "error", err)
		c.writeError(w, err)
		return
	}

	respond.Success(w, map[string]any{"message": "Images reordered"})
}

/*
GET /vippy/order
*/
func (c VPController) GetAlbumOrder(w http.ResponseWriter, r *http.Request) {
	albums, err := c.albumService.GetAlbums()

	if err != nil {
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	order, err := c.orderService.GetOrder()

	if err != nil {
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"albums": albums,
		"order":  order,
	})
}

/*
POST /vippy/save-order
*/
func (c VPController) SaveAlbumOrder(w http.ResponseWriter, r *http.Request) {
	body := struct {
		Order []string `json:"order"`
	}{}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Order == nil {
		respond.Error(w, http.StatusBadRequest, models.ErrInvalidOrder.Error())
		return
	}

	if err := c.orderService.SaveOrder(body.Order); err != nil {
		slog.Error("error saving album order", "error", err)
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	respond.Success(w, map[string]any{"message": "Album order saved"})
}

func (c VPController) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrAlbumNotFound):
		respond.Error(w, http.StatusNotFound, err.Error())

	case errors.Is(err, models.ErrAlbumExists),
		errors.Is(err, models.ErrInvalidImageIndex),
		errors.Is(err, models.ErrInvalidOrder):
		respond.Error(w, http.StatusBadRequest, err.Error())

	default:
		respond.Error(w, http.StatusInternalServerError, err.Error())
	}
}

func formString(r *http.Request, key string) *string {
	if !r.PostForm.Has(key) {
		return nil
	}

	value := r.PostForm.Get(key)
	return &value
}

func formInt(r *http.Request, key string) *int {
	if !r.PostForm.Has(key) {
		return nil
	}

	value, err := strconv.Atoi(r.PostForm.Get(key))

	if err != nil {
		return nil
	}

	return &value
}
