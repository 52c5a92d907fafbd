package site

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/adampresley/adamgokit/httphelpers"

	"vippyadmin/cmd/admin/internal/respond"
	"vippyadmin/cmd/admin/internal/uploads"
	"vippyadmin/pkg/models"
	"vippyadmin/pkg/services"
)

/*
themePresets maps Catppuccin accent names to their dark and light
variants. Dark is written to $primary, light to $primary-light.
*/
var themePresets = map[string]struct {
	Dark  string `json:"dark"`
	Light string `json:"light"`
}{
	"Rosewater": {"#f5e0dc", "#dc8a78"},
	"Flamingo":  {"#f2cdcd", "#dd7878"},
	"Pink":      {"#f5c2e7", "#ea76cb"},
	"Mauve":     {"#cba6f7", "#8839ef"},
	"Red":       {"#f38ba8", "#d20f39"},
	"Maroon":    {"#eba0ac", "#e64553"},
	"Peach":     {"#fab387", "#fe640b"},
	"Yellow":    {"#f9e2af", "#df8e1d"},
	"Green":     {"#a6e3a1", "#40a02b"},
	"Teal":      {"#94e2d5", "#179299"},
	"Sky":       {"#89dceb", "#04a5e5"},
	"Sapphire":  {"#74c7ec", "#209fb5"},
	"Blue":      {"#89b4fa", "#1e66f5"},
	"Lavender":  {"#b4befe", "#7287fd"},
}

var (
	hexColorExpr    = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	errInvalidColor = fmt.Errorf("invalid color. Must be a 6 digit hex value")
)

type SiteControllerConfig struct {
	SiteConfigService services.SiteConfigServicer
}

type SiteController struct {
	siteConfigService services.SiteConfigServicer
}

func NewSiteController(config SiteControllerConfig) SiteController {
	return SiteController{
		siteConfigService: config.SiteConfigService,
	}
}

/*
GET /settings/site-config
*/
func (c SiteController) GetSiteConfig(w http.ResponseWriter, r *http.Request) {
	config, err := c.siteConfigService.GetConfig()

	if err != nil {
		slog.Error("error reading site config", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to read site config")
		return
	}

	themeColor, err := c.siteConfigService.GetThemeColor()

	if err != nil {
		slog.Error("error reading theme color", "error", err)
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"config":     config,
		"themeColor": themeColor,
		"presets":    themePresets,
	})
}

/*
POST /settings/site-config
*/
func (c SiteController) UpdateSiteConfig(w http.ResponseWriter, r *http.Request) {
	favicon, err := uploads.SingleRawFromRequest(r, "favicon")

	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err = r.ParseForm(); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	params := services.SiteSettingsParams{
		Title:       formString(r, "title"),
		Description: formString(r, "description"),
		URL:         formString(r, "url"),
		Keywords:    formString(r, "keywords"),
		AuthorName:  formString(r, "author_name"),
		AuthorEmail: formString(r, "author_email"),
		Social:      map[string]string{},
	}

	for key := range r.PostForm {
		if name, ok := strings.CutPrefix(key, "social_"); ok {
			params.Social[name] = strings.TrimSpace(r.PostForm.Get(key))
		}
	}

	if r.PostForm.Has("analytics_enabled") || r.PostForm.Has("analytics_id") {
		enabled := r.PostForm.Get("analytics_enabled") == "on" || r.PostForm.Get("analytics_enabled") == "true"
		params.AnalyticsEnabled = &enabled
		params.AnalyticsID = formString(r, "analytics_id")
	}

	if value := formBool(r, "vp_show_date"); value != nil {
		params.VPShowDate = value
	}

	if value := formBool(r, "vp_show_tags"); value != nil {
		params.VPShowTags = value
	}

	if err := c.siteConfigService.UpdateSettings(params); err != nil {
		slog.Error("error updating site config", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to update site config")
		return
	}

	if err := c.applyThemeColor(r); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if favicon != nil {
		if err := c.siteConfigService.SaveFavicon(favicon.Data); err != nil {
			slog.Error("error saving favicon", "error", err)
			respond.Error(w, http.StatusInternalServerError, "failed to save favicon")
			return
		}
	}

	respond.Success(w, map[string]any{"message": "Site configuration updated!"})
}

func (c SiteController) applyThemeColor(r *http.Request) error {
	switch r.PostForm.Get("theme_color_mode") {
	case "preset":
		preset, ok := themePresets[r.PostForm.Get("theme_color_preset")]

		if !ok {
			return nil
		}

		return c.siteConfigService.UpdateThemeColor(preset.Dark, preset.Light)

	case "custom":
		color := r.PostForm.Get("theme_color_custom")

		if color == "" {
			return nil
		}

		if !hexColorExpr.MatchString(color) {
			return errInvalidColor
		}

		return c.siteConfigService.UpdateThemeColor(color, color)
	}

	return nil
}

/*
GET /vippy/about
*/
func (c SiteController) GetAbout(w http.ResponseWriter, r *http.Request) {
	fm, content, err := c.siteConfigService.GetAbout()

	if err != nil {
		slog.Error("error reading about page", "error", err)
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"layout":    fm.Layout,
		"title":     fm.Title,
		"permalink": fm.Permalink,
		"weight":    fm.Weight,
		"content":   content,
	})
}

/*
POST /vippy/about/save
*/
func (c SiteController) SaveAbout(w http.ResponseWriter, r *http.Request) {
	weight, err := strconv.Atoi(httphelpers.GetFromRequest[string](r, "weight"))

	if err != nil {
		weight = 0
	}

	fm := models.AboutFrontMatter{
		Layout:    httphelpers.GetFromRequest[string](r, "layout"),
		Title:     httphelpers.GetFromRequest[string](r, "title"),
		Permalink: httphelpers.GetFromRequest[string](r, "permalink"),
		Weight:    weight,
	}

	if err = c.siteConfigService.SaveAbout(fm, httphelpers.GetFromRequest[string](r, "content")); err != nil {
		slog.Error("error saving about page", "error", err)
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	respond.Success(w, map[string]any{"message": "About page saved"})
}

/*
GET /vippy/landing
*/
func (c SiteController) GetLanding(w http.ResponseWriter, r *http.Request) {
	data, err := c.siteConfigService.GetLanding()

	if err != nil {
		slog.Error("error reading landing data", "error", err)
		respond.Error(w, http.StatusInternalServerError, "error loading landing page data")
		return
	}

	respond.JSON(w, http.StatusOK, data)
}

/*
POST /vippy/landing/save
*/
func (c SiteController) SaveLanding(w http.ResponseWriter, r *http.Request) {
	data := models.LandingData{}

	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if data.Buttons == nil {
		data.Buttons = []models.LandingButton{}
	}

	if err := c.siteConfigService.SaveLanding(data); err != nil {
		slog.Error("error saving landing data", "error", err)
		respond.Error(w, http.StatusInternalServerError, "error saving landing page data")
		return
	}

	respond.Success(w, map[string]any{"message": "Landing page saved"})
}

/*
POST /api/modules/reorder
*/
func (c SiteController) ReorderModules(w http.ResponseWriter, r *http.Request) {
	body := struct {
		Modules []services.ModuleState `json:"modules"`
	}{}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := c.siteConfigService.ReorderModules(body.Modules); err != nil {
		slog.Error("error reordering modules", "error", err)
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	respond.Success(w, nil)
}

func formString(r *http.Request, key string) *string {
	if !r.PostForm.Has(key) {
		return nil
	}

	value := r.PostForm.Get(key)
	return &value
}

func formBool(r *http.Request, key string) *bool {
	if !r.PostForm.Has(key) {
		return nil
	}

	value := r.PostForm.Get(key)
	result := value == "on" || value == "true"
	return &result
}
