package settings

import (
	"log/slog"
	"net/http"

	"github.com/adampresley/adamgokit/httphelpers"

	"vippyadmin/cmd/admin/internal/respond"
	"vippyadmin/pkg/b2"
	"vippyadmin/pkg/services"
)

type SettingsControllerConfig struct {
	SettingsService services.SettingsServicer
	Storage         b2.Storage
}

type SettingsController struct {
	settingsService services.SettingsServicer
	storage         b2.Storage
}

func NewSettingsController(config SettingsControllerConfig) SettingsController {
	return SettingsController{
		settingsService: config.SettingsService,
		storage:         config.Storage,
	}
}

/*
GET /settings/config
*/
func (c SettingsController) GetStorageConfig(w http.ResponseWriter, r *http.Request) {
	creds, err := c.settingsService.GetStorageConfig()

	if err != nil {
		slog.Error("error reading storage config", "error", err)
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	/* The application key is never echoed back. */
	respond.JSON(w, http.StatusOK, map[string]any{
		"application_key_id": creds.ApplicationKeyID,
		"bucket_name":        creds.BucketName,
		"bucket_id":          creds.BucketID,
		"use_cdn":            creds.UseCDN,
		"cdn_domain":         creds.CDNDomain,
		"configured":         c.storage.Configured(),
	})
}

/*
POST /settings/config
*/
func (c SettingsController) SaveStorageConfig(w http.ResponseWriter, r *http.Request) {
	creds := b2.Credentials{
		ApplicationKeyID: httphelpers.GetFromRequest[string](r, "application_key_id"),
		ApplicationKey:   httphelpers.GetFromRequest[string](r, "application_key"),
		BucketName:       httphelpers.GetFromRequest[string](r, "bucket_name"),
		BucketID:         httphelpers.GetFromRequest[string](r, "bucket_id"),
		UseCDN:           httphelpers.GetFromRequest[string](r, "use_cdn") == "true",
		CDNDomain:        httphelpers.GetFromRequest[string](r, "cdn_domain"),
	}

	if !creds.HasKeys() || creds.BucketName == "" {
		respond.Error(w, http.StatusBadRequest, "application key and bucket name are required")
		return
	}

	if err := c.settingsService.SaveStorageConfig(creds); err != nil {
		slog.Error("error saving storage config", "error", err)
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	/*
	 * The credentials are saved regardless of whether they authorize.
	 * A failed session refresh is reported alongside the success so the
	 * response matches what is on disk.
	 */
	authorized := true

	if err := c.storage.Authorize(r.Context(), true); err != nil {
		slog.Error("storage authorization failed with new credentials", "error", err)
		authorized = false
	}

	respond.Success(w, map[string]any{
		"message":    "Storage settings saved",
		"authorized": authorized,
	})
}
