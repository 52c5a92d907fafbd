package services

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"vippyadmin/pkg/models"
)

/*
SiteConfigServicer manages the site-wide flat files outside the album
workflow: the YAML site config (including the site_modules list), the
CNAME file, the about page, the landing page data and the theme color
variables in the Sass sources.
*/
type SiteConfigServicer interface {
	GetAbout() (models.AboutFrontMatter, string, error)
	GetConfig() (map[string]any, error)
	GetLanding() (models.LandingData, error)
	GetModules() ([]map[string]any, error)
	GetThemeColor() (string, error)
	ReorderModules(states []ModuleState) error
	SaveAbout(fm models.AboutFrontMatter, body string) error
	SaveFavicon(data []byte) error
	SaveLanding(data models.LandingData) error
	UpdateSettings(params SiteSettingsParams) error
	UpdateThemeColor(dark, light string) error
}

type ModuleState struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
}

/*
SiteSettingsParams is a patch over the site config. Nil fields keep
the current value. Social entries with an empty value are removed from
the author block.
*/
type SiteSettingsParams struct {
	Title            *string
	Description      *string
	URL              *string
	Keywords         *string
	AuthorName       *string
	AuthorEmail      *string
	Social           map[string]string
	AnalyticsEnabled *bool
	AnalyticsID      *string
	VPShowDate       *bool
	VPShowTags       *bool
}

type SiteConfigServiceConfig struct {
	AboutPath     string
	CNAMEPath     string
	ConfigPath    string
	FaviconPath   string
	LandingPath   string
	VariablesPath string
}

type SiteConfigService struct {
	aboutPath     string
	cnamePath     string
	configPath    string
	faviconPath   string
	landingPath   string
	variablesPath string
}

func NewSiteConfigService(config SiteConfigServiceConfig) SiteConfigService {
	return SiteConfigService{
		aboutPath:     config.AboutPath,
		cnamePath:     config.CNAMEPath,
		configPath:    config.ConfigPath,
		faviconPath:   config.FaviconPath,
		landingPath:   config.LandingPath,
		variablesPath: config.VariablesPath,
	}
}

/*
GetConfig loads the whole site config as a map so keys this admin does
not know about survive a rewrite.
*/
func (s SiteConfigService) GetConfig() (map[string]any, error) {
	var (
		err    error
		raw    []byte
		config map[string]any
	)

	if raw, err = os.ReadFile(s.configPath); err != nil {
		return nil, fmt.Errorf("error reading site config: %w", err)
	}

	if err = yaml.Unmarshal(raw, &config); err != nil {
		return nil, fmt.Errorf("error parsing site config: %w", err)
	}

	if config == nil {
		config = map[string]any{}
	}

	return config, nil
}

func (s SiteConfigService) writeConfig(config map[string]any) error {
	encoded, err := yaml.Marshal(config)

	if err != nil {
		return fmt.Errorf("error encoding site config: %w", err)
	}

	if err = os.WriteFile(s.configPath, encoded, 0644); err != nil {
		return fmt.Errorf("error writing site config: %w", err)
	}

	return nil
}

func (s SiteConfigService) GetModules() ([]map[string]any, error) {
	config, err := s.GetConfig()

	if err != nil {
		return nil, err
	}

	rawModules, _ := config["site_modules"].([]any)
	modules := []map[string]any{}

	for _, raw := range rawModules {
		if module, ok := raw.(map[string]any); ok {
			modules = append(modules, module)
		}
	}

	return modules, nil
}

/*
ReorderModules rewrites site_modules in the requested order with the
requested enabled flags. Modules missing from the request are appended
unchanged so nothing silently disappears.
*/
func (s SiteConfigService) ReorderModules(states []ModuleState) error {
	config, err := s.GetConfig()

	if err != nil {
		return err
	}

	current, err := s.GetModules()

	if err != nil {
		return err
	}

	byID := map[string]map[string]any{}

	for _, module := range current {
		if id, ok := module["id"].(string); ok {
			byID[id] = module
		}
	}

	updated := []map[string]any{}
	placed := map[string]bool{}

	for _, state := range states {
		if module, ok := byID[state.ID]; ok {
			module["enabled"] = state.Enabled
			updated = append(updated, module)
			placed[state.ID] = true
		}
	}

	for _, module := range current {
		id, _ := module["id"].(string)

		if !placed[id] {
			updated = append(updated, module)
		}
	}

	asAny := make([]any, len(updated))

	for i, module := range updated {
		asAny[i] = module
	}

	config["site_modules"] = asAny
	return s.writeConfig(config)
}

func (s SiteConfigService) UpdateSettings(params SiteSettingsParams) error {
	config, err := s.GetConfig()

	if err != nil {
		return err
	}

	setIfPresent(config, "title", params.Title)
	setIfPresent(config, "description", params.Description)
	setIfPresent(config, "url", params.URL)
	setIfPresent(config, "keywords", params.Keywords)

	author, _ := config["author"].(map[string]any)

	if author == nil {
		author = map[string]any{}
	}

	if params.AuthorName != nil {
		author["name"] = *params.AuthorName
	}

	if params.AuthorEmail != nil {
		author["email"] = *params.AuthorEmail
	}

	for key, value := range params.Social {
		if strings.TrimSpace(value) == "" {
			delete(author, key)
		} else {
			author[key] = strings.TrimSpace(value)
		}
	}

	config["author"] = author

	if params.AnalyticsEnabled != nil || params.AnalyticsID != nil {
		analytics, _ := config["analytics"].(map[string]any)

		if analytics == nil {
			analytics = map[string]any{}
		}

		if params.AnalyticsEnabled != nil {
			analytics["enabled"] = *params.AnalyticsEnabled
		}

		if params.AnalyticsID != nil {
			google, _ := analytics["google"].(map[string]any)

			if google == nil {
				google = map[string]any{}
			}

			google["tracking_id"] = *params.AnalyticsID
			analytics["google"] = google
		}

		config["analytics"] = analytics
	}

	if params.VPShowDate != nil || params.VPShowTags != nil {
		vp, _ := config["virtual_photography"].(map[string]any)

		if vp == nil {
			vp = map[string]any{}
		}

		if params.VPShowDate != nil {
			vp["show_date"] = *params.VPShowDate
		}

		if params.VPShowTags != nil {
			vp["show_tags"] = *params.VPShowTags
		}

		config["virtual_photography"] = vp
	}

	if err = s.writeConfig(config); err != nil {
		return err
	}

	if params.URL != nil && *params.URL != "" {
		return s.updateCNAME(*params.URL)
	}

	return nil
}

/*
The CNAME file holds the bare hostname the site is served from, so
protocol and trailing slash are stripped from whatever the form sent.
*/
func (s SiteConfigService) updateCNAME(siteURL string) error {
	hostname := strings.TrimSuffix(siteURL, "/")

	if strings.HasPrefix(hostname, "http://") || strings.HasPrefix(hostname, "https://") {
		if parsed, err := url.Parse(hostname); err == nil {
			hostname = parsed.Hostname()
		}
	}

	if err := os.WriteFile(s.cnamePath, []byte(hostname), 0644); err != nil {
		return fmt.Errorf("error writing CNAME: %w", err)
	}

	return nil
}

var (
	primaryExpr      = regexp.MustCompile(`\$primary:\s*#[a-fA-F0-9]{3,6};`)
	primaryLightExpr = regexp.MustCompile(`\$primary-light:\s*#[a-fA-F0-9]{3,6};`)
	primaryValueExpr = regexp.MustCompile(`\$primary:\s*(#[a-fA-F0-9]{3,6});`)
)

func (s SiteConfigService) GetThemeColor() (string, error) {
	raw, err := os.ReadFile(s.variablesPath)

	if err != nil {
		return "", fmt.Errorf("error reading theme variables: %w", err)
	}

	match := primaryValueExpr.FindSubmatch(raw)

	if match == nil {
		return "#cba6f7", nil
	}

	return string(match[1]), nil
}

func (s SiteConfigService) UpdateThemeColor(dark, light string) error {
	raw, err := os.ReadFile(s.variablesPath)

	if err != nil {
		return fmt.Errorf("error reading theme variables: %w", err)
	}

	updated := primaryExpr.ReplaceAll(raw, []byte(fmt.Sprintf("$primary:   %s;", dark)))
	updated = primaryLightExpr.ReplaceAll(updated, []byte(fmt.Sprintf("$primary-light: %s;", light)))

	if err = os.WriteFile(s.variablesPath, updated, 0644); err != nil {
		return fmt.Errorf("error writing theme variables: %w", err)
	}

	return nil
}

func (s SiteConfigService) GetAbout() (models.AboutFrontMatter, string, error) {
	var fm models.AboutFrontMatter

	body, err := readFrontMatterFile(s.aboutPath, &fm)

	if err != nil {
		return fm, "", err
	}

	return fm, body, nil
}

func (s SiteConfigService) SaveAbout(fm models.AboutFrontMatter, body string) error {
	if fm.Layout == "" {
		fm.Layout = "about"
	}

	if fm.Title == "" {
		fm.Title = "About"
	}

	if fm.Permalink == "" {
		fm.Permalink = "/about/"
	}

	if fm.Weight == 0 {
		fm.Weight = 2
	}

	return writeFrontMatterFile(s.aboutPath, fm, body)
}

func (s SiteConfigService) SaveFavicon(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.faviconPath), 0755); err != nil {
		return fmt.Errorf("error creating assets directory: %w", err)
	}

	if err := os.WriteFile(s.faviconPath, data, 0644); err != nil {
		return fmt.Errorf("error writing favicon: %w", err)
	}

	return nil
}

func (s SiteConfigService) GetLanding() (models.LandingData, error) {
	data := models.LandingData{Buttons: []models.LandingButton{}}
	raw, err := os.ReadFile(s.landingPath)

	if err != nil {
		// Missing or unreadable landing data falls back to empty defaults.
		return data, nil
	}

	if err = json.Unmarshal(raw, &data); err != nil {
		return models.LandingData{Buttons: []models.LandingButton{}}, nil
	}

	if data.Buttons == nil {
		data.Buttons = []models.LandingButton{}
	}

	return data, nil
}

func (s SiteConfigService) SaveLanding(data models.LandingData) error {
	if data.Buttons == nil {
		data.Buttons = []models.LandingButton{}
	}

	encoded, err := json.MarshalIndent(data, "", "  ")

	if err != nil {
		return fmt.Errorf("error encoding landing data: %w", err)
	}

	if err = os.WriteFile(s.landingPath, encoded, 0644); err != nil {
		return fmt.Errorf("error writing landing data: %w", err)
	}

	return nil
}

func setIfPresent(config map[string]any, key string, value *string) {
	if value != nil {
		config[key] = *value
	}
}
