package services_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"vippyadmin/pkg/models"
	"vippyadmin/pkg/services"
)

const seedConfig = `title: My Site
description: A personal site
url: https://old.example.com
author:
  name: Vip
  github: vip
site_modules:
  - id: blog
    enabled: true
  - id: projects
    enabled: true
  - id: gallery
    enabled: false
custom_key: untouched
`

const seedVariables = `$primary:   #cba6f7;
$primary-light: #8839ef;
$background: #1e1e2e;
`

func newSiteConfigService(t *testing.T) (services.SiteConfigServicer, string) {
	t.Helper()

	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "_config.yml"), []byte(seedConfig), 0644); err != nil {
		t.Fatalf("unexpected error seeding config: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "_variables.scss"), []byte(seedVariables), 0644); err != nil {
		t.Fatalf("unexpected error seeding variables: %v", err)
	}

	return services.NewSiteConfigService(services.SiteConfigServiceConfig{
		AboutPath:     filepath.Join(dir, "about.md"),
		CNAMEPath:     filepath.Join(dir, "CNAME"),
		ConfigPath:    filepath.Join(dir, "_config.yml"),
		FaviconPath:   filepath.Join(dir, "assets", "favicon.ico"),
		LandingPath:   filepath.Join(dir, "landing.json"),
		VariablesPath: filepath.Join(dir, "_variables.scss"),
	}), dir
}

func TestUpdateSettingsPreservesUnknownKeys(t *testing.T) {
	siteConfigService, _ := newSiteConfigService(t)

	title := "New Title"

	if err := siteConfigService.UpdateSettings(services.SiteSettingsParams{Title: &title}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	config, err := siteConfigService.GetConfig()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config["title"] != "New Title" {
		t.Fatalf("title not updated: got %v", config["title"])
	}

	if config["custom_key"] != "untouched" {
		t.Fatalf("unknown key lost: got %v", config["custom_key"])
	}

	if config["description"] != "A personal site" {
		t.Fatalf("unpatched key changed: got %v", config["description"])
	}
}

func TestUpdateSettingsSocialAddAndRemove(t *testing.T) {
	siteConfigService, _ := newSiteConfigService(t)

	err := siteConfigService.UpdateSettings(services.SiteSettingsParams{
		Social: map[string]string{
			"bluesky": "vip.example.com",
			"github":  "",
		},
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	config, err := siteConfigService.GetConfig()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	author, ok := config["author"].(map[string]any)

	if !ok {
		t.Fatalf("author block missing: %v", config["author"])
	}

	if author["bluesky"] != "vip.example.com" {
		t.Fatalf("social entry not added: %v", author)
	}

	if _, ok = author["github"]; ok {
		t.Fatalf("empty social entry not removed: %v", author)
	}

	if author["name"] != "Vip" {
		t.Fatalf("author name lost: %v", author)
	}
}

func TestUpdateSettingsWritesCNAME(t *testing.T) {
	siteConfigService, dir := newSiteConfigService(t)

	siteURL := "https://new.example.com/"

	if err := siteConfigService.UpdateSettings(services.SiteSettingsParams{URL: &siteURL}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "CNAME"))

	if err != nil {
		t.Fatalf("unexpected error reading CNAME: %v", err)
	}

	if string(raw) != "new.example.com" {
		t.Fatalf("unexpected CNAME: got %q", raw)
	}
}

func TestReorderModulesPreservesMissingModules(t *testing.T) {
	siteConfigService, _ := newSiteConfigService(t)

	err := siteConfigService.ReorderModules([]services.ModuleState{
		{ID: "projects", Enabled: false},
		{ID: "blog", Enabled: true},
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	modules, err := siteConfigService.GetModules()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := []string{}

	for _, module := range modules {
		id, _ := module["id"].(string)
		got = append(got, id)
	}

	/* gallery was not in the request and must survive at the end. */
	if !reflect.DeepEqual(got, []string{"projects", "blog", "gallery"}) {
		t.Fatalf("unexpected module order: got %v", got)
	}

	if enabled, _ := modules[0]["enabled"].(bool); enabled {
		t.Fatalf("projects enabled flag not applied")
	}
}

func TestThemeColorRoundTrip(t *testing.T) {
	siteConfigService, dir := newSiteConfigService(t)

	color, err := siteConfigService.GetThemeColor()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if color != "#cba6f7" {
		t.Fatalf("unexpected initial color: got %q", color)
	}

	if err = siteConfigService.UpdateThemeColor("#f38ba8", "#d20f39"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	color, err = siteConfigService.GetThemeColor()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if color != "#f38ba8" {
		t.Fatalf("unexpected updated color: got %q", color)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "_variables.scss"))

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(string(raw), "$primary-light: #d20f39;") {
		t.Fatalf("light variant not updated:\n%s", raw)
	}

	if !strings.Contains(string(raw), "$background: #1e1e2e;") {
		t.Fatalf("unrelated variable changed:\n%s", raw)
	}
}

func TestAboutRoundTripWithDefaults(t *testing.T) {
	siteConfigService, _ := newSiteConfigService(t)

	if err := siteConfigService.SaveAbout(models.AboutFrontMatter{}, "About me."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fm, body, err := siteConfigService.GetAbout()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fm.Layout != "about" || fm.Title != "About" || fm.Permalink != "/about/" || fm.Weight != 2 {
		t.Fatalf("defaults not applied: %+v", fm)
	}

	if strings.TrimSpace(body) != "About me." {
		t.Fatalf("unexpected body: got %q", body)
	}
}

func TestLandingMissingFileYieldsDefaults(t *testing.T) {
	siteConfigService, _ := newSiteConfigService(t)

	data, err := siteConfigService.GetLanding()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if data.Title != "" || len(data.Buttons) != 0 {
		t.Fatalf("unexpected defaults: %+v", data)
	}

	if data.Buttons == nil {
		t.Fatalf("buttons must be an empty list, not nil")
	}
}

func TestLandingRoundTrip(t *testing.T) {
	siteConfigService, _ := newSiteConfigService(t)

	want := models.LandingData{
		Title:    "Welcome",
		Subtitle: "Shots and words",
		Text:     "Hello there.",
		Buttons: []models.LandingButton{
			{Label: "Gallery", URL: "/vp/"},
		},
	}

	if err := siteConfigService.SaveLanding(want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := siteConfigService.GetLanding()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected landing data: got %+v want %+v", got, want)
	}
}

func TestSaveFaviconWritesAssetsFile(t *testing.T) {
	siteConfigService, dir := newSiteConfigService(t)

	if err := siteConfigService.SaveFavicon([]byte("icon bytes")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "assets", "favicon.ico"))

	if err != nil {
		t.Fatalf("unexpected error reading favicon: %v", err)
	}

	if string(got) != "icon bytes" {
		t.Fatalf("unexpected favicon contents: got %q", got)
	}
}
