package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/mux"

	"vippyadmin/cmd/admin/internal/blog"
	"vippyadmin/cmd/admin/internal/configuration"
	"vippyadmin/cmd/admin/internal/projects"
	"vippyadmin/cmd/admin/internal/settings"
	"vippyadmin/cmd/admin/internal/site"
	"vippyadmin/cmd/admin/internal/vp"
	"vippyadmin/pkg/b2"
	"vippyadmin/pkg/services"
)

var (
	Version string = "development"
	appName string = "vippyadmin"

	config configuration.Config

	/* Services */
	storage           b2.Storage
	albumService      services.AlbumServicer
	blogService       services.BlogServicer
	contentService    services.ContentServicer
	imageService      services.ImageServicer
	orderService      services.OrderServicer
	projectService    services.ProjectServicer
	settingsService   services.SettingsServicer
	siteConfigService services.SiteConfigServicer

	/* Controllers */
	blogController     blog.BlogController
	projectController  projects.ProjectController
	settingsController settings.SettingsController
	siteController     site.SiteController
	vpController       vp.VPController
)

func main() {
	config = configuration.LoadConfig()
	setupLogger(&config, Version)

	slog.Info("configuration loaded",
		slog.String("app", appName),
		slog.String("version", Version),
		slog.String("loglevel", config.LogLevel),
		slog.String("host", config.Host),
		slog.String("sitedir", config.SiteDir),
	)

	slog.Debug("setting up...")

	siteDir := config.SiteDir
	dataDir := filepath.Join(siteDir, "_data", "virtual-photography")
	postsDir := filepath.Join(siteDir, "_posts")
	projectsDir := filepath.Join(siteDir, "_projects")

	/*
	 * Setup services
	 */
	creds := services.LoadCredentials(config.CredentialsFile)

	storage = b2.NewClient(b2.ClientConfig{
		Credentials: creds,
	})

	if creds.IsConfigured() {
		slog.Info("storage credentials loaded", slog.String("bucket", creds.BucketName))
	} else {
		slog.Warn("storage credentials not configured. uploads are disabled until configured via /settings/config")
	}

	contentService = services.NewContentService(services.ContentServiceConfig{
		DataDir:  dataDir,
		PostsDir: postsDir,
	})

	orderService = services.NewOrderService(services.OrderServiceConfig{
		LedgerPath: filepath.Join(dataDir, "_album-order.json"),
	})

	imageService = services.NewImageService(services.ImageServiceConfig{
		MaxUploadWorkers: config.MaxUploadWorkers,
		Storage:          storage,
	})

	albumService = services.NewAlbumService(services.AlbumServiceConfig{
		ContentService:   contentService,
		ImageService:     imageService,
		MaxDeleteWorkers: config.MaxDeleteWorkers,
		OrderService:     orderService,
		Storage:          storage,
	})

	blogService = services.NewBlogService(services.BlogServiceConfig{
		PostsDir: postsDir,
		Storage:  storage,
	})

	projectService = services.NewProjectService(services.ProjectServiceConfig{
		ProjectsDir: projectsDir,
		Storage:     storage,
	})

	siteConfigService = services.NewSiteConfigService(services.SiteConfigServiceConfig{
		AboutPath:     filepath.Join(siteDir, "pages", "about.md"),
		CNAMEPath:     filepath.Join(siteDir, "CNAME"),
		ConfigPath:    filepath.Join(siteDir, "_config.yml"),
		FaviconPath:   filepath.Join(siteDir, "assets", "favicon.ico"),
		LandingPath:   filepath.Join(siteDir, "_data", "landing.json"),
		VariablesPath: filepath.Join(siteDir, "_sass", "_variables.scss"),
	})

	settingsService = services.NewSettingsService(services.SettingsServiceConfig{
		CredentialsPath: config.CredentialsFile,
		Storage:         storage,
	})

	/*
	 * Setup controllers
	 */
	vpController = vp.NewVPController(vp.VPControllerConfig{
		AlbumService: albumService,
		OrderService: orderService,
		Storage:      storage,
	})

	blogController = blog.NewBlogController(blog.BlogControllerConfig{
		BlogService: blogService,
	})

	projectController = projects.NewProjectController(projects.ProjectControllerConfig{
		ProjectService: projectService,
	})

	siteController = site.NewSiteController(site.SiteControllerConfig{
		SiteConfigService: siteConfigService,
	})

	settingsController = settings.NewSettingsController(settings.SettingsControllerConfig{
		SettingsService: settingsService,
		Storage:         storage,
	})

	/*
	 * Setup router and http server
	 */
	slog.Debug("setting up routes...")

	requestLogger := newRequestLoggerMiddleware()

	routes := []mux.Route{
		{Path: "GET /heartbeat", HandlerFunc: heartbeat},
		{Path: "GET /vippy/vp", HandlerFunc: vpController.ListAlbums, Middlewares: []mux.MiddlewareFunc{requestLogger}},
		{Path: "GET /vippy/vp/{slug}", HandlerFunc: vpController.GetAlbum, Middlewares: []mux.MiddlewareFunc{requestLogger}},
		{Path: "POST /vippy/vp/create", HandlerFunc: vpController.CreateAlbum, Middlewares: []mux.MiddlewareFunc{requestLogger}},
		{Path: "POST /vippy/vp/update/{slug}", HandlerFunc: vpController.UpdateAlbum, Middlewares: []mux.MiddlewareFunc{requestLogger}},
		{Path: "POST /vippy/vp/add-images/{slug}", HandlerFunc: vpController.AddImages, Middlewares: []mux.MiddlewareFunc{requestLogger}},
		{Path: "POST /vippy/vp/delete-image/{slug}/{index}", HandlerFunc: vpController.DeleteImage, Middlewares: []mux.MiddlewareFunc{requestLogger}},
		{Path: "POST /vippy/vp/delete/{slug}", HandlerFunc: vpController.DeleteAlbum, Middlewares: []mux.MiddlewareFunc{requestLogger}},
		{Path: "POST /vippy/vp/reorder-images/{slug}", HandlerFunc: vpController.ReorderImages, Middlewares: []mux.MiddlewareFunc{requestLogger}},
		{Path: "GET /vippy/order", HandlerFunc: vpController.GetAlbumOrder, Middlewares: []mux.MiddlewareFunc{requestLogger}},
		{Path: "POST /vippy/save-order", HandlerFunc: vpController.SaveAlbumOrder, Middlewares: []mux.MiddlewareFunc{requestLogger}},
		{Path: "GET /vippy/blog", HandlerFunc: blogController.ListPosts, Middlewares: []mux.MiddlewareFunc{requestLogger}},
		{Path: "POST /vippy/blog/save", HandlerFunc: blogController.SavePost, Middlewares: []mux.MiddlewareFunc{requestLogger}},
		{Path: "POST /vippy/blog/delete/{fileSlug}", HandlerFunc: blogController.DeletePost, Middlewares: []mux.MiddlewareFunc{requestLogger}},
		{Path: "GET /vippy/projects", HandlerFunc: projectController.ListProjects, Middlewares: []mux.MiddlewareFunc{requestLogger}},
		{Path: "POST /vippy/projects/save", HandlerFunc: projectController.SaveProject, Middlewares: []mux.MiddlewareFunc{requestLogger}},
		{Path: "POST /vippy/projects/delete/{fileSlug}", HandlerFunc: projectController.DeleteProject, Middlewares: []mux.MiddlewareFunc{requestLogger}},
		{Path: "GET /vippy/about", HandlerFunc: siteController.GetAbout, Middlewares: []mux.MiddlewareFunc{requestLogger}},
		{Path: "POST /vippy/about/save", HandlerFunc: siteController.SaveAbout, Middlewares: []mux.MiddlewareFunc{requestLogger}},
		{Path: "GET /vippy/landing", HandlerFunc: siteController.GetLanding, Middlewares: []mux.MiddlewareFunc{requestLogger}},
		{Path: "POST /vippy/landing/save", HandlerFunc: siteController.SaveLanding, Middlewares: []mux.MiddlewareFunc{requestLogger}},
		{Path: "POST /api/modules/reorder", HandlerFunc: siteController.ReorderModules, Middlewares: []mux.MiddlewareFunc{requestLogger}},
		{Path: "GET /settings/config", HandlerFunc: settingsController.GetStorageConfig, Middlewares: []mux.MiddlewareFunc{requestLogger}},
		{Path: "POST /settings/config", HandlerFunc: settingsController.SaveStorageConfig, Middlewares: []mux.MiddlewareFunc{requestLogger}},
		{Path: "GET /settings/site-config", HandlerFunc: siteController.GetSiteConfig, Middlewares: []mux.MiddlewareFunc{requestLogger}},
		{Path: "POST /settings/site-config", HandlerFunc: siteController.UpdateSiteConfig, Middlewares: []mux.MiddlewareFunc{requestLogger}},
	}

	routerConfig := mux.RouterConfig{
		Address:          config.Host,
		Debug:            Version == "development",
		HttpWriteTimeout: 120,
	}

	m := mux.SetupRouter(routerConfig, routes)
	httpServer, quit := mux.SetupServer(routerConfig, m)

	/*
	 * Wait for graceful shutdown
	 */
	slog.Info("server started")

	<-quit

	mux.Shutdown(httpServer)
	slog.Info("server stopped")
}

func heartbeat(w http.ResponseWriter, r *http.Request) {
	httphelpers.TextOK(w, "OK")
}

func setupLogger(config *configuration.Config, version string) {
	level := slog.LevelInfo

	switch config.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if version == "development" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, opts)))
		return
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, opts)))
}
