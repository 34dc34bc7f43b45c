// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authgooglefeature "github.com/arikst/schoolhub/internal/app/features/authgoogle"
	errorsfeature "github.com/arikst/schoolhub/internal/app/features/errors"
	gradesfeature "github.com/arikst/schoolhub/internal/app/features/grades"
	groupsfeature "github.com/arikst/schoolhub/internal/app/features/groups"
	healthfeature "github.com/arikst/schoolhub/internal/app/features/health"
	homefeature "github.com/arikst/schoolhub/internal/app/features/home"
	loginfeature "github.com/arikst/schoolhub/internal/app/features/login"
	logoutfeature "github.com/arikst/schoolhub/internal/app/features/logout"
	studentsfeature "github.com/arikst/schoolhub/internal/app/features/students"
	"github.com/arikst/schoolhub/internal/app/store/audit"
	"github.com/arikst/schoolhub/internal/app/system/auditlog"
	"github.com/arikst/schoolhub/internal/app/system/auth"
	"github.com/arikst/schoolhub/internal/app/system/imagestore"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. SchoolHub initializes the session
// store and template engine, applies the session middleware, and mounts
// the feature routers: landing page, grade and group pages, the student
// listing and profiles, sign-in (password and Google), and health.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger); err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	images, err := imagestore.New(appCfg.UploadDir)
	if err != nil {
		logger.Error("image store init failed", zap.Error(err))
		return nil, err
	}

	errLog := errorsfeature.NewErrorLogger(logger)
	auditLogger := auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{Mode: appCfg.AuditLogMode})

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(auth.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Uploaded profile images
	r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(images.Dir()))))

	// Landing page with per-grade student counts
	homeHandler := homefeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Grade pages (grade name or alias in the URL) and grade deletion
	gradesHandler := gradesfeature.NewHandler(deps.MongoDatabase, errLog, auditLogger, logger)
	r.Mount("/grades", gradesfeature.Routes(gradesHandler))

	// Group pages with roster, stats, search, and group management
	groupsHandler := groupsfeature.NewHandler(deps.MongoDatabase, errLog, auditLogger, logger)
	r.Mount("/group", groupsfeature.Routes(groupsHandler))

	// Student listing and profiles
	studentsHandler := studentsfeature.NewHandler(deps.MongoDatabase, errLog, auditLogger, images, logger)
	r.Mount("/students", studentsfeature.ListRoutes(studentsHandler))
	r.Mount("/student", studentsfeature.Routes(studentsHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	googleHandler := authgooglefeature.NewHandler(
		deps.MongoDatabase,
		appCfg.GoogleClientID,
		appCfg.GoogleClientSecret,
		appCfg.BaseURL,
		logger,
	)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	return r, nil
}
