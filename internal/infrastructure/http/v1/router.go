// Package v1 provides the HTTP API.
package v1

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"confhub/internal/domain/auth"
	"confhub/internal/domain/notification"
	"confhub/internal/domain/payments"
	"confhub/internal/domain/submission"
	"confhub/internal/domain/submission/abstract"
	"confhub/internal/domain/submission/exhibitor"
	"confhub/internal/domain/submission/preconference"
	"confhub/internal/domain/submission/registration"
	"confhub/internal/domain/submission/sponsorship"
	"confhub/internal/infrastructure/http/v1/dto"
	"confhub/internal/infrastructure/http/v1/handlers"
	"confhub/internal/infrastructure/http/v1/middleware"
	"confhub/internal/infrastructure/uploads"
	"confhub/pkg/logger"
)

// Entity path segments of the admin API.
const (
	PathRegistrations = "registrations"
	PathAbstracts     = "abstracts"
	PathSponsorships  = "sponsorships"
	PathExhibitors    = "exhibitors"
	PathPreconference = "pre-conference"
)

// RouterConfig holds everything the router wires into handlers.
type RouterConfig struct {
	// Health backs /health/ready and /health/info.
	Health []handlers.HealthCheck

	Logger         *logger.Logger
	AllowedOrigins []string
	Version        string
	// Development switches gin to debug mode.
	Development bool

	Auth      *auth.Service
	Validator middleware.TokenValidator

	Submissions handlers.IntakeServices
	Payments    *payments.Service
	Stores      handlers.StoresServices

	Uploads *uploads.Store
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(ginMode(cfg.Development))
	dto.RegisterValidators()

	router := gin.New()

	// Recovery sits outside Trace and ErrorHandler so a panic still gets a JSON body.
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	base := handlers.NewBaseHandler()

	healthHandler := handlers.NewHealthHandler(cfg.Version, cfg.Health...)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	api := router.Group("/api")

	registerIntakeRoutes(api, base, cfg)

	authHandler := handlers.NewAuthHandler(base, cfg.Auth)
	api.POST("/admin/login", authHandler.Login)

	admin := api.Group("/admin")
	admin.Use(middleware.Auth(cfg.Validator))
	{
		admin.GET("/me", authHandler.Me)
		registerAdminRoutes(admin, base, cfg)
	}

	stores := api.Group("/stores")
	stores.Use(middleware.Auth(cfg.Validator))
	handlers.NewStoresHandler(base, cfg.Stores).RegisterRoutes(stores)

	return router
}

func ginMode(development bool) string {
	if development {
		return gin.DebugMode
	}
	return gin.ReleaseMode
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Disposition", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

func registerIntakeRoutes(api *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewIntakeHandler(base, cfg.Submissions, cfg.Uploads)
	api.POST("/"+PathRegistrations, h.CreateRegistration)
	api.POST("/"+PathAbstracts, h.CreateAbstract)
	api.POST("/"+PathSponsorships, h.CreateSponsorship)
	api.POST("/"+PathExhibitors, h.CreateExhibitor)
	api.POST("/"+PathPreconference, h.CreatePreconference)
}

func registerAdminRoutes(admin *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	svc := cfg.Submissions

	regs := handlers.NewReviewHandler[*registration.Registration](base, svc.Registrations, "status", "registration_type")
	RegisterReviewRoutes(admin.Group("/"+PathRegistrations), regs, regs.SetStatus)

	abs := handlers.NewReviewHandler[*abstract.Abstract](base, svc.Abstracts, "status", "category")
	RegisterReviewRoutes(admin.Group("/"+PathAbstracts), abs, abs.SetStatus)

	sps := handlers.NewReviewHandler[*sponsorship.Sponsorship](base, svc.Sponsorships, "status", "selected_package")
	RegisterReviewRoutes(admin.Group("/"+PathSponsorships), sps, sps.SetStatus)

	exs := handlers.NewReviewHandler[*exhibitor.Exhibitor](base, svc.Exhibitors, "status", "selected_package")
	RegisterReviewRoutes(admin.Group("/"+PathExhibitors), exs, exs.SetStatus)

	meetings := handlers.NewReviewHandler[*preconference.Meeting](base, svc.Meetings, "approval_status", "payment_status")
	meetingStatus := handlers.NewPreconferenceStatusHandler(base, svc.Meetings)
	RegisterReviewRoutes(admin.Group("/"+PathPreconference), meetings, meetingStatus.SetStatus)

	handlers.NewPaymentsHandler(base, cfg.Payments).RegisterRoutes(admin.Group("/payments"))

	// Keyed like the links in secretariat e-mails.
	files := handlers.NewFileHandler(base, cfg.Uploads, map[string]handlers.DocumentLookup{
		notification.KindRegistration.RoutePath(): handlers.Lookup(svc.Registrations.GetByID),
		notification.KindAbstract.RoutePath():     handlers.Lookup(svc.Abstracts.GetByID),
		notification.KindSponsorship.RoutePath():  handlers.Lookup(svc.Sponsorships.GetByID),
		notification.KindExhibitor.RoutePath():    handlers.Lookup(svc.Exhibitors.GetByID),
	})
	admin.GET("/files/:entity/:id/:document", files.Download)
}

var _ handlers.Files = (*uploads.Store)(nil)
var _ submission.FileRemover = (*uploads.Store)(nil)
