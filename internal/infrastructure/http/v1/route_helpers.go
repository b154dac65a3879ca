package v1

import (
	"github.com/gin-gonic/gin"
)

// ReviewRouteHandler defines the admin routes every submission entity exposes.
type ReviewRouteHandler interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Delete(c *gin.Context)
	History(c *gin.Context)
}

// RegisterReviewRoutes registers the admin list/view/delete/history routes of one entity.
// status is the PATCH /:id/status handler; nil skips the route.
//
// Usage:
//
//	h := handlers.NewReviewHandler[*registration.Registration](base, svc, "status")
//	RegisterReviewRoutes(admin.Group("/registrations"), h, h.SetStatus)
func RegisterReviewRoutes(group *gin.RouterGroup, handler ReviewRouteHandler, status gin.HandlerFunc) {
	group.GET("", handler.List)
	group.GET("/:id", handler.Get)
	group.DELETE("/:id", handler.Delete)
	group.GET("/:id/history", handler.History)
	if status != nil {
		group.PATCH("/:id/status", status)
	}
}
