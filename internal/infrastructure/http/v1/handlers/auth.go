package handlers

import (
	"github.com/gin-gonic/gin"

	"confhub/internal/core/apperror"
	appctx "confhub/internal/core/context"
	"confhub/internal/domain/auth"
	"confhub/internal/infrastructure/http/v1/dto"
)

// AuthHandler serves the admin sign-in and the token echo.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, service: service}
}

// Login handles POST /api/admin/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if token, err := h.service.Login(c.Request.Context(), req.ToCredentials()); err != nil {
		h.Error(c, err)
	} else {
		h.OK(c, token)
	}
}

// Me handles GET /api/admin/me. The admin group already ran middleware.Auth.
func (h *AuthHandler) Me(c *gin.Context) {
	if admin := appctx.GetAdmin(c.Request.Context()); admin != nil {
		h.OK(c, dto.FromAdmin(admin))
		return
	}
	h.Error(c, apperror.NewUnauthorized("not authenticated"))
}
