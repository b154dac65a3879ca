// Package handlers holds the gin handlers of the public submission forms,
// the admin review screens and the stores back office.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"confhub/internal/core/apperror"
	"confhub/internal/core/id"
	"confhub/internal/infrastructure/http/v1/dto"
)

// BaseHandler is embedded by every handler for binding and responses.
// Errors are handed to gin; middleware.ErrorHandler writes the body.
type BaseHandler struct{}

func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

func (h *BaseHandler) bind(c *gin.Context, obj any, b binding.Binding) bool {
	var err error
	if b == nil {
		err = c.ShouldBind(obj)
	} else {
		err = c.ShouldBindWith(obj, b)
	}
	if err != nil {
		h.Error(c, dto.BindingError(err))
		return false
	}
	return true
}

// Bind picks the binding from Content-Type, so public forms may post
// JSON, urlencoded or multipart bodies.
func (h *BaseHandler) Bind(c *gin.Context, obj any) bool { return h.bind(c, obj, nil) }

func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool { return h.bind(c, obj, binding.JSON) }

func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool { return h.bind(c, obj, binding.Query) }

// ParseID reads a UUID path parameter.
func (h *BaseHandler) ParseID(c *gin.Context, param string) (id.ID, bool) {
	raw := c.Param(param)
	v, err := id.Parse(raw)
	if err != nil {
		h.Error(c, apperror.NewFieldError("invalid id", param, raw))
		return id.Nil(), false
	}
	return v, true
}

func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func (h *BaseHandler) Created(c *gin.Context, data any) { c.JSON(http.StatusCreated, data) }

func (h *BaseHandler) OK(c *gin.Context, data any) { c.JSON(http.StatusOK, data) }

func (h *BaseHandler) NoContent(c *gin.Context) { c.Status(http.StatusNoContent) }
