package handler

import (
	"github.com/bitfantasy/seapod-portal/internal/portal/service"
	"github.com/gin-gonic/gin"
)

// ProfileHandler 用户档案接口
type ProfileHandler struct {
	svc *service.ProfileService
}

func NewProfileHandler(svc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// Me GET /api/v1/profiles/me
func (h *ProfileHandler) Me(c *gin.Context) {
	profile, err := h.svc.Get(c.Request.Context(), GetUserID(c), GetUserEmail(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, profile)
}

// List GET /api/v1/profiles
func (h *ProfileHandler) List(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	profiles, err := h.svc.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": profiles})
}

// SetRole PUT /api/v1/profiles/:id/role
func (h *ProfileHandler) SetRole(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		Role  string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	profile, err := h.svc.SetRole(c.Request.Context(), GetRole(c), c.Param("id"), req.Email, req.Role)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, profile)
}
