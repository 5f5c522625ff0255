package handler

import (
	"github.com/bitfantasy/seapod-portal/internal/portal/service"
	"github.com/gin-gonic/gin"
)

// WizardHandler 建机向导接口，全部挂在订单下
type WizardHandler struct {
	svc *service.WizardService
}

func NewWizardHandler(svc *service.WizardService) *WizardHandler {
	return &WizardHandler{svc: svc}
}

// Get GET /api/v1/orders/:id/wizard
func (h *WizardHandler) Get(c *gin.Context) {
	view, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, view)
}

// SelectTemplate POST /api/v1/orders/:id/wizard/template
func (h *WizardHandler) SelectTemplate(c *gin.Context) {
	var req struct {
		TemplateID string `json:"template_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	view, err := h.svc.SelectTemplate(c.Request.Context(), c.Param("id"), req.TemplateID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, view)
}

// UpdateItemSerial PATCH /api/v1/orders/:id/wizard/items/:itemId
func (h *WizardHandler) UpdateItemSerial(c *gin.Context) {
	var req struct {
		Serial string `json:"serial"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if err := h.svc.UpdateItemSerial(c.Request.Context(), c.Param("id"), c.Param("itemId"), req.Serial); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// ConfirmSerials POST /api/v1/orders/:id/wizard/confirm-serials
func (h *WizardHandler) ConfirmSerials(c *gin.Context) {
	view, err := h.svc.ConfirmSerials(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, view)
}

// Back POST /api/v1/orders/:id/wizard/back
func (h *WizardHandler) Back(c *gin.Context) {
	view, err := h.svc.Back(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, view)
}

// Acknowledge POST /api/v1/orders/:id/wizard/acknowledge
func (h *WizardHandler) Acknowledge(c *gin.Context) {
	outcome, err := h.svc.Acknowledge(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, outcome)
}

// Cancel DELETE /api/v1/orders/:id/wizard
func (h *WizardHandler) Cancel(c *gin.Context) {
	if err := h.svc.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}
