package handler

import (
	"github.com/bitfantasy/seapod-portal/internal/portal/entity"
	"github.com/bitfantasy/seapod-portal/internal/portal/service"
	"github.com/gin-gonic/gin"
)

// CatalogHandler 主数据接口。写操作限 admin，价格对非 admin 隐藏。
type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func requireAdmin(c *gin.Context) bool {
	if !entity.IsAdmin(GetRole(c)) {
		Forbidden(c, "admin role required")
		return false
	}
	return true
}

// --- 物料 ---

// ListItems GET /api/v1/items
func (h *CatalogHandler) ListItems(c *gin.Context) {
	items, err := h.svc.ListItems(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	if !entity.IsAdmin(GetRole(c)) {
		for i := range items {
			items[i].Price = 0
		}
	}
	Success(c, gin.H{"items": items})
}

// CreateItem POST /api/v1/items
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	var req service.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	item, err := h.svc.CreateItem(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, item)
}

// UpdateItem PUT /api/v1/items/:id
func (h *CatalogHandler) UpdateItem(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	var req service.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	item, err := h.svc.UpdateItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, item)
}

// DeleteItem DELETE /api/v1/items/:id
func (h *CatalogHandler) DeleteItem(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	if err := h.svc.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// --- 套件 ---

// ListKits GET /api/v1/kits
func (h *CatalogHandler) ListKits(c *gin.Context) {
	kits, err := h.svc.ListKits(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": kits})
}

// GetKit GET /api/v1/kits/:id
func (h *CatalogHandler) GetKit(c *gin.Context) {
	kit, err := h.svc.GetKit(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, kit)
}

// CreateKit POST /api/v1/kits
func (h *CatalogHandler) CreateKit(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	kit, err := h.svc.CreateKit(c.Request.Context(), req.Name)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, kit)
}

// DeleteKit DELETE /api/v1/kits/:id
func (h *CatalogHandler) DeleteKit(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	if err := h.svc.DeleteKit(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// AddKitItem POST /api/v1/kits/:id/items
func (h *CatalogHandler) AddKitItem(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	var req service.KitItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	ki, err := h.svc.AddKitItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, ki)
}

// DeleteKitItem DELETE /api/v1/kits/:id/items/:itemId
func (h *CatalogHandler) DeleteKitItem(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	if err := h.svc.DeleteKitItem(c.Request.Context(), c.Param("itemId")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// --- 设备模板 ---

// ListTemplates GET /api/v1/seapod-templates
func (h *CatalogHandler) ListTemplates(c *gin.Context) {
	templates, err := h.svc.ListTemplates(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": templates})
}

// GetTemplate GET /api/v1/seapod-templates/:id
func (h *CatalogHandler) GetTemplate(c *gin.Context) {
	tpl, err := h.svc.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, tpl)
}

// CreateTemplate POST /api/v1/seapod-templates
func (h *CatalogHandler) CreateTemplate(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	var req service.TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	tpl, err := h.svc.CreateTemplate(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, tpl)
}

// UpdateTemplate PUT /api/v1/seapod-templates/:id
func (h *CatalogHandler) UpdateTemplate(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	var req service.TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	tpl, err := h.svc.UpdateTemplate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, tpl)
}

// DeleteTemplate DELETE /api/v1/seapod-templates/:id
func (h *CatalogHandler) DeleteTemplate(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	if err := h.svc.DeleteTemplate(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// AddTemplateItem POST /api/v1/seapod-templates/:id/items
func (h *CatalogHandler) AddTemplateItem(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	var req service.KitItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	ti, err := h.svc.AddTemplateItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, ti)
}

// DeleteTemplateItem DELETE /api/v1/seapod-templates/:id/items/:itemId
func (h *CatalogHandler) DeleteTemplateItem(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	if err := h.svc.DeleteTemplateItem(c.Request.Context(), c.Param("itemId")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}
