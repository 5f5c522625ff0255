package handler

import (
	"fmt"
	"io"

	"github.com/bitfantasy/seapod-portal/internal/portal/entity"
	"github.com/bitfantasy/seapod-portal/internal/portal/repository"
	"github.com/bitfantasy/seapod-portal/internal/portal/service"
	"github.com/gin-gonic/gin"
)

// OrderHandler 订单接口：CRUD、行项目、附件、状态门禁、发货。
type OrderHandler struct {
	orders     *service.OrderService
	transition *service.TransitionService
	shipping   *service.ShippingService
	storage    *service.StorageService
}

func NewOrderHandler(orders *service.OrderService, transition *service.TransitionService, shipping *service.ShippingService, storage *service.StorageService) *OrderHandler {
	return &OrderHandler{
		orders:     orders,
		transition: transition,
		shipping:   shipping,
		storage:    storage,
	}
}

// 非 admin 看不到价格
func stripOrderPrices(role string, orders ...*entity.Order) {
	if entity.IsAdmin(role) {
		return
	}
	for _, o := range orders {
		for i := range o.Items {
			o.Items[i].Price = 0
		}
	}
}

// Create POST /api/v1/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	order, err := h.orders.Create(c.Request.Context(), req, GetUserEmail(c), GetRole(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, order)
}

// List GET /api/v1/orders
func (h *OrderHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.OrderListParams{
		Keyword: c.Query("keyword"),
		Status:  c.Query("status"),
		Page:    page,
		Size:    pageSize,
	}
	orders, total, err := h.orders.List(c.Request.Context(), params)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: orders, Pagination: NewPagination(page, pageSize, total)})
}

// Get GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	stripOrderPrices(GetRole(c), order)
	Success(c, order)
}

// UpdateField PATCH /api/v1/orders/:id
func (h *OrderHandler) UpdateField(c *gin.Context) {
	var req struct {
		Field string      `json:"field" binding:"required"`
		Value interface{} `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if err := h.orders.UpdateField(c.Request.Context(), c.Param("id"), req.Field, req.Value, GetRole(c)); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// Delete DELETE /api/v1/orders/:id
func (h *OrderHandler) Delete(c *gin.Context) {
	if err := h.orders.Delete(c.Request.Context(), c.Param("id"), GetRole(c)); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// RequestStatus POST /api/v1/orders/:id/status
func (h *OrderHandler) RequestStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	outcome, err := h.transition.RequestStatus(c.Request.Context(), c.Param("id"), req.Status, GetRole(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, outcome)
}

// ResolveConflict POST /api/v1/orders/:id/status/resolve-conflict
func (h *OrderHandler) ResolveConflict(c *gin.Context) {
	if err := h.transition.ResolveSeapodConflict(c.Request.Context(), c.Param("id"), GetRole(c)); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// ConfirmShipment POST /api/v1/orders/:id/ship
func (h *OrderHandler) ConfirmShipment(c *gin.Context) {
	order, err := h.shipping.ConfirmShipment(c.Request.Context(), c.Param("id"), GetRole(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	stripOrderPrices(GetRole(c), order)
	Success(c, order)
}

// CheckVessel POST /api/v1/orders/:id/vessel-check
func (h *OrderHandler) CheckVessel(c *gin.Context) {
	var req struct {
		Vessel string `json:"vessel" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	result, err := h.shipping.CheckVessel(c.Request.Context(), c.Param("id"), req.Vessel)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, result)
}

// --- 行项目 ---

// AddItem POST /api/v1/orders/:id/items
func (h *OrderHandler) AddItem(c *gin.Context) {
	var req service.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	item, err := h.orders.AddItem(c.Request.Context(), c.Param("id"), req, GetRole(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, item)
}

// UpdateItem PATCH /api/v1/orders/:id/items/:itemId
func (h *OrderHandler) UpdateItem(c *gin.Context) {
	var req service.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	item, err := h.orders.UpdateItem(c.Request.Context(), c.Param("id"), c.Param("itemId"), req, GetRole(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, item)
}

// DeleteItem DELETE /api/v1/orders/:id/items/:itemId
func (h *OrderHandler) DeleteItem(c *gin.Context) {
	if err := h.orders.DeleteItem(c.Request.Context(), c.Param("id"), c.Param("itemId"), GetRole(c)); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// ReorderItems POST /api/v1/orders/:id/items/reorder
func (h *OrderHandler) ReorderItems(c *gin.Context) {
	var req struct {
		ItemIDs []string `json:"item_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if err := h.orders.ReorderItems(c.Request.Context(), c.Param("id"), req.ItemIDs, GetRole(c)); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// --- 附件 ---

// UploadFile POST /api/v1/orders/:id/files
func (h *OrderHandler) UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "file is required")
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	defer src.Close()

	file, err := h.storage.UploadOrderFile(
		c.Request.Context(),
		c.Param("id"),
		src,
		fileHeader.Filename,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
		GetUserEmail(c),
	)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, file)
}

// DownloadFile GET /api/v1/orders/:id/files/:fileId
func (h *OrderHandler) DownloadFile(c *gin.Context) {
	object, file, err := h.storage.DownloadOrderFile(c.Request.Context(), c.Param("id"), c.Param("fileId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	defer object.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Header("Content-Type", file.MimeType)
	if _, err := io.Copy(c.Writer, object); err != nil {
		c.Abort()
	}
}

// DeleteFile DELETE /api/v1/orders/:id/files/:fileId
func (h *OrderHandler) DeleteFile(c *gin.Context) {
	if err := h.storage.DeleteOrderFile(c.Request.Context(), c.Param("id"), c.Param("fileId")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// --- 导出 ---

// Export GET /api/v1/orders/export
func (h *OrderHandler) Export(c *gin.Context) {
	data, err := h.orders.ExportXLSX(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="orders.xlsx"`)
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
