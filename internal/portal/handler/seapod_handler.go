package handler

import (
	"fmt"
	"io"

	"github.com/bitfantasy/seapod-portal/internal/portal/repository"
	"github.com/bitfantasy/seapod-portal/internal/portal/service"
	"github.com/gin-gonic/gin"
)

// SeapodHandler 设备生产记录接口
type SeapodHandler struct {
	svc     *service.SeapodService
	storage *service.StorageService
}

func NewSeapodHandler(svc *service.SeapodService, storage *service.StorageService) *SeapodHandler {
	return &SeapodHandler{svc: svc, storage: storage}
}

// Create POST /api/v1/seapods
func (h *SeapodHandler) Create(c *gin.Context) {
	var req service.CreateSeapodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	sp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, sp)
}

// List GET /api/v1/seapods
func (h *SeapodHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.SeapodListParams{
		Keyword: c.Query("keyword"),
		Status:  c.Query("status"),
		Page:    page,
		Size:    pageSize,
	}
	seapods, total, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: seapods, Pagination: NewPagination(page, pageSize, total)})
}

// Get GET /api/v1/seapods/:id
func (h *SeapodHandler) Get(c *gin.Context) {
	sp, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, sp)
}

// UpdateHeader PATCH /api/v1/seapods/:id
func (h *SeapodHandler) UpdateHeader(c *gin.Context) {
	var req service.UpdateHeaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	sp, err := h.svc.UpdateHeader(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, sp)
}

// Complete POST /api/v1/seapods/:id/complete
func (h *SeapodHandler) Complete(c *gin.Context) {
	sp, err := h.svc.RequestCompletion(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, sp)
}

// --- 组件行 ---

// AddItem POST /api/v1/seapods/:id/items
func (h *SeapodHandler) AddItem(c *gin.Context) {
	var req struct {
		Piece    string `json:"piece"`
		Quantity int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	item, err := h.svc.AddItem(c.Request.Context(), c.Param("id"), req.Piece, req.Quantity)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, item)
}

// UpdateItem PATCH /api/v1/seapods/:id/items/:itemId
func (h *SeapodHandler) UpdateItem(c *gin.Context) {
	var req struct {
		Serial *string `json:"serial"`
		IsDone *bool   `json:"is_done"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()
	seapodID, itemID := c.Param("id"), c.Param("itemId")
	if req.Serial != nil {
		if err := h.svc.UpdateItemSerial(ctx, seapodID, itemID, *req.Serial); err != nil {
			HandleError(c, err)
			return
		}
	}
	if req.IsDone != nil {
		if err := h.svc.UpdateItemDone(ctx, seapodID, itemID, *req.IsDone); err != nil {
			HandleError(c, err)
			return
		}
	}
	Success(c, nil)
}

// DeleteItem DELETE /api/v1/seapods/:id/items/:itemId
func (h *SeapodHandler) DeleteItem(c *gin.Context) {
	if err := h.svc.DeleteItem(c.Request.Context(), c.Param("id"), c.Param("itemId")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// --- 附件 ---

// UploadFile POST /api/v1/seapods/:id/files
func (h *SeapodHandler) UploadFile(c *gin.Context) {
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

	file, err := h.storage.UploadSeapodFile(
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

// DownloadFile GET /api/v1/seapods/:id/files/:fileId
func (h *SeapodHandler) DownloadFile(c *gin.Context) {
	object, file, err := h.storage.DownloadSeapodFile(c.Request.Context(), c.Param("id"), c.Param("fileId"))
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

// DeleteFile DELETE /api/v1/seapods/:id/files/:fileId
func (h *SeapodHandler) DeleteFile(c *gin.Context) {
	if err := h.storage.DeleteSeapodFile(c.Request.Context(), c.Param("id"), c.Param("fileId")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}
