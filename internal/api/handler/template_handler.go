package handler

import (
	"github.com/gin-gonic/gin"

	"astro-distribusi/backend/internal/dto"
	"astro-distribusi/backend/internal/service"
	"astro-distribusi/backend/pkg/response"
)

// TemplateHandler 模板分组与字段 HTTP 处理器
// 所有写操作由服务层校验提权身份
type TemplateHandler struct {
	templateSvc service.TemplateService
}

// NewTemplateHandler 创建 TemplateHandler
func NewTemplateHandler(templateSvc service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateSvc: templateSvc}
}

// ────────────────────── 分组 ──────────────────────

// CreateSection 创建分组
// POST /api/v1/features/:feature/sections
func (h *TemplateHandler) CreateSection(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeBadRequest, "参数校验失败")
		return
	}

	sec, err := h.templateSvc.CreateSection(c.Request.Context(), caller, c.Param("feature"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, sec)
}

// UpdateSection 更新分组标题、序号或周排期
// PATCH /api/v1/sections/:id
func (h *TemplateHandler) UpdateSection(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeBadRequest, "参数校验失败")
		return
	}

	sec, err := h.templateSvc.UpdateSection(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, sec)
}

// DeleteSection 删除分组（连同字段与排期）
// DELETE /api/v1/sections/:id
func (h *TemplateHandler) DeleteSection(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.templateSvc.DeleteSection(c.Request.Context(), caller, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}

// ────────────────────── 字段 ──────────────────────

// CreateField 在分组下创建字段
// POST /api/v1/sections/:id/fields
func (h *TemplateHandler) CreateField(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeBadRequest, "参数校验失败")
		return
	}

	field, err := h.templateSvc.CreateField(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, field)
}

// UpdateField 更新字段
// PATCH /api/v1/fields/:id
func (h *TemplateHandler) UpdateField(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeBadRequest, "参数校验失败")
		return
	}

	field, err := h.templateSvc.UpdateField(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, field)
}

// DeleteField 删除字段
// DELETE /api/v1/fields/:id
func (h *TemplateHandler) DeleteField(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.templateSvc.DeleteField(c.Request.Context(), caller, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}
