package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"astro-distribusi/backend/internal/dto"
	"astro-distribusi/backend/internal/service"
	"astro-distribusi/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FormHandler 可见表单、采集值提交与导出 HTTP 处理器
type FormHandler struct {
	formSvc   service.FormService
	exportSvc service.ExportService
}

// NewFormHandler 创建 FormHandler
func NewFormHandler(formSvc service.FormService, exportSvc service.ExportService) *FormHandler {
	return &FormHandler{formSvc: formSvc, exportSvc: exportSvc}
}

// VisibleForm 获取当天可见的分组（及字段）
// GET /api/v1/features/:feature/form?role=&date=&period=&include_fields=
func (h *FormHandler) VisibleForm(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var q dto.FormQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, codeBadRequest, "参数校验失败")
		return
	}
	q.Feature = c.Param("feature")

	form, err := h.formSvc.VisibleForm(c.Request.Context(), caller, &q)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, form)
}

// SubmitValues 批量提交采集值（幂等覆盖）
// POST /api/v1/forms/values
func (h *FormHandler) SubmitValues(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.SubmitValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeBadRequest, "参数校验失败")
		return
	}

	resp, err := h.formSvc.SubmitValues(c.Request.Context(), caller, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, resp)
}

// Progress 当天表单填写进度
// GET /api/v1/forms/progress?feature=&role=&date=&depo=
func (h *FormHandler) Progress(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	q, ok := bindSubjectQuery(c)
	if !ok {
		return
	}

	resp, err := h.formSvc.Progress(c.Request.Context(), caller, q)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, resp)
}

// Export 导出当天表单为 Excel
// GET /api/v1/forms/export?feature=&role=&date=&depo=
func (h *FormHandler) Export(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	q, ok := bindSubjectQuery(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportForm(c.Request.Context(), caller, q)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// bindSubjectQuery 解析 /forms 下以 query 传入 feature 的查询参数
func bindSubjectQuery(c *gin.Context) (*dto.FormQuery, bool) {
	var q dto.FormQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, codeBadRequest, "参数校验失败")
		return nil, false
	}
	q.Feature = c.Query("feature")
	if q.Feature == "" {
		response.BadRequest(c, codeBadRequest, "feature 不能为空")
		return nil, false
	}
	return &q, true
}
