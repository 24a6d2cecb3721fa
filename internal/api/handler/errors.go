package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"astro-distribusi/backend/internal/service"
	pkgerrors "astro-distribusi/backend/pkg/errors"
	"astro-distribusi/backend/pkg/response"
)

// ── 业务错误码 ──
// 10xxx 通用；11xxx 角色；12xxx 模板；13xxx 排期；15xxx 成员；16xxx 导出

const (
	codeBadRequest    = 10001
	codeForbidden     = 10003
	codeValidation    = 10006
	codeRoleMissing   = 11001
	codeSectionAbsent = 12001
	codeFieldAbsent   = 12002
	codeSharedDays    = 13001
	codeMemberAbsent  = 15001
	codeMemberExists  = 15002
	codeExportEmpty   = 16001
)

// handleServiceError 将服务层错误映射为统一响应
// 各 Handler 共用，未识别的错误一律按 500 处理
func handleServiceError(c *gin.Context, err error) {
	if ve, ok := pkgerrors.IsValidation(err); ok {
		response.ErrorWithDetails(c, http.StatusBadRequest, codeValidation, "参数校验失败", ve.Reasons)
		return
	}
	if pkgerrors.IsStore(err) {
		response.StoreUnavailable(c)
		return
	}

	switch {
	case errors.Is(err, pkgerrors.ErrPrivilege):
		response.Forbidden(c, codeForbidden, "需要提权身份")
	case errors.Is(err, service.ErrRoleUnresolved):
		response.BadRequest(c, codeRoleMissing, "无法确定调用方角色")
	case errors.Is(err, service.ErrSectionNotFound):
		response.NotFound(c, codeSectionAbsent, "分组不存在")
	case errors.Is(err, service.ErrFieldNotFound):
		response.NotFound(c, codeFieldAbsent, "字段不存在")
	case errors.Is(err, service.ErrSharedSectionSchedule):
		response.BadRequest(c, codeSharedDays, "共享分组不能设置周排期")
	case errors.Is(err, service.ErrMemberNotFound):
		response.NotFound(c, codeMemberAbsent, "成员不存在")
	case errors.Is(err, service.ErrMemberNameExists):
		response.BadRequest(c, codeMemberExists, "该角色下已存在同名成员")
	case errors.Is(err, service.ErrExportNoSections):
		response.BadRequest(c, codeExportEmpty, "当天没有可导出的分组")
	default:
		response.InternalError(c)
	}
}
