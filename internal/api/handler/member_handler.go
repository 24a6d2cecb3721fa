package handler

import (
	"github.com/gin-gonic/gin"

	"astro-distribusi/backend/internal/dto"
	"astro-distribusi/backend/internal/service"
	"astro-distribusi/backend/pkg/response"
)

// MemberHandler 角色成员 HTTP 处理器
type MemberHandler struct {
	memberSvc service.MemberService
}

// NewMemberHandler 创建 MemberHandler
func NewMemberHandler(memberSvc service.MemberService) *MemberHandler {
	return &MemberHandler{memberSvc: memberSvc}
}

// ListMembers 成员列表
// GET /api/v1/members?role=&include_inactive=
func (h *MemberHandler) ListMembers(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.MemberListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeBadRequest, "参数校验失败")
		return
	}

	members, err := h.memberSvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": members})
}

// CreateMember 创建成员
// POST /api/v1/members
func (h *MemberHandler) CreateMember(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeBadRequest, "参数校验失败")
		return
	}

	member, err := h.memberSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, member)
}

// UpdateMember 更新成员
// PATCH /api/v1/members/:id
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeBadRequest, "参数校验失败")
		return
	}

	member, err := h.memberSvc.Update(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, member)
}

// DeleteMember 删除成员，默认停用，hard=true 时物理删除
// DELETE /api/v1/members/:id?hard=true
func (h *MemberHandler) DeleteMember(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	hard := c.Query("hard") == "true"
	if err := h.memberSvc.Delete(c.Request.Context(), caller, c.Param("id"), hard); err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}
