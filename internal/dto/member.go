package dto

// ── 角色成员 DTO ──

// CreateMemberRequest 创建成员请求
type CreateMemberRequest struct {
	Role string `json:"role" binding:"required,max=50"`
	Name string `json:"name" binding:"required,max=100"`
}

// UpdateMemberRequest 更新成员请求
type UpdateMemberRequest struct {
	Name     *string `json:"name"      binding:"omitempty,max=100"`
	Idx      *int    `json:"idx"       binding:"omitempty,min=0"`
	IsActive *bool   `json:"is_active"`
}

// MemberListRequest 成员列表查询参数
type MemberListRequest struct {
	Role            string `form:"role"`
	IncludeInactive bool   `form:"include_inactive"`
}

// MemberResponse 成员响应
type MemberResponse struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	Idx      int    `json:"idx"`
	IsActive bool   `json:"is_active"`
}
