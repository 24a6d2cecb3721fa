package dto

// ── 周期开放日 DTO ──

// PeriodScheduleRequest 保存周/月开放日请求
type PeriodScheduleRequest struct {
	Weekly  []int `json:"weekly"  binding:"omitempty,dive,min=1,max=7"`
	Monthly []int `json:"monthly" binding:"omitempty,dive,min=1,max=31"`
}

// PeriodScheduleResponse 周/月开放日响应
type PeriodScheduleResponse struct {
	Feature string `json:"feature"`
	Role    string `json:"role"`
	Weekly  []int  `json:"weekly"`
	Monthly []int  `json:"monthly"`
}
