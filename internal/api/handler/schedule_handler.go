package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"astro-distribusi/backend/internal/dto"
	"astro-distribusi/backend/internal/service"
	"astro-distribusi/backend/pkg/response"
)

// ScheduleHandler 周/月开放日与日历订阅 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// GetPeriod 获取周/月开放日
// GET /api/v1/features/:feature/schedule?role=
func (h *ScheduleHandler) GetPeriod(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	resp, err := h.scheduleSvc.GetPeriod(c.Request.Context(), caller, c.Param("feature"), c.Query("role"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, resp)
}

// SavePeriod 保存周/月开放日
// POST /api/v1/features/:feature/schedule?role=
func (h *ScheduleHandler) SavePeriod(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.PeriodScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeBadRequest, "参数校验失败")
		return
	}

	resp, err := h.scheduleSvc.SavePeriod(c.Request.Context(), caller, c.Param("feature"), c.Query("role"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, resp)
}

// Calendar 周排期 iCalendar 订阅
// GET /api/v1/features/:feature/schedule/calendar.ics?role=
func (h *ScheduleHandler) Calendar(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	ics, err := h.scheduleSvc.Calendar(c.Request.Context(), caller, c.Param("feature"), c.Query("role"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename=schedule.ics")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}
