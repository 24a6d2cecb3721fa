package handler

import "astro-distribusi/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Template *TemplateHandler
	Form     *FormHandler
	Schedule *ScheduleHandler
	Member   *MemberHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Template: NewTemplateHandler(svc.Template),
		Form:     NewFormHandler(svc.Form, svc.Export),
		Schedule: NewScheduleHandler(svc.Schedule),
		Member:   NewMemberHandler(svc.Member),
	}
}
