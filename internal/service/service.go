package service

import (
	"go.uber.org/zap"

	"astro-distribusi/backend/config"
	"astro-distribusi/backend/internal/repository"
	"astro-distribusi/backend/pkg/metrics"
	"astro-distribusi/backend/pkg/redis"
)

// Caller 调用方身份
// Elevated 来自令牌中的显式提权声明，而不是由用户 ID 推断
type Caller struct {
	UserID   string
	Elevated bool
}

// Service 所有 Service 的聚合入口
type Service struct {
	Role     RoleResolver
	Template TemplateService
	Schedule ScheduleService
	Capture  CaptureService
	Form     FormService
	Member   MemberService
	Export   ExportService
}

// NewService 创建 Service 聚合
// rdb 可为 nil，此时序号分配只在进程内串行
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	rdb *redis.Client,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	var locker ScopeLocker
	if rdb != nil {
		locker = rdb
	}
	engine := &cfg.Engine

	role := NewRoleResolver(repo, logger)
	ordinal := NewOrdinalAllocator(locker, engine.OrdinalLockTTL, m, logger)
	schedule := NewScheduleService(engine, repo, role, logger)
	template := NewTemplateService(repo, ordinal, schedule, logger)
	capture := NewCaptureService(engine, repo, m, logger)
	member := NewMemberService(repo, role, ordinal, logger)
	form := NewFormService(engine, role, template, schedule, capture, m, logger)

	return &Service{
		Role:     role,
		Template: template,
		Schedule: schedule,
		Capture:  capture,
		Form:     form,
		Member:   member,
		Export:   NewExportService(form, capture, member, logger),
	}
}
