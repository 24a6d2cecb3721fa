package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"astro-distribusi/backend/config"
	"astro-distribusi/backend/internal/dto"
	"astro-distribusi/backend/internal/model"
	"astro-distribusi/backend/internal/repository"
	pkgerrors "astro-distribusi/backend/pkg/errors"
)

// ── 日历日期 ──

const dateLayout = "2006-01-02"

var dayNames = [8]string{"", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu", "Minggu"}

// ParseFormDate 解析 YYYY-MM-DD 日历日期；空串取 loc 时区的今天
// 返回值固定为 UTC 零点，只承载年月日
func ParseFormDate(s string, loc *time.Location, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		y, m, d := now.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, pkgerrors.NewValidation("日期格式应为 YYYY-MM-DD: %q", s)
	}
	return t, nil
}

// IsoWeekday 返回 ISO 星期：周一=1 … 周日=7
func IsoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// DayName 返回星期的印尼语名称
func DayName(dow int) string {
	if dow < 1 || dow > 7 {
		return ""
	}
	return dayNames[dow]
}

// ── 周排期解析 ──

// Resolution 某个作用域在某一天的排期解析结果
type Resolution struct {
	Date              time.Time
	DayOfWeek         int
	DayName           string
	Mode              string
	HasWeeklySchedule bool
	TodayScheduled    bool
	// AllSections 为 true 时不做过滤；否则只保留 SectionIDs 中的分组
	AllSections   bool
	SectionIDs    []string
	WeeklySummary []dto.WeeklyEntry
}

// Allows 判断分组在解析结果下是否可见
func (r *Resolution) Allows(sectionID string) bool {
	if r.AllSections {
		return true
	}
	for _, id := range r.SectionIDs {
		if id == sectionID {
			return true
		}
	}
	return false
}

// ResolveDay 根据作用域全部排期条目计算当天可见分组
// 有条目即为严格模式：只有当天排到的分组可见，没有排到任何分组时结果为空，不回退
func ResolveDay(entries []model.ScheduleEntry, date time.Time) *Resolution {
	dow := IsoWeekday(date)
	res := &Resolution{
		Date:          date,
		DayOfWeek:     dow,
		DayName:       DayName(dow),
		Mode:          model.ModeFlexible,
		AllSections:   true,
		WeeklySummary: make([]dto.WeeklyEntry, 0, len(entries)),
	}
	if len(entries) == 0 {
		return res
	}

	res.Mode = model.ModeStrict
	res.HasWeeklySchedule = true
	res.AllSections = false
	res.SectionIDs = []string{}

	seen := make(map[string]bool)
	for _, e := range entries {
		item := dto.WeeklyEntry{
			DayOfWeek: e.DayOfWeek,
			DayName:   DayName(e.DayOfWeek),
			SectionID: e.SectionID,
		}
		if e.Section != nil {
			item.SectionTitle = e.Section.Title
		}
		res.WeeklySummary = append(res.WeeklySummary, item)

		if e.DayOfWeek == dow && !seen[e.SectionID] {
			seen[e.SectionID] = true
			res.SectionIDs = append(res.SectionIDs, e.SectionID)
		}
	}
	sort.SliceStable(res.WeeklySummary, func(i, j int) bool {
		return res.WeeklySummary[i].DayOfWeek < res.WeeklySummary[j].DayOfWeek
	})
	res.TodayScheduled = len(res.SectionIDs) > 0
	return res
}

// ── 业务错误 ──

var (
	ErrSharedSectionSchedule = errors.New("共用分组不能设置周排期")
)

// ScheduleService 周排期、排期模式与周期开放日业务接口
type ScheduleService interface {
	// Resolve 解析 (feature, role) 在 date 当天的可见分组
	Resolve(ctx context.Context, feature, role string, date time.Time) (*Resolution, error)
	// SetSectionDays 替换分组的周排期并重新计算作用域模式
	SetSectionDays(ctx context.Context, section *model.Section, days []int) ([]int, error)
	// SectionDays 读取分组已排的星期
	SectionDays(ctx context.Context, sectionID string) ([]int, error)
	// ClearSection 删除分组的周排期并重新计算作用域模式
	ClearSection(ctx context.Context, section *model.Section) error
	// PeriodOpen 判断周/月周期分组在 date 当天是否开放
	PeriodOpen(ctx context.Context, feature, role, period string, date time.Time) (bool, error)

	GetPeriod(ctx context.Context, caller *Caller, feature, requestedRole string) (*dto.PeriodScheduleResponse, error)
	SavePeriod(ctx context.Context, caller *Caller, feature, requestedRole string, req *dto.PeriodScheduleRequest) (*dto.PeriodScheduleResponse, error)
	// Calendar 以 iCalendar 格式导出周排期
	Calendar(ctx context.Context, caller *Caller, feature, requestedRole string) (string, error)
}

type scheduleService struct {
	engine *config.EngineConfig
	repo   *repository.Repository
	role   RoleResolver
	logger *zap.Logger
	now    func() time.Time
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(engine *config.EngineConfig, repo *repository.Repository, role RoleResolver, logger *zap.Logger) ScheduleService {
	return &scheduleService{engine: engine, repo: repo, role: role, logger: logger, now: time.Now}
}

// ────────────────────── Resolve ──────────────────────

func (s *scheduleService) Resolve(ctx context.Context, feature, role string, date time.Time) (*Resolution, error) {
	mode, err := s.repo.Schedule.GetMode(ctx, feature, role)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询排期模式失败", zap.String("feature", feature), zap.String("role", role), zap.Error(err))
		return nil, pkgerrors.Store("schedule.mode", err)
	}

	// 无模式记录或灵活模式：不读取条目
	if mode == nil || mode.Mode != model.ModeStrict {
		return ResolveDay(nil, date), nil
	}

	entries, err := s.repo.Schedule.ListEntries(ctx, feature, role)
	if err != nil {
		s.logger.Error("查询排期条目失败", zap.String("feature", feature), zap.String("role", role), zap.Error(err))
		return nil, pkgerrors.Store("schedule.entries", err)
	}
	return ResolveDay(entries, date), nil
}

// ────────────────────── Section days ──────────────────────

func (s *scheduleService) SetSectionDays(ctx context.Context, section *model.Section, days []int) ([]int, error) {
	if section.RoleKey == nil {
		return nil, ErrSharedSectionSchedule
	}
	normalized, err := normalizeDays(days, 7)
	if err != nil {
		return nil, err
	}

	if err := s.replaceEntries(ctx, section, normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}

func (s *scheduleService) SectionDays(ctx context.Context, sectionID string) ([]int, error) {
	entries, err := s.repo.Schedule.ListEntriesBySection(ctx, sectionID)
	if err != nil {
		return nil, pkgerrors.Store("schedule.section_entries", err)
	}
	days := make([]int, 0, len(entries))
	for _, e := range entries {
		days = append(days, e.DayOfWeek)
	}
	return days, nil
}

func (s *scheduleService) ClearSection(ctx context.Context, section *model.Section) error {
	// 共用分组不会有周排期
	if section.RoleKey == nil {
		return nil
	}
	return s.replaceEntries(ctx, section, nil)
}

// replaceEntries 替换条目与重算模式在存储层同一事务内完成，失败时两者都不变
func (s *scheduleService) replaceEntries(ctx context.Context, section *model.Section, days []int) error {
	feature, role := section.FeatureKey, *section.RoleKey
	mode, err := s.repo.Schedule.ReplaceSectionEntries(ctx, feature, role, section.SectionID, days)
	if err != nil {
		s.logger.Error("替换分组周排期失败",
			zap.String("section_id", section.SectionID),
			zap.String("feature", feature),
			zap.String("role", role),
			zap.Error(err),
		)
		return pkgerrors.Store("schedule.replace", err)
	}
	s.logger.Info("分组周排期已更新",
		zap.String("section_id", section.SectionID),
		zap.String("feature", feature),
		zap.String("role", role),
		zap.String("mode", mode),
	)
	return nil
}

// ────────────────────── Period schedule ──────────────────────

func (s *scheduleService) PeriodOpen(ctx context.Context, feature, role, period string, date time.Time) (bool, error) {
	if period != model.PeriodWeekly && period != model.PeriodMonthly {
		return true, nil
	}
	ps, err := s.repo.Schedule.GetPeriod(ctx, feature, role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, pkgerrors.Store("schedule.period", err)
	}
	return periodOpen(ps, period, date), nil
}

// periodOpen 未配置开放日时每天开放
func periodOpen(ps *model.PeriodSchedule, period string, date time.Time) bool {
	switch period {
	case model.PeriodWeekly:
		return len(ps.Weekly) == 0 || ps.Weekly.Contains(IsoWeekday(date))
	case model.PeriodMonthly:
		return len(ps.Monthly) == 0 || ps.Monthly.Contains(date.Day())
	}
	return true
}

func (s *scheduleService) GetPeriod(ctx context.Context, caller *Caller, feature, requestedRole string) (*dto.PeriodScheduleResponse, error) {
	role, err := s.role.Resolve(ctx, caller, requestedRole)
	if err != nil {
		return nil, err
	}
	if feature == "" || role == "" {
		return nil, ErrRoleUnresolved
	}

	resp := &dto.PeriodScheduleResponse{Feature: feature, Role: role, Weekly: []int{}, Monthly: []int{}}
	ps, err := s.repo.Schedule.GetPeriod(ctx, feature, role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return resp, nil
		}
		s.logger.Error("查询周期开放日失败", zap.Error(err))
		return nil, pkgerrors.Store("schedule.period", err)
	}
	resp.Weekly = append(resp.Weekly, ps.Weekly...)
	resp.Monthly = append(resp.Monthly, ps.Monthly...)
	return resp, nil
}

func (s *scheduleService) SavePeriod(ctx context.Context, caller *Caller, feature, requestedRole string, req *dto.PeriodScheduleRequest) (*dto.PeriodScheduleResponse, error) {
	if caller == nil || !caller.Elevated {
		return nil, pkgerrors.ErrPrivilege
	}
	role, err := s.role.Resolve(ctx, caller, requestedRole)
	if err != nil {
		return nil, err
	}
	if feature == "" || role == "" {
		return nil, ErrRoleUnresolved
	}

	weekly, err := normalizeDays(req.Weekly, 7)
	if err != nil {
		return nil, err
	}
	monthly, err := normalizeDays(req.Monthly, 31)
	if err != nil {
		return nil, err
	}

	ps := &model.PeriodSchedule{
		FeatureKey: feature,
		RoleKey:    role,
		Weekly:     model.IntArray(weekly),
		Monthly:    model.IntArray(monthly),
	}
	ps.UpdatedAt = s.now()
	ps.CreatedBy = &caller.UserID
	ps.UpdatedBy = &caller.UserID

	if err := s.repo.Schedule.SavePeriod(ctx, ps); err != nil {
		s.logger.Error("保存周期开放日失败", zap.Error(err))
		return nil, pkgerrors.Store("schedule.save_period", err)
	}

	return &dto.PeriodScheduleResponse{Feature: feature, Role: role, Weekly: weekly, Monthly: monthly}, nil
}

// normalizeDays 校验范围 [1, limit]，去重并升序
func normalizeDays(days []int, limit int) ([]int, error) {
	seen := make(map[int]bool, len(days))
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d < 1 || d > limit {
			return nil, pkgerrors.NewValidation("日期序号 %d 超出范围 1-%d", d, limit)
		}
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Ints(out)
	return out, nil
}
