package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	pkgerrors "astro-distribusi/backend/pkg/errors"
)

// ── iCalendar 导出 ──────────────────────────────────────────
//
// 每个排期条目导出为一个按周重复的全天事件，
// 起始日为今天起（含今天）第一个对应星期的日期。
// ─────────────────────────────────────────────────────────────

var icsWeekdays = [8]string{"", "MO", "TU", "WE", "TH", "FR", "SA", "SU"}

func (s *scheduleService) Calendar(ctx context.Context, caller *Caller, feature, requestedRole string) (string, error) {
	role, err := s.role.Resolve(ctx, caller, requestedRole)
	if err != nil {
		return "", err
	}
	if feature == "" || role == "" {
		return "", ErrRoleUnresolved
	}

	entries, err := s.repo.Schedule.ListEntries(ctx, feature, role)
	if err != nil {
		s.logger.Error("查询排期条目失败", zap.Error(err))
		return "", pkgerrors.Store("schedule.entries", err)
	}

	loc := s.engine.Location()
	today, _ := ParseFormDate("", loc, s.now())
	stamp := s.now().UTC()

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//astro-distribusi//template-schedule//ID")
	cal.SetName(fmt.Sprintf("%s / %s", feature, role))
	cal.SetTimezoneId(loc.String())

	for _, e := range entries {
		title := e.SectionID
		if e.Section != nil {
			title = e.Section.Title
		}
		start := nextWeekday(today, e.DayOfWeek)

		event := cal.AddEvent(fmt.Sprintf("%s@%s.%s", e.EntryID, feature, role))
		event.SetDtStampTime(stamp)
		event.SetSummary(title)
		event.SetDescription(fmt.Sprintf("%s · %s", feature, DayName(e.DayOfWeek)))
		event.SetAllDayStartAt(start)
		event.SetAllDayEndAt(start.AddDate(0, 0, 1))
		event.AddRrule("FREQ=WEEKLY;BYDAY=" + icsWeekdays[e.DayOfWeek])
	}

	return cal.Serialize(), nil
}

// nextWeekday 返回 from 当天或之后第一个 ISO 星期为 dow 的日期
func nextWeekday(from time.Time, dow int) time.Time {
	diff := (dow - IsoWeekday(from) + 7) % 7
	return from.AddDate(0, 0, diff)
}
