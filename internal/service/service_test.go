package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"astro-distribusi/backend/config"
	"astro-distribusi/backend/internal/dto"
	"astro-distribusi/backend/internal/model"
	"astro-distribusi/backend/internal/repository"
	"astro-distribusi/backend/pkg/metrics"
)

// ── 测试辅助 ──

var (
	admin = &Caller{UserID: "admin-001", Elevated: true}
	// 2024-06-03 为周一
	monday    = "2024-06-03"
	tuesday   = "2024-06-04"
	wednesday = "2024-06-05"
)

type testEnv struct {
	svc      *Service
	metrics  *metrics.Metrics
	profiles *mockProfileRepo
	sections *mockSectionRepo
	fields   *mockFieldRepo
	schedule *mockScheduleRepo
	members  *mockMemberRepo
	forms    *mockFormRepo
}

func testConfig() *config.Config {
	return &config.Config{
		Engine: config.EngineConfig{
			Timezone:              "UTC",
			DateSensitiveFeatures: []string{"checklist_area", "checklist_daily"},
			ScoreMin:              1,
			ScoreMax:              5,
			OrdinalLockTTL:        time.Second,
		},
	}
}

func setupTestEnv() *testEnv {
	sections := newMockSectionRepo()
	env := &testEnv{
		profiles: newMockProfileRepo(),
		sections: sections,
		fields:   newMockFieldRepo(),
		schedule: newMockScheduleRepo(sections),
		members:  newMockMemberRepo(),
		forms:    newMockFormRepo(),
		metrics:  metrics.New(nil),
	}
	repo := &repository.Repository{
		Profile:  env.profiles,
		Section:  env.sections,
		Field:    env.fields,
		Schedule: env.schedule,
		Member:   env.members,
		Form:     env.forms,
	}
	env.svc = NewService(testConfig(), repo, nil, env.metrics, zap.NewNop())
	return env
}

func (e *testEnv) section(t *testing.T, feature, role, title string) *dto.SectionResponse {
	t.Helper()
	sec, err := e.svc.Template.CreateSection(context.Background(), admin, feature, &dto.CreateSectionRequest{Role: role, Title: title})
	require.NoError(t, err)
	return sec
}

func (e *testEnv) field(t *testing.T, sectionID string, req *dto.CreateFieldRequest) *dto.FieldResponse {
	t.Helper()
	f, err := e.svc.Template.CreateField(context.Background(), admin, sectionID, req)
	require.NoError(t, err)
	return f
}

func (e *testEnv) scheduleDays(t *testing.T, sectionID string, days ...int) {
	t.Helper()
	_, err := e.svc.Template.UpdateSection(context.Background(), admin, sectionID, &dto.UpdateSectionRequest{WeeklyOpenDates: &days})
	require.NoError(t, err)
}

func scoreField(label string) *dto.CreateFieldRequest {
	return &dto.CreateFieldRequest{Label: label, Type: model.FieldScore}
}

func textField(label string) *dto.CreateFieldRequest {
	return &dto.CreateFieldRequest{Label: label, Type: model.FieldText}
}

func sectionTitles(resp *dto.VisibleFormResponse) []string {
	titles := make([]string, 0, len(resp.Sections))
	for _, s := range resp.Sections {
		titles = append(titles, s.Title)
	}
	return titles
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }
