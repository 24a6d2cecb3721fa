package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"astro-distribusi/backend/internal/model"
	"astro-distribusi/backend/internal/repository"
)

// 固定基准时间，保证 created_at 次序可预测
var mockEpoch = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

// mockUUID 生成按序递增的确定性 UUID，kind 区分实体类型
func mockUUID(kind, seq int) string {
	return fmt.Sprintf("00000000-0000-0000-%04d-%012d", kind, seq)
}

// checkUUID 模拟 uuid 列对非法输入的报错
func checkUUID(ids ...string) error {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("pq: invalid input syntax for type uuid: %q", id)
		}
	}
	return nil
}

// ── Mock ProfileRepository ──

type mockProfileRepo struct {
	profiles map[string]*model.Profile
	err      error
	calls    int
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]*model.Profile)}
}

func (m *mockProfileRepo) add(userID, role string) {
	p := &model.Profile{UserID: userID, Name: userID}
	if role != "" {
		p.RoleKey = &role
	}
	m.profiles[userID] = p
}

func (m *mockProfileRepo) GetByUserID(_ context.Context, userID string) (*model.Profile, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.profiles[userID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock SectionRepository ──

type mockSectionRepo struct {
	mu          sync.Mutex
	sections    map[string]*model.Section
	seq         int
	createCalls int
	updateErr   error
}

func newMockSectionRepo() *mockSectionRepo {
	return &mockSectionRepo{sections: make(map[string]*model.Section)}
}

func matchScope(s *model.Section, scope repository.SectionScope) bool {
	if s.FeatureKey != scope.FeatureKey {
		return false
	}
	switch {
	case scope.RoleKey == nil:
		if s.RoleKey != nil {
			return false
		}
	case scope.IncludeShared:
		if s.RoleKey != nil && *s.RoleKey != *scope.RoleKey {
			return false
		}
	default:
		if s.RoleKey == nil || *s.RoleKey != *scope.RoleKey {
			return false
		}
	}
	return scope.Period == nil || s.Period == *scope.Period
}

func (m *mockSectionRepo) Create(_ context.Context, section *model.Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	m.seq++
	if section.SectionID == "" {
		section.SectionID = mockUUID(1, m.seq)
	}
	if section.CreatedAt.IsZero() {
		section.CreatedAt = mockEpoch.Add(time.Duration(m.seq) * time.Second)
	}
	cp := *section
	m.sections[section.SectionID] = &cp
	return nil
}

func (m *mockSectionRepo) GetByID(_ context.Context, id string) (*model.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := checkUUID(id); err != nil {
		return nil, err
	}
	if s, ok := m.sections[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSectionRepo) List(_ context.Context, scope repository.SectionScope) ([]model.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Section
	for _, s := range m.sections {
		if matchScope(s, scope) {
			result = append(result, *s)
		}
	}
	// map 遍历无序，交给服务层排序
	return result, nil
}

func (m *mockSectionRepo) ListByIDs(_ context.Context, ids []string) ([]model.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := checkUUID(ids...); err != nil {
		return nil, err
	}
	var result []model.Section
	for _, id := range ids {
		if s, ok := m.sections[id]; ok {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSectionRepo) MaxIdx(_ context.Context, scope repository.SectionScope) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	maxIdx := 0
	for _, s := range m.sections {
		if matchScope(s, scope) && s.Idx > maxIdx {
			maxIdx = s.Idx
		}
	}
	return maxIdx, nil
}

func (m *mockSectionRepo) Update(_ context.Context, section *model.Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	cp := *section
	m.sections[section.SectionID] = &cp
	return nil
}

func (m *mockSectionRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sections, id)
	return nil
}

// ── Mock FieldRepository ──

type mockFieldRepo struct {
	fields map[string]*model.Field
	seq    int
}

func newMockFieldRepo() *mockFieldRepo {
	return &mockFieldRepo{fields: make(map[string]*model.Field)}
}

func (m *mockFieldRepo) Create(_ context.Context, field *model.Field) error {
	m.seq++
	if field.FieldID == "" {
		field.FieldID = mockUUID(2, m.seq)
	}
	if field.CreatedAt.IsZero() {
		field.CreatedAt = mockEpoch.Add(time.Duration(m.seq) * time.Second)
	}
	cp := *field
	m.fields[field.FieldID] = &cp
	return nil
}

func (m *mockFieldRepo) GetByID(_ context.Context, id string) (*model.Field, error) {
	if err := checkUUID(id); err != nil {
		return nil, err
	}
	if f, ok := m.fields[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFieldRepo) ListBySections(_ context.Context, sectionIDs []string) ([]model.Field, error) {
	want := make(map[string]bool, len(sectionIDs))
	for _, id := range sectionIDs {
		want[id] = true
	}
	var result []model.Field
	for _, f := range m.fields {
		if want[f.SectionID] {
			result = append(result, *f)
		}
	}
	return result, nil
}

func (m *mockFieldRepo) ListByIDs(_ context.Context, ids []string) ([]model.Field, error) {
	if err := checkUUID(ids...); err != nil {
		return nil, err
	}
	var result []model.Field
	for _, id := range ids {
		if f, ok := m.fields[id]; ok {
			result = append(result, *f)
		}
	}
	return result, nil
}

func (m *mockFieldRepo) MaxIdx(_ context.Context, sectionID string) (int, error) {
	maxIdx := 0
	for _, f := range m.fields {
		if f.SectionID == sectionID && f.Idx > maxIdx {
			maxIdx = f.Idx
		}
	}
	return maxIdx, nil
}

func (m *mockFieldRepo) Update(_ context.Context, field *model.Field) error {
	cp := *field
	m.fields[field.FieldID] = &cp
	return nil
}

func (m *mockFieldRepo) Delete(_ context.Context, id string) error {
	delete(m.fields, id)
	return nil
}

func (m *mockFieldRepo) DeleteBySection(_ context.Context, sectionID string) error {
	for id, f := range m.fields {
		if f.SectionID == sectionID {
			delete(m.fields, id)
		}
	}
	return nil
}

// ── Mock ScheduleRepository ──

type scopeKey struct{ feature, role string }

type mockScheduleRepo struct {
	sections    *mockSectionRepo
	entries     []model.ScheduleEntry
	modes       map[scopeKey]*model.ScheduleMode
	periods     map[scopeKey]*model.PeriodSchedule
	seq         int
	listEntries int
	// replaceErr 非空时 ReplaceSectionEntries 整体失败，条目与模式均保持原样
	replaceErr error
}

func newMockScheduleRepo(sections *mockSectionRepo) *mockScheduleRepo {
	return &mockScheduleRepo{
		sections: sections,
		modes:    make(map[scopeKey]*model.ScheduleMode),
		periods:  make(map[scopeKey]*model.PeriodSchedule),
	}
}

func (m *mockScheduleRepo) ListEntries(ctx context.Context, featureKey, roleKey string) ([]model.ScheduleEntry, error) {
	m.listEntries++
	var result []model.ScheduleEntry
	for _, e := range m.entries {
		if e.FeatureKey == featureKey && e.RoleKey == roleKey {
			if sec, err := m.sections.GetByID(ctx, e.SectionID); err == nil {
				e.Section = sec
			}
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].DayOfWeek < result[j].DayOfWeek })
	return result, nil
}

func (m *mockScheduleRepo) ListEntriesBySection(_ context.Context, sectionID string) ([]model.ScheduleEntry, error) {
	var result []model.ScheduleEntry
	for _, e := range m.entries {
		if e.SectionID == sectionID {
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].DayOfWeek < result[j].DayOfWeek })
	return result, nil
}

func (m *mockScheduleRepo) ReplaceSectionEntries(_ context.Context, featureKey, roleKey, sectionID string, days []int) (string, error) {
	if m.replaceErr != nil {
		return "", m.replaceErr
	}

	next := make([]model.ScheduleEntry, 0, len(m.entries)+len(days))
	for _, e := range m.entries {
		if e.SectionID != sectionID {
			next = append(next, e)
		}
	}
	for _, d := range days {
		m.seq++
		next = append(next, model.ScheduleEntry{
			EntryID:    fmt.Sprintf("ent-%03d", m.seq),
			FeatureKey: featureKey,
			RoleKey:    roleKey,
			DayOfWeek:  d,
			SectionID:  sectionID,
		})
	}

	mode := model.ModeFlexible
	for _, e := range next {
		if e.FeatureKey == featureKey && e.RoleKey == roleKey {
			mode = model.ModeStrict
			break
		}
	}
	m.entries = next
	m.modes[scopeKey{featureKey, roleKey}] = &model.ScheduleMode{FeatureKey: featureKey, RoleKey: roleKey, Mode: mode}
	return mode, nil
}

func (m *mockScheduleRepo) GetMode(_ context.Context, featureKey, roleKey string) (*model.ScheduleMode, error) {
	if mode, ok := m.modes[scopeKey{featureKey, roleKey}]; ok {
		return mode, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) GetPeriod(_ context.Context, featureKey, roleKey string) (*model.PeriodSchedule, error) {
	if p, ok := m.periods[scopeKey{featureKey, roleKey}]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) SavePeriod(_ context.Context, period *model.PeriodSchedule) error {
	cp := *period
	m.periods[scopeKey{period.FeatureKey, period.RoleKey}] = &cp
	return nil
}

// ── Mock MemberRepository ──

type mockMemberRepo struct {
	members map[string]*model.Member
	seq     int
}

func newMockMemberRepo() *mockMemberRepo {
	return &mockMemberRepo{members: make(map[string]*model.Member)}
}

func (m *mockMemberRepo) Create(_ context.Context, member *model.Member) error {
	m.seq++
	if member.MemberID == "" {
		member.MemberID = mockUUID(5, m.seq)
	}
	cp := *member
	m.members[member.MemberID] = &cp
	return nil
}

func (m *mockMemberRepo) GetByID(_ context.Context, id string) (*model.Member, error) {
	if err := checkUUID(id); err != nil {
		return nil, err
	}
	if mem, ok := m.members[id]; ok {
		cp := *mem
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMemberRepo) List(_ context.Context, roleKey string, includeInactive bool) ([]model.Member, error) {
	var result []model.Member
	for _, mem := range m.members {
		if mem.RoleKey == roleKey && (includeInactive || mem.IsActive) {
			result = append(result, *mem)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Idx != result[j].Idx {
			return result[i].Idx < result[j].Idx
		}
		return result[i].MemberID < result[j].MemberID
	})
	return result, nil
}

func (m *mockMemberRepo) FindActiveByName(_ context.Context, roleKey, name string) (*model.Member, error) {
	for _, mem := range m.members {
		if mem.RoleKey == roleKey && mem.Name == name && mem.IsActive {
			cp := *mem
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMemberRepo) MaxIdx(_ context.Context, roleKey string) (int, error) {
	maxIdx := 0
	for _, mem := range m.members {
		if mem.RoleKey == roleKey && mem.Idx > maxIdx {
			maxIdx = mem.Idx
		}
	}
	return maxIdx, nil
}

func (m *mockMemberRepo) Update(_ context.Context, member *model.Member) error {
	cp := *member
	m.members[member.MemberID] = &cp
	return nil
}

func (m *mockMemberRepo) Delete(_ context.Context, id string) error {
	delete(m.members, id)
	return nil
}

// ── Mock FormRepository ──

type formKey struct{ feature, role, date, depo string }

type recordKey struct{ formID, fieldID, member string }

type mockFormRepo struct {
	forms       map[formKey]*model.FormInstance
	values      map[recordKey]*model.ValueRecord
	seq         int
	upsertCalls int
	err         error
}

func newMockFormRepo() *mockFormRepo {
	return &mockFormRepo{
		forms:  make(map[formKey]*model.FormInstance),
		values: make(map[recordKey]*model.ValueRecord),
	}
}

func keyOf(k repository.SubjectKey) formKey {
	return formKey{k.FeatureKey, k.RoleKey, k.DateString(), k.Depo}
}

func (m *mockFormRepo) Get(_ context.Context, key repository.SubjectKey) (*model.FormInstance, error) {
	if m.err != nil {
		return nil, m.err
	}
	if f, ok := m.forms[keyOf(key)]; ok {
		return f, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFormRepo) Ensure(ctx context.Context, key repository.SubjectKey, _ string) (*model.FormInstance, error) {
	if m.err != nil {
		return nil, m.err
	}
	if f, ok := m.forms[keyOf(key)]; ok {
		return f, nil
	}
	m.seq++
	f := &model.FormInstance{
		FormID:     fmt.Sprintf("form-%03d", m.seq),
		FeatureKey: key.FeatureKey,
		RoleKey:    key.RoleKey,
		FormDate:   key.FormDate,
		Depo:       key.Depo,
	}
	m.forms[keyOf(key)] = f
	return f, nil
}

func (m *mockFormRepo) UpsertValues(_ context.Context, records []model.ValueRecord) error {
	m.upsertCalls++
	if m.err != nil {
		return m.err
	}
	for _, r := range records {
		k := recordKey{r.FormID, r.FieldID, r.MemberKey}
		if existing, ok := m.values[k]; ok {
			existing.Value = r.Value
			existing.Score = r.Score
			existing.UpdatedBy = r.UpdatedBy
			continue
		}
		m.seq++
		cp := r
		cp.RecordID = fmt.Sprintf("rec-%03d", m.seq)
		m.values[k] = &cp
	}
	return nil
}

func (m *mockFormRepo) ListValues(_ context.Context, formID string) ([]model.ValueRecord, error) {
	var result []model.ValueRecord
	for _, v := range m.values {
		if v.FormID == formID {
			result = append(result, *v)
		}
	}
	return result, nil
}

func (m *mockFormRepo) countValues(formID string) int {
	n := 0
	for _, v := range m.values {
		if v.FormID == formID {
			n++
		}
	}
	return n
}
