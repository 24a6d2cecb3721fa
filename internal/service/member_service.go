package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"astro-distribusi/backend/internal/dto"
	"astro-distribusi/backend/internal/model"
	"astro-distribusi/backend/internal/repository"
	pkgerrors "astro-distribusi/backend/pkg/errors"
)

// ── 成员模块业务错误 ──

var ErrMemberNameExists = errors.New("该角色下已存在同名在职成员")

// MemberService 角色成员业务接口
type MemberService interface {
	List(ctx context.Context, caller *Caller, req *dto.MemberListRequest) ([]dto.MemberResponse, error)
	Create(ctx context.Context, caller *Caller, req *dto.CreateMemberRequest) (*dto.MemberResponse, error)
	Update(ctx context.Context, caller *Caller, id string, req *dto.UpdateMemberRequest) (*dto.MemberResponse, error)
	// Delete 默认停用；hard 为 true 时物理删除
	Delete(ctx context.Context, caller *Caller, id string, hard bool) error
}

type memberService struct {
	repo    *repository.Repository
	role    RoleResolver
	ordinal OrdinalAllocator
	logger  *zap.Logger
}

// NewMemberService 创建 MemberService 实例
func NewMemberService(repo *repository.Repository, role RoleResolver, ordinal OrdinalAllocator, logger *zap.Logger) MemberService {
	return &memberService{repo: repo, role: role, ordinal: ordinal, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *memberService) List(ctx context.Context, caller *Caller, req *dto.MemberListRequest) ([]dto.MemberResponse, error) {
	role, err := s.role.Resolve(ctx, caller, req.Role)
	if err != nil {
		return nil, err
	}
	if role == "" {
		return []dto.MemberResponse{}, nil
	}

	// 停用成员只对提权调用方可见
	includeInactive := req.IncludeInactive && caller != nil && caller.Elevated
	members, err := s.repo.Member.List(ctx, role, includeInactive)
	if err != nil {
		s.logger.Error("列出成员失败", zap.String("role", role), zap.Error(err))
		return nil, pkgerrors.Store("member.list", err)
	}

	result := make([]dto.MemberResponse, 0, len(members))
	for i := range members {
		result = append(result, *toMemberResponse(&members[i]))
	}
	return result, nil
}

// ────────────────────── Create ──────────────────────

func (s *memberService) Create(ctx context.Context, caller *Caller, req *dto.CreateMemberRequest) (*dto.MemberResponse, error) {
	if err := requireElevated(caller); err != nil {
		return nil, err
	}

	role := strings.TrimSpace(req.Role)
	name := strings.TrimSpace(req.Name)
	if role == "" || name == "" {
		return nil, pkgerrors.NewValidation("role 与 name 不能为空")
	}
	if err := s.checkNameFree(ctx, role, name, ""); err != nil {
		return nil, err
	}

	member := &model.Member{RoleKey: role, Name: name, IsActive: true}
	member.CreatedBy = &caller.UserID
	member.UpdatedBy = &caller.UserID

	_, err := s.ordinal.Allocate(ctx, "member:"+role,
		func(ctx context.Context) (int, error) { return s.repo.Member.MaxIdx(ctx, role) },
		func(idx int) error {
			member.Idx = idx
			return s.repo.Member.Create(ctx, member)
		},
	)
	if err != nil {
		s.logger.Error("创建成员失败", zap.String("role", role), zap.Error(err))
		return nil, pkgerrors.Store("member.create", err)
	}

	return toMemberResponse(member), nil
}

// ────────────────────── Update ──────────────────────

func (s *memberService) Update(ctx context.Context, caller *Caller, id string, req *dto.UpdateMemberRequest) (*dto.MemberResponse, error) {
	if err := requireElevated(caller); err != nil {
		return nil, err
	}

	member, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.NewValidation("name 不能为空")
		}
		member.Name = name
	}
	if req.Idx != nil {
		member.Idx = *req.Idx
	}
	if req.IsActive != nil {
		member.IsActive = *req.IsActive
	}
	if member.IsActive {
		if err := s.checkNameFree(ctx, member.RoleKey, member.Name, member.MemberID); err != nil {
			return nil, err
		}
	}

	member.UpdatedBy = &caller.UserID
	if err := s.repo.Member.Update(ctx, member); err != nil {
		s.logger.Error("更新成员失败", zap.String("member_id", id), zap.Error(err))
		return nil, pkgerrors.Store("member.update", err)
	}
	return toMemberResponse(member), nil
}

// ────────────────────── Delete ──────────────────────

func (s *memberService) Delete(ctx context.Context, caller *Caller, id string, hard bool) error {
	if err := requireElevated(caller); err != nil {
		return err
	}

	member, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	if hard {
		if err := s.repo.Member.Delete(ctx, member.MemberID); err != nil {
			s.logger.Error("删除成员失败", zap.String("member_id", id), zap.Error(err))
			return pkgerrors.Store("member.delete", err)
		}
		return nil
	}

	member.IsActive = false
	member.UpdatedBy = &caller.UserID
	if err := s.repo.Member.Update(ctx, member); err != nil {
		s.logger.Error("停用成员失败", zap.String("member_id", id), zap.Error(err))
		return pkgerrors.Store("member.deactivate", err)
	}
	return nil
}

func (s *memberService) get(ctx context.Context, rawID string) (*model.Member, error) {
	id, ok := parseID(rawID)
	if !ok {
		return nil, ErrMemberNotFound
	}
	member, err := s.repo.Member.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		s.logger.Error("查询成员失败", zap.String("member_id", id), zap.Error(err))
		return nil, pkgerrors.Store("member.get", err)
	}
	return member, nil
}

// checkNameFree 在职成员名在角色内唯一，采集值以成员名作为键
func (s *memberService) checkNameFree(ctx context.Context, role, name, selfID string) error {
	existing, err := s.repo.Member.FindActiveByName(ctx, role, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Store("member.find", err)
	}
	if existing.MemberID != selfID {
		return ErrMemberNameExists
	}
	return nil
}

func toMemberResponse(m *model.Member) *dto.MemberResponse {
	return &dto.MemberResponse{
		ID:       m.MemberID,
		Role:     m.RoleKey,
		Name:     m.Name,
		Idx:      m.Idx,
		IsActive: m.IsActive,
	}
}
