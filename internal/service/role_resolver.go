package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"astro-distribusi/backend/internal/repository"
	pkgerrors "astro-distribusi/backend/pkg/errors"
)

// RoleResolver 决定一次请求实际作用的角色
type RoleResolver interface {
	// Resolve 返回作用角色；返回空串表示无法确定角色（调用方应得到空表单）
	Resolve(ctx context.Context, caller *Caller, requestedRole string) (string, error)
}

type roleResolver struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRoleResolver 创建 RoleResolver 实例
func NewRoleResolver(repo *repository.Repository, logger *zap.Logger) RoleResolver {
	return &roleResolver{repo: repo, logger: logger}
}

// Resolve 提权调用方可以指定任意角色；其余调用方一律使用档案中的自身角色，
// 请求中的角色参数被静默忽略
func (r *roleResolver) Resolve(ctx context.Context, caller *Caller, requestedRole string) (string, error) {
	if caller == nil || caller.UserID == "" {
		return "", nil
	}

	requestedRole = strings.TrimSpace(requestedRole)
	if caller.Elevated && requestedRole != "" {
		return requestedRole, nil
	}

	profile, err := r.repo.Profile.GetByUserID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		r.logger.Error("查询用户档案失败", zap.String("user_id", caller.UserID), zap.Error(err))
		return "", pkgerrors.Store("profile.get", err)
	}
	if profile.RoleKey == nil {
		return "", nil
	}

	if requestedRole != "" && requestedRole != *profile.RoleKey {
		r.logger.Debug("忽略非提权调用方的角色参数",
			zap.String("user_id", caller.UserID),
			zap.String("requested", requestedRole),
			zap.String("own", *profile.RoleKey),
		)
	}
	return *profile.RoleKey, nil
}
