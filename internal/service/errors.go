package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ── 通用业务错误 ──

var (
	ErrRoleUnresolved  = errors.New("无法确定作用角色")
	ErrSectionNotFound = errors.New("分组不存在")
	ErrFieldNotFound   = errors.New("字段不存在")
	ErrMemberNotFound  = errors.New("成员不存在")
)

// parseID 将外部传入的标识规范化为存储主键格式
// 主键列为 uuid 类型，非 UUID 的标识不可能命中记录，不应交给数据库报语法错误
func parseID(id string) (string, bool) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", false
	}
	return u.String(), true
}
