package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPrivilege 非提权调用方尝试修改模板；在访问存储之前拒绝
var ErrPrivilege = errors.New("需要提权身份才能执行该操作")

// ── 校验失败 ──

// RecordReason 单条记录（或单个参数）的拒绝原因
// Index 为提交数组中的下标，请求级参数错误时为 -1
type RecordReason struct {
	Index   int    `json:"index"`
	FieldID string `json:"field_id,omitempty"`
	Reason  string `json:"reason"`
}

// ValidationError 请求或记录不合法，携带逐条原因
type ValidationError struct {
	Reasons []RecordReason
}

// NewValidation 创建请求级校验错误
func NewValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reasons: []RecordReason{{Index: -1, Reason: fmt.Sprintf(format, args...)}}}
}

// Add 追加一条记录级原因
func (e *ValidationError) Add(index int, fieldID, reason string) {
	e.Reasons = append(e.Reasons, RecordReason{Index: index, FieldID: fieldID, Reason: reason})
}

// HasReasons 是否存在任何拒绝原因
func (e *ValidationError) HasReasons() bool {
	return len(e.Reasons) > 0
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Reasons))
	for _, r := range e.Reasons {
		if r.Index >= 0 {
			parts = append(parts, fmt.Sprintf("#%d: %s", r.Index, r.Reason))
		} else {
			parts = append(parts, r.Reason)
		}
	}
	return "校验失败: " + strings.Join(parts, "; ")
}

// IsValidation 判断错误链中是否含有 ValidationError
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// ── 存储失败 ──

// StoreError 底层存储调用失败；本服务不重试，由传输层决定重试策略
type StoreError struct {
	Op  string
	Err error
}

// Store 包装存储错误，nil 原样返回
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("存储操作 %s 失败: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Retryable 存储失败视为可重试
func (e *StoreError) Retryable() bool { return true }

// IsStore 判断错误链中是否含有 StoreError
func IsStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
