package service

import (
	"errors"
	"fmt"
)

// 错误分类见 handler 的映射：校验错误 400、权限 403、冲突 409。
var (
	// ErrLocked 订单已发货锁定，当前角色不可再改
	ErrLocked = errors.New("order is locked")
	// ErrForbidden 角色不满足操作要求
	ErrForbidden = errors.New("operation not permitted for role")
)

// ValidationError 输入校验失败，不改任何状态，用户修正后可重试
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation 判断是否校验错误
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ConflictError 设备已被其他在途订单占用。
// 解除方式是清掉本订单行项目的序列号（ResolveSeapodConflict），换一台设备。
type ConflictError struct {
	SerialNumber  string
	AssignedOrder string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("seapod %s is already assigned to order #%s", e.SerialNumber, e.AssignedOrder)
}

// IsConflict 判断是否占用冲突
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
