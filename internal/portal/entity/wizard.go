package entity

import (
	"time"
)

// WizardStep 建机向导步骤，显式状态机
const (
	WizardStepSelectTemplate = "select_template"
	WizardStepEditSerials    = "edit_serials"
	WizardStepAcknowledge    = "acknowledge"
	WizardStepDone           = "done"
)

// WizardSession 建机向导会话。
// 订单引用了不存在的设备序列号时由门禁创建，挂起的目标状态
// 记在 PendingStatus，向导确认后由服务端续上状态切换。
type WizardSession struct {
	OrderID       string    `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	SerialNumber  string    `json:"serial_number"`
	PendingStatus string    `json:"pending_status"`
	Step          string    `json:"step"`
	TemplateID    string    `json:"template_id,omitempty"`
	SeapodID      string    `json:"seapod_id,omitempty"`
	StartedAt     time.Time `json:"started_at"`
}

// CanCancel 终态之外都可取消
func (s *WizardSession) CanCancel() bool {
	return s.Step != WizardStepDone
}
