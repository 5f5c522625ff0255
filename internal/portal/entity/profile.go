package entity

import (
	"time"
)

// Role 角色
const (
	RoleAdmin     = "admin"
	RoleOperation = "operation"
	RoleVendor    = "vendor"
)

// CanShip admin 和 operation 可以确认发货、解锁订单
func CanShip(role string) bool {
	return role == RoleAdmin || role == RoleOperation
}

// IsAdmin 仅 admin 可维护主数据、查看价格
func IsAdmin(role string) bool {
	return role == RoleAdmin
}

// Profile 用户资料，登录态由 JWT 提供，这里只存角色等档案信息
type Profile struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Email     string    `json:"email" gorm:"size:128;not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"size:128"`
	Role      string    `json:"role" gorm:"size:20;not null;default:vendor"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "user_profiles"
}
