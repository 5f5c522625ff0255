package service

import (
	"context"
	"errors"

	"github.com/bitfantasy/seapod-portal/internal/portal/entity"
	"github.com/bitfantasy/seapod-portal/internal/portal/repository"
	"go.uber.org/zap"
)

// ProfileService 用户档案与角色管理。
// 登录发 token 不在本服务范围，这里只维护档案行和角色。
type ProfileService struct {
	profiles *repository.ProfileRepository
	logger   *zap.Logger
}

// NewProfileService 创建档案服务
func NewProfileService(profiles *repository.ProfileRepository, logger *zap.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, logger: logger}
}

// Get 按用户 id 取档案；不存在时返回 vendor 默认档案，不落库
func (s *ProfileService) Get(ctx context.Context, userID, email string) (*entity.Profile, error) {
	p, err := s.profiles.GetByID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return &entity.Profile{ID: userID, Email: email, Role: entity.RoleVendor}, nil
}

// List 全部档案，admin 专用
func (s *ProfileService) List(ctx context.Context) ([]entity.Profile, error) {
	return s.profiles.List(ctx)
}

// SetRole 改角色，admin 专用
func (s *ProfileService) SetRole(ctx context.Context, actorRole, userID, email, role string) (*entity.Profile, error) {
	if !entity.IsAdmin(actorRole) {
		return nil, ErrForbidden
	}
	switch role {
	case entity.RoleAdmin, entity.RoleOperation, entity.RoleVendor:
	default:
		return nil, validationf("unknown role %q", role)
	}

	p, err := s.profiles.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		p = &entity.Profile{ID: userID, Email: email}
	} else if err != nil {
		return nil, err
	}
	p.Role = role
	if email != "" {
		p.Email = email
	}
	if err := s.profiles.Upsert(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("profile role updated",
		zap.String("user_id", userID),
		zap.String("role", role),
	)
	return p, nil
}
