package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"gradebook/internal/dto"
	"gradebook/internal/identity"
	"gradebook/internal/model"
	"gradebook/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context) (*dto.UserResponse, error)
	Logout(ctx context.Context) error
}

type authService struct {
	directory *identity.Directory
	identity  identity.Provider
	jwtMgr    *jwt.Manager
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	directory *identity.Directory,
	provider identity.Provider,
	jwtMgr *jwt.Manager,
	logger *zap.Logger,
) AuthService {
	return &authService{
		directory: directory,
		identity:  provider,
		jwtMgr:    jwtMgr,
		logger:    logger,
	}
}

func (s *authService) Login(_ context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 校验账号密码 (bcrypt)
	user, err := s.directory.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("校验账号失败", zap.Error(err))
		return nil, err
	}

	// 2. 签发 Access Token
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户登录成功", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))

	return &dto.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:        toUserResponse(user),
	}, nil
}

func (s *authService) GetCurrentUser(ctx context.Context) (*dto.UserResponse, error) {
	user := s.identity.GetCurrentUser(ctx)
	if user == nil {
		return nil, ErrUnauthenticated
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *authService) Logout(ctx context.Context) error {
	if s.identity.GetCurrentUser(ctx) == nil {
		return ErrUnauthenticated
	}
	return s.identity.Logout(ctx)
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
}
