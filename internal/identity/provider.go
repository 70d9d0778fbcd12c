package identity

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"gradebook/internal/model"
)

type ctxKey struct{}

// Session 单个请求携带的登录会话
type Session struct {
	User      model.User
	TokenID   string
	ExpiresAt time.Time
}

// WithSession 将会话注入上下文
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// SessionFromContext 取出会话
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}

// Provider 身份提供方
type Provider interface {
	// GetCurrentUser 返回当前用户，未登录时返回 nil
	GetCurrentUser(ctx context.Context) *model.User
	// Logout 使当前会话失效
	Logout(ctx context.Context) error
}

// TokenBlacklist Token 黑名单（由 Redis 实现）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// LogoutHook 登出后回调，参数为用户 ID
type LogoutHook func(userID string)

// SessionProvider 基于上下文会话的 Provider 实现
type SessionProvider struct {
	blacklist TokenBlacklist
	logger    *zap.Logger
	now       func() time.Time

	mu    sync.RWMutex
	hooks []LogoutHook
}

// NewSessionProvider blacklist 为 nil 时登出不会使 Token 失效（降级运行）
func NewSessionProvider(blacklist TokenBlacklist, logger *zap.Logger) *SessionProvider {
	return &SessionProvider{blacklist: blacklist, logger: logger, now: time.Now}
}

// OnLogout 注册登出回调
func (p *SessionProvider) OnLogout(hook LogoutHook) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hooks = append(p.hooks, hook)
}

func (p *SessionProvider) GetCurrentUser(ctx context.Context) *model.User {
	s, ok := SessionFromContext(ctx)
	if !ok {
		return nil
	}
	u := s.User
	return &u
}

func (p *SessionProvider) Logout(ctx context.Context) error {
	s, ok := SessionFromContext(ctx)
	if !ok {
		return nil
	}

	if p.blacklist != nil && s.TokenID != "" {
		if err := p.blacklist.BlacklistToken(ctx, s.TokenID, s.ExpiresAt.Sub(p.now())); err != nil {
			p.logger.Error("Token 加入黑名单失败", zap.String("user_id", s.User.ID), zap.Error(err))
			return err
		}
	}

	p.mu.RLock()
	hooks := append([]LogoutHook(nil), p.hooks...)
	p.mu.RUnlock()
	for _, h := range hooks {
		h(s.User.ID)
	}

	p.logger.Info("用户已登出", zap.String("user_id", s.User.ID))
	return nil
}

// IsRevoked 检查 Token 是否已登出；黑名单不可用时视为未登出
func (p *SessionProvider) IsRevoked(ctx context.Context, jti string) bool {
	if p.blacklist == nil || jti == "" {
		return false
	}
	revoked, err := p.blacklist.IsBlacklisted(ctx, jti)
	if err != nil {
		p.logger.Warn("查询 Token 黑名单失败，降级放行", zap.Error(err))
		return false
	}
	return revoked
}
