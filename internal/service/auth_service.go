package service

import (
	"context"
	"fmt"
	"strings"

	"task-go/internal/config"
	"task-go/internal/dto"
	"task-go/internal/models"
	"task-go/internal/repository"
	"task-go/internal/utils"

	"github.com/sirupsen/logrus"
)

// LoginLimiter 登录失败计数
type LoginLimiter interface {
	Allowed(ctx context.Context, key string) (bool, error)
	Hit(ctx context.Context, key string) (int, error)
	Reset(ctx context.Context, key string) error
}

// MinPasswordLength 密码最短长度
const MinPasswordLength = 6

// AuthService 认证服务
type AuthService struct {
	store      *repository.Store
	jwtManager *utils.JWTManager
	limiter    LoginLimiter
	logger     logrus.FieldLogger
	now        Clock
}

// NewAuthService 创建认证服务，limiter 可以为 nil
func NewAuthService(store *repository.Store, jwtManager *utils.JWTManager, limiter LoginLimiter, logger logrus.FieldLogger, now Clock) *AuthService {
	if logger == nil {
		logger = discardLogger()
	}
	if now == nil {
		now = SystemClock
	}
	return &AuthService{
		store:      store,
		jwtManager: jwtManager,
		limiter:    limiter,
		logger:     logger,
		now:        now,
	}
}

// Register 用户注册
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if len(req.Password) < MinPasswordLength {
		return nil, utils.NewValidationError("password must be at least %d characters", MinPasswordLength)
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Settings:     models.DefaultSettings(),
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := utils.ValidateStruct(user); err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		exists, err := tx.Users.ExistsByUsernameOrEmail(ctx, username, email)
		if err != nil {
			return fmt.Errorf("check user existence: %w", err)
		}
		if exists {
			return utils.NewUniquenessError("username or email already exists")
		}

		if err := tx.Users.Create(ctx, user); err != nil {
			if repository.IsDuplicate(err) {
				return utils.NewUniquenessError("username or email already exists")
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.issue(user)
}

// Login 用户登录，email 或 username 均可作为标识
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	identifier := strings.TrimSpace(req.Identifier())
	if identifier == "" || req.Password == "" {
		return nil, utils.NewAuthError("email or username and password are required")
	}
	if strings.Contains(identifier, "@") {
		identifier = strings.ToLower(identifier)
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allowed(ctx, identifier)
		if err != nil {
			s.logger.WithError(err).Warn("login limiter unavailable")
		} else if !allowed {
			return nil, utils.NewTooManyRequestsError("too many failed login attempts, try again later")
		}
	}

	user, err := s.store.Users.GetByIdentifier(ctx, identifier)
	if err != nil && !repository.IsNotFound(err) {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil || utils.CheckPassword(req.Password, user.PasswordHash) != nil {
		s.recordFailure(ctx, identifier)
		return nil, utils.NewAuthError("invalid credentials")
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, identifier); err != nil {
			s.logger.WithError(err).Warn("reset login limiter")
		}
	}

	return s.issue(user)
}

func (s *AuthService) recordFailure(ctx context.Context, identifier string) {
	if s.limiter == nil {
		return
	}
	n, err := s.limiter.Hit(ctx, identifier)
	if err != nil {
		s.logger.WithError(err).Warn("record failed login")
		return
	}
	s.logger.WithFields(logrus.Fields{"identifier": identifier, "failures": n}).Info("failed login")
}

func (s *AuthService) issue(user *models.User) (*dto.LoginResponse, error) {
	token, err := s.jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &dto.LoginResponse{
		User:        *user,
		AccessToken: token,
		TokenType:   "bearer",
	}, nil
}

// ResolveAdmin 能力检查：标识必须解析为 role=admin 的用户
func (s *AuthService) ResolveAdmin(ctx context.Context, identifier string) (*models.User, error) {
	if identifier == "" {
		return nil, utils.NewAuthError("admin identifier required")
	}

	user, err := s.store.Users.GetByID(ctx, identifier)
	if repository.IsNotFound(err) {
		return nil, utils.NewAuthError("unknown admin identifier")
	}
	if err != nil {
		return nil, fmt.Errorf("load admin: %w", err)
	}

	if !user.IsAdmin() {
		return nil, utils.NewAuthorizationError("admin privileges required")
	}
	return user, nil
}

// InitAdmin 初始化管理员账户
func (s *AuthService) InitAdmin(ctx context.Context, cfg *config.AdminConfig) error {
	if cfg.Password == "" {
		return nil
	}

	// 检查是否已有管理员
	admin, err := s.store.Users.GetAdmin(ctx)
	if err == nil && admin != nil {
		return nil
	}
	if err != nil && !repository.IsNotFound(err) {
		return fmt.Errorf("look up admin: %w", err)
	}

	passwordHash := cfg.Password
	if !utils.IsBcryptHash(passwordHash) {
		hashed, err := utils.HashPassword(cfg.Password)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		passwordHash = hashed
	}

	now := s.now()
	user := &models.User{
		Username:     cfg.Username,
		Email:        strings.ToLower(cfg.Email),
		PasswordHash: passwordHash,
		Settings:     models.DefaultSettings(),
		Role:         models.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Users.Create(ctx, user); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	s.logger.WithField("username", user.Username).Info("bootstrap admin created")
	return nil
}
