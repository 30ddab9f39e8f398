package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"ReWear/internal/model"
	"ReWear/internal/notify"
	"ReWear/internal/repo"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLen = 6

// UserService — регистрация, вход и профиль пользователя.
type UserService struct {
	repo         repo.UserRepository
	notifier     notify.Notifier
	logger       *zap.SugaredLogger
	welcomeBonus int64

	// dispatch запускает фоновые задачи (письма); в тестах подменяется синхронным вызовом.
	dispatch func(func())
}

func NewUserService(r repo.UserRepository, n notify.Notifier, logger *zap.SugaredLogger, welcomeBonus int64) *UserService {
	return &UserService{
		repo:         r,
		notifier:     n,
		logger:       logger,
		welcomeBonus: welcomeBonus,
		dispatch:     func(f func()) { go f() },
	}
}

// Register создаёт пользователя со стартовым бонусом и отправляет приветственное письмо.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, invalid("name", "is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("email", "is not a valid address")
	}
	if len(password) < minPasswordLen {
		return nil, invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}

	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, &model.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Points:       s.welcomeBonus,
		Role:         model.RoleUser,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.sendWelcome(ctx, user)
	return user, nil
}

// sendWelcome — best effort: ошибка отправки только логируется.
func (s *UserService) sendWelcome(ctx context.Context, u *model.User) {
	if s.notifier == nil {
		return
	}
	m := notify.WelcomeMail{Name: u.Name, Email: u.Email, Points: u.Points}
	bg := context.WithoutCancel(ctx)
	s.dispatch(func() {
		sendCtx, cancel := context.WithTimeout(bg, 15*time.Second)
		defer cancel()
		if !s.notifier.SendWelcome(sendCtx, m) {
			s.logger.Warnw("welcome email not sent", "user_id", u.ID)
		}
	})
}

// Login проверяет email и пароль.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr("get user", err)
	}
	return u, nil
}

// Promote выдаёт пользователю роль администратора. Только для администраторов.
func (s *UserService) Promote(ctx context.Context, actorID, userID string) (*model.User, error) {
	if _, err := requireAdmin(ctx, s.repo, actorID); err != nil {
		return nil, err
	}
	if err := s.repo.SetRole(ctx, userID, model.RoleAdmin); err != nil {
		return nil, mapRepoErr("promote", err)
	}
	s.logger.Infow("user promoted", "user_id", userID, "by", actorID)
	return s.Get(ctx, userID)
}

// AdjustPoints — ручная корректировка баланса администратором; ниже нуля не опускает.
func (s *UserService) AdjustPoints(ctx context.Context, actorID, userID string, delta int64, note string) (int64, error) {
	if _, err := requireAdmin(ctx, s.repo, actorID); err != nil {
		return 0, err
	}
	if delta == 0 {
		return 0, invalid("delta", "must not be zero")
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return 0, mapRepoErr("adjust points", err)
	}
	if u.Points+delta < 0 {
		return 0, shortfall(-delta, u.Points)
	}

	balance, err := s.repo.AdjustPoints(ctx, userID, delta, model.LedgerAdminAdjust, strings.TrimSpace(note))
	if err != nil {
		if errors.Is(err, repo.ErrBalanceTooLow) {
			return 0, ErrInsufficientPoints
		}
		return 0, mapRepoErr("adjust points", err)
	}
	s.logger.Infow("points adjusted", "user_id", userID, "delta", delta, "balance", balance, "by", actorID)
	return balance, nil
}

// EnsureAdmin создаёт первого администратора при старте или повышает существующего пользователя.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := s.repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		if existing.IsAdmin() {
			return existing, nil
		}
		if err := s.repo.SetRole(ctx, existing.ID, model.RoleAdmin); err != nil {
			return nil, fmt.Errorf("promote admin: %w", err)
		}
		existing.Role = model.RoleAdmin
		return existing, nil
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("lookup admin: %w", err)
	}

	if len(password) < minPasswordLen {
		return nil, invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}
	if strings.TrimSpace(name) == "" {
		name = "Admin"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateUser(ctx, &model.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	})
}

// requireAdmin загружает действующего пользователя и проверяет роль до любых других чтений.
func requireAdmin(ctx context.Context, users repo.UserRepository, actorID string) (*model.User, error) {
	if actorID == "" {
		return nil, ErrUnauthorized
	}
	actor, err := users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccessDenied
		}
		return nil, fmt.Errorf("load actor: %w", err)
	}
	if !actor.IsAdmin() {
		return nil, ErrAccessDenied
	}
	return actor, nil
}
