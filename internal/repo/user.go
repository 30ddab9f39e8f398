package repo

import (
	"context"
	"strings"
	"time"

	"ReWear/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository — доступ к профилям пользователей.
type UserRepository interface {
	// CreateUser создаёт пользователя. Если у него ненулевой стартовый баланс,
	// в той же транзакции пишется запись журнала welcome_bonus.
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)

	// GetUserByEmail ищет по email без учёта регистра; gorm.ErrRecordNotFound если нет.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	GetByID(ctx context.Context, id string) (*model.User, error)
	SetRole(ctx context.Context, id string, role model.Role) error

	// AdjustPoints меняет баланс на delta, не допуская ухода в минус (ErrBalanceTooLow).
	AdjustPoints(ctx context.Context, id string, delta int64, reason, note string) (int64, error)

	Count(ctx context.Context) (int64, error)
	ListAll(ctx context.Context) ([]model.User, error)
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository создаёт реализацию репозитория пользователей.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if user.Points == 0 {
			return nil
		}
		return tx.Create(&model.LedgerEntry{
			ID:           uuid.NewString(),
			UserID:       user.ID,
			Change:       user.Points,
			BalanceAfter: user.Points,
			Reason:       model.LedgerWelcomeBonus,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var u model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) SetRole(ctx context.Context, id string, role model.Role) error {
	if err := checkID(id); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"role": role, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepo) AdjustPoints(ctx context.Context, id string, delta int64, reason, note string) (int64, error) {
	if err := checkID(id); err != nil {
		return 0, err
	}
	var balance int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		balance, err = adjustBalance(tx, id, delta)
		if err != nil {
			return err
		}
		return tx.Create(&model.LedgerEntry{
			ID:           uuid.NewString(),
			UserID:       id,
			Change:       delta,
			BalanceAfter: balance,
			Reason:       reason,
			Note:         note,
		}).Error
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error
	return n, err
}

func (r *userRepo) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Order("created_at asc").Find(&users).Error
	return users, err
}

// adjustBalance — условное изменение баланса внутри транзакции; возвращает новый баланс.
func adjustBalance(tx *gorm.DB, userID string, delta int64) (int64, error) {
	res := tx.Model(&model.User{}).
		Where("id = ? AND points + ? >= 0", userID, delta).
		Updates(map[string]any{
			"points":     gorm.Expr("points + ?", delta),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := tx.Model(&model.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, gorm.ErrRecordNotFound
		}
		return 0, ErrBalanceTooLow
	}
	var u model.User
	if err := tx.Select("points").Where("id = ?", userID).First(&u).Error; err != nil {
		return 0, err
	}
	return u.Points, nil
}
