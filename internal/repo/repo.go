package repo

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"ReWear/internal/model"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Ошибки условных обновлений: запись есть, но её состояние уже не то, что ожидалось.
var (
	ErrVersionConflict = errors.New("version conflict")
	ErrItemTaken       = errors.New("item is no longer available")
	ErrBalanceTooLow   = errors.New("balance too low")
	ErrSwapChanged     = errors.New("swap status changed")
)

// checkID: id из URL, не похожий на uuid, считается несуществующей записью.
// Postgres на такой ввод в uuid-колонку отвечает ошибкой синтаксиса, а не пустым результатом.
func checkID(id string) error {
	if len(id) != 36 {
		return gorm.ErrRecordNotFound
	}
	if _, err := uuid.Parse(id); err != nil {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// newGormLogger — предупреждения и ошибки SQL. Промах First (ErrRecordNotFound) — обычный
// ответ на поиск по email или id, его не пишем.
func newGormLogger(w io.Writer) logger.Interface {
	return logger.New(log.New(w, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// InitDB открывает БД по DSN и выполняет миграции.
// postgres://… и DSN вида "host=…" уходят в postgres, всё остальное считается путём к SQLite.
func InitDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("empty database DSN")
	}
	cfg := &gorm.Config{
		Logger:  newGormLogger(os.Stdout),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	var (
		db  *gorm.DB
		err error
	)
	if isPostgresDSN(dsn) {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
	} else {
		db, err = gorm.Open(gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}, cfg)
		if err == nil {
			// SQLite допускает одного писателя; один коннект сериализует транзакции
			sqlDB, dbErr := db.DB()
			if dbErr != nil {
				return nil, dbErr
			}
			sqlDB.SetMaxOpenConns(1)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate создаёт/обновляет таблицы всех моделей.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Item{},
		&model.SwapRecord{},
		&model.LedgerEntry{},
		&model.Image{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// Repositories — набор репозиториев поверх одного подключения.
type Repositories struct {
	Users    UserRepository
	Items    ItemRepository
	Swaps    SwapRepository
	Ledger   LedgerRepository
	Exchange ExchangeRepository
	Images   ImageRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(db),
		Items:    NewItemRepository(db),
		Swaps:    NewSwapRepository(db),
		Ledger:   NewLedgerRepository(db),
		Exchange: NewExchangeRepository(db),
		Images:   NewImageRepository(db),
	}
}
