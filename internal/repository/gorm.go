package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"prizewheel/internal/models"
)

// PrizeRecord is the prizes table row.
type PrizeRecord struct {
	ID          uint      `gorm:"primaryKey"`
	Position    int       `gorm:"index;not null"`
	Name        string    `gorm:"size:128;not null;index"`
	Probability float64   `gorm:"not null;default:0"`
	UsageLimit  int       `gorm:"not null;default:0"`
	Used        int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (PrizeRecord) TableName() string {
	return "prizes"
}

// Open connects to Postgres.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// Migrate creates or updates the prizes table.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("db connection is nil")
	}
	if err := conn.AutoMigrate(&PrizeRecord{}); err != nil {
		return err
	}
	logger.Info("database migration complete")
	return nil
}

// GormStore is a PrizeStore backed by a SQL database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(conn *gorm.DB) *GormStore {
	return &GormStore{db: conn}
}

// SeedIfEmpty writes prizes only when the table has no rows yet.
func (s *GormStore) SeedIfEmpty(ctx context.Context, prizes []models.Prize) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&PrizeRecord{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count prizes: %w", err)
	}
	if count > 0 {
		return nil
	}
	return s.ReplaceAll(ctx, prizes)
}

func (s *GormStore) List(ctx context.Context) ([]models.Prize, error) {
	return listPrizes(s.db.WithContext(ctx))
}

func (s *GormStore) ReplaceAll(ctx context.Context, prizes []models.Prize) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replaceAll(tx, prizes)
	})
}

// Delete removes the named prize and rebalances the rest in one transaction,
// so a failure leaves the table as it was.
func (s *GormStore) Delete(ctx context.Context, name string, rebalance func([]models.Prize) []models.Prize) (int, error) {
	removed := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("name = ?", name).Delete(&PrizeRecord{})
		if res.Error != nil {
			return fmt.Errorf("delete prize: %w", res.Error)
		}
		removed = int(res.RowsAffected)
		if removed == 0 || rebalance == nil {
			return nil
		}
		rest, err := listPrizes(tx)
		if err != nil {
			return err
		}
		return replaceAll(tx, rebalance(rest))
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func listPrizes(tx *gorm.DB) ([]models.Prize, error) {
	var records []PrizeRecord
	if err := tx.Order("position asc").Order("id asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list prizes: %w", err)
	}
	prizes := make([]models.Prize, 0, len(records))
	for _, r := range records {
		prizes = append(prizes, models.Prize{
			Name:        r.Name,
			Probability: r.Probability,
			UsageLimit:  r.UsageLimit,
			Used:        r.Used,
		})
	}
	return prizes, nil
}

func replaceAll(tx *gorm.DB, prizes []models.Prize) error {
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&PrizeRecord{}).Error; err != nil {
		return fmt.Errorf("clear prizes: %w", err)
	}
	if len(prizes) == 0 {
		return nil
	}
	records := make([]PrizeRecord, 0, len(prizes))
	for i, p := range prizes {
		records = append(records, PrizeRecord{
			Position:    i,
			Name:        p.Name,
			Probability: p.Probability,
			UsageLimit:  p.UsageLimit,
			Used:        p.Used,
		})
	}
	if err := tx.Create(&records).Error; err != nil {
		return fmt.Errorf("insert prizes: %w", err)
	}
	return nil
}

func (s *GormStore) RecordWin(ctx context.Context, name string) error {
	res := s.db.WithContext(ctx).Model(&PrizeRecord{}).
		Where("name = ?", name).
		UpdateColumn("used", gorm.Expr("used + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("record win: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPrizeNotFound
	}
	return nil
}
