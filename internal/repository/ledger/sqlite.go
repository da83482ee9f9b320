package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jgivc/assignfetch/internal/entity"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const tableName = "ledger_entries"

type ledgerRecord struct {
	RollNumber int       `gorm:"primaryKey;autoIncrement:false"`
	Downloads  int64     `gorm:"not null;default:0"`
	File       string    `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

func (ledgerRecord) TableName() string {
	return tableName
}

type sqliteRepository struct {
	db  *gorm.DB
	log *slog.Logger
}

// OpenSQLite opens (or creates) the ledger database at dsn.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot open sqlite %s: %w", dsn, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("cannot get sql db: %w", err)
	}

	// One writer at a time; sqlite would answer "database is locked" otherwise.
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

func NewSQLiteRepository(db *gorm.DB, log *slog.Logger) (*sqliteRepository, error) {
	if err := db.AutoMigrate(&ledgerRecord{}); err != nil {
		return nil, fmt.Errorf("cannot migrate ledger table: %w", err)
	}

	return &sqliteRepository{
		db:  db,
		log: log.With(slog.String("item", "SQLiteLedger")),
	}, nil
}

func (r *sqliteRepository) Increment(ctx context.Context, roll entity.RollNumber, file string) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		rec := &ledgerRecord{
			RollNumber: int(roll),
			Downloads:  1,
			File:       file,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "roll_number"}},
			DoUpdates: clause.Assignments(map[string]any{
				"downloads":  gorm.Expr(tableName + ".downloads + 1"),
				"updated_at": now,
			}),
		}).Create(rec).Error
		if err != nil {
			return err
		}

		var stored ledgerRecord
		if err := tx.First(&stored, "roll_number = ?", int(roll)).Error; err != nil {
			return err
		}

		count = stored.Downloads

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("cannot increment roll %s counter: %w", roll, err)
	}

	return count, nil
}

func (r *sqliteRepository) List(ctx context.Context) ([]*entity.LedgerEntry, error) {
	var records []ledgerRecord
	if err := r.db.WithContext(ctx).Where("downloads > 0").Order("roll_number").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("cannot get ledger: %w", err)
	}

	entries := make([]*entity.LedgerEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, &entity.LedgerEntry{
			RollNumber: entity.RollNumber(rec.RollNumber),
			Count:      rec.Downloads,
			File:       rec.File,
		})
	}

	return entries, nil
}
