package database

import (
	"docdot_backend/internal/badge"
	"docdot_backend/internal/config"
	"docdot_backend/internal/model"
	"docdot_backend/internal/question"
	applog "docdot_backend/pkg/logger"
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the Supabase Postgres database.
func InitDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database url is not configured")
	}

	level := logger.Warn
	if debug {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	applog.Log.Info("Database connection established")
	return db, nil
}

// Migrate creates or updates every table and seeds the badge catalog and the
// question bank into empty tables.
func Migrate(db *gorm.DB, questionsFile string) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.UserStat{},
		&model.CategoryStat{},
		&model.DailyStat{},
		&model.QuizAttempt{},
		&model.Badge{},
		&model.UserBadge{},
		&model.Notification{},
		&model.AISession{},
		&model.AIChat{},
		&model.Lecture{},
		&model.LectureProcessingLog{},
		&model.Question{},
	)
	if err != nil {
		return err
	}
	applog.Log.Info("Database migration completed")

	seeded, err := SeedBadges(db)
	if err != nil {
		return err
	}
	if seeded > 0 {
		applog.Log.Info("Seeded badge catalog", zap.Int("count", seeded))
	}

	seeded, err = SeedQuestions(db, questionsFile)
	if errors.Is(err, fs.ErrNotExist) {
		applog.Log.Warn("Question bank file not found, questions table left empty", zap.String("file", questionsFile))
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed questions: %w", err)
	}
	if seeded > 0 {
		applog.Log.Info("Seeded question bank", zap.Int("count", seeded), zap.String("file", questionsFile))
	}
	return nil
}

// SeedBadges inserts the default catalog into an empty badges table.
func SeedBadges(db *gorm.DB) (int, error) {
	var count int64
	if err := db.Model(&model.Badge{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	catalog := badge.DefaultCatalog()
	if err := db.Create(&catalog).Error; err != nil {
		return 0, err
	}
	return len(catalog), nil
}

// SeedQuestions loads the bank file into an empty questions table.
func SeedQuestions(db *gorm.DB, path string) (int, error) {
	var count int64
	if err := db.Model(&model.Question{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 || path == "" {
		return 0, nil
	}

	questions, err := question.LoadFile(path)
	if err != nil {
		return 0, err
	}
	if len(questions) == 0 {
		return 0, nil
	}
	if err := db.CreateInBatches(&questions, 200).Error; err != nil {
		return 0, err
	}
	return len(questions), nil
}
