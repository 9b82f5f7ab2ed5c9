package database

import (
	"fmt"
	"log"

	"epic_quiz_client/internal/config"
	"epic_quiz_client/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 连接主数据服务（MySQL）
func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Primary data service connection established")

	err = db.AutoMigrate(
		&model.Epic{},
		&model.Question{},
		&model.DeepDive{},
		&model.QuizSubmission{},
		&model.QuizSubmissionAnswer{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// InitCacheDB 打开本地离线缓存（嵌入式 sqlite，纯 Go 驱动）
func InitCacheDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&model.CachedPackage{},
		&model.CachedEpicList{},
		&model.SyncMeta{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
