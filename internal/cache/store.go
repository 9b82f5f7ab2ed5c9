package cache

import (
	"encoding/json"
	"errors"
	"time"

	"epic_quiz_client/internal/model"
	"epic_quiz_client/pkg/logger"
	"epic_quiz_client/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const lastSyncKey = "last_sync"

// Store 离线唯一可信数据源。任何底层 I/O 错误都降级为 miss，
// 缓存只是优化，绝不能成为正确性依赖。
type Store struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db, Now: time.Now}
}

// PutPackage 整包快照按史诗ID覆盖写入，写入时刻即时间戳
func (s *Store) PutPackage(epicID string, pkg *model.QuizPackage) {
	if s.DB == nil {
		return
	}
	payload, err := json.Marshal(pkg)
	if err != nil {
		logger.Log.Warn("cache: marshal package failed", zap.String("epic", epicID), zap.Error(err))
		return
	}
	row := model.CachedPackage{
		EpicID:   epicID,
		Payload:  payload,
		StoredAt: s.Now(),
	}
	err = s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "epic_id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		logger.Log.Warn("cache: put package failed", zap.String("epic", epicID), zap.Error(err))
		return
	}
	monitoring.CacheOps.WithLabelValues("put_package", "ok").Inc()
}

// GetPackage 只读本地，绝不远程拉取。不存在或出错都返回 nil。
func (s *Store) GetPackage(epicID string) *model.QuizPackage {
	if s.DB == nil {
		monitoring.CacheOps.WithLabelValues("get_package", "miss").Inc()
		return nil
	}
	var row model.CachedPackage
	err := s.DB.First(&row, "epic_id = ?", epicID).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Log.Warn("cache: get package failed", zap.String("epic", epicID), zap.Error(err))
		}
		monitoring.CacheOps.WithLabelValues("get_package", "miss").Inc()
		return nil
	}
	var pkg model.QuizPackage
	if err := json.Unmarshal(row.Payload, &pkg); err != nil {
		logger.Log.Warn("cache: corrupt package payload", zap.String("epic", epicID), zap.Error(err))
		monitoring.CacheOps.WithLabelValues("get_package", "miss").Inc()
		return nil
	}
	monitoring.CacheOps.WithLabelValues("get_package", "hit").Inc()
	return &pkg
}

// CacheEpics 整表替换语义：列表小且服务端权威，不做局部合并
func (s *Store) CacheEpics(epics []model.Epic) {
	if s.DB == nil {
		return
	}
	payload, err := json.Marshal(epics)
	if err != nil {
		logger.Log.Warn("cache: marshal epic list failed", zap.Error(err))
		return
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.CachedEpicList{}).Error; err != nil {
			return err
		}
		return tx.Create(&model.CachedEpicList{Payload: payload, StoredAt: s.Now()}).Error
	})
	if err != nil {
		logger.Log.Warn("cache: cache epics failed", zap.Error(err))
		return
	}
	monitoring.CacheOps.WithLabelValues("cache_epics", "ok").Inc()
}

func (s *Store) ListEpics() []model.Epic {
	if s.DB == nil {
		monitoring.CacheOps.WithLabelValues("list_epics", "miss").Inc()
		return nil
	}
	var row model.CachedEpicList
	err := s.DB.Order("stored_at desc").First(&row).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Log.Warn("cache: list epics failed", zap.Error(err))
		}
		monitoring.CacheOps.WithLabelValues("list_epics", "miss").Inc()
		return nil
	}
	var epics []model.Epic
	if err := json.Unmarshal(row.Payload, &epics); err != nil {
		logger.Log.Warn("cache: corrupt epic list payload", zap.Error(err))
		monitoring.CacheOps.WithLabelValues("list_epics", "miss").Inc()
		return nil
	}
	monitoring.CacheOps.WithLabelValues("list_epics", "hit").Inc()
	return epics
}

// UpdateLastSync 记录最近一次与任一后端成功同步的时刻
func (s *Store) UpdateLastSync() {
	if s.DB == nil {
		return
	}
	row := model.SyncMeta{
		Key:   lastSyncKey,
		Value: s.Now().UTC().Format(time.RFC3339),
	}
	err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		logger.Log.Warn("cache: update last sync failed", zap.Error(err))
	}
}

// LastSync 无记录时返回零值
func (s *Store) LastSync() time.Time {
	if s.DB == nil {
		return time.Time{}
	}
	var row model.SyncMeta
	if err := s.DB.First(&row, "`key` = ?", lastSyncKey).Error; err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, row.Value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// IsFresh 只看时间戳和墙钟，不检查内容
func (s *Store) IsFresh(maxAge time.Duration) bool {
	last := s.LastSync()
	if last.IsZero() {
		return false
	}
	return s.Now().Sub(last) <= maxAge
}

// RemovePackage 失效单个史诗的离线包（刷新时由调用方触发整包重下）
func (s *Store) RemovePackage(epicID string) {
	if s.DB == nil {
		return
	}
	if err := s.DB.Delete(&model.CachedPackage{}, "epic_id = ?", epicID).Error; err != nil {
		logger.Log.Warn("cache: remove package failed", zap.String("epic", epicID), zap.Error(err))
	}
}
