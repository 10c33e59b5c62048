package repository

import (
	"context"
	"time"

	"savelog/internal/domain"

	"gorm.io/gorm"
)

type LogRepository struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) *LogRepository {
	return &LogRepository{db: db}
}

type logModel struct {
	ID        int64      `gorm:"column:id;primaryKey"`
	OwnerID   *int64     `gorm:"column:owner_id"`
	Filename  string     `gorm:"column:filename"`
	Content   string     `gorm:"column:content"`
	Private   bool       `gorm:"column:private"`
	ExpireAt  *time.Time `gorm:"column:expire_at"`
	CreatedAt time.Time  `gorm:"column:created_at"`
}

func (logModel) TableName() string { return "logs" }

func toDomainLog(m logModel) *domain.Log {
	return &domain.Log{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Filename:  m.Filename,
		Content:   m.Content,
		Private:   m.Private,
		ExpireAt:  m.ExpireAt,
		CreatedAt: m.CreatedAt,
	}
}

func toLogModel(l *domain.Log) logModel {
	return logModel{
		ID:        l.ID,
		OwnerID:   l.OwnerID,
		Filename:  l.Filename,
		Content:   l.Content,
		Private:   l.Private,
		ExpireAt:  l.ExpireAt,
		CreatedAt: l.CreatedAt,
	}
}

func (r *LogRepository) Create(ctx context.Context, l *domain.Log) error {
	m := toLogModel(l)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*l = *toDomainLog(m)
	return nil
}

// GetByFilename returns the oldest record carrying the filename. Duplicate
// filenames are a permitted degenerate state; later records shadow earlier
// ones on disk but the first record by creation order stays authoritative here.
func (r *LogRepository) GetByFilename(ctx context.Context, filename string) (*domain.Log, error) {
	var m logModel
	tx := r.db.WithContext(ctx).Where("filename = ?", filename).Order("id ASC").First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainLog(m), nil
}

// GetByIDForOwner returns the record only when ownerID owns it. Absence and
// ownership mismatch are indistinguishable to the caller.
func (r *LogRepository) GetByIDForOwner(ctx context.Context, id, ownerID int64) (*domain.Log, error) {
	var m logModel
	tx := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainLog(m), nil
}

func (r *LogRepository) ListPublic(ctx context.Context) ([]*domain.Log, error) {
	var models []logModel
	tx := r.db.WithContext(ctx).Where("private = ?", false).Order("id ASC").Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}
	logs := make([]*domain.Log, 0, len(models))
	for _, m := range models {
		logs = append(logs, toDomainLog(m))
	}
	return logs, nil
}

func (r *LogRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Log, error) {
	var models []logModel
	tx := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id ASC").Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}
	logs := make([]*domain.Log, 0, len(models))
	for _, m := range models {
		logs = append(logs, toDomainLog(m))
	}
	return logs, nil
}

// ListExpired returns every record whose deadline has passed.
func (r *LogRepository) ListExpired(ctx context.Context, now time.Time) ([]*domain.Log, error) {
	var models []logModel
	tx := r.db.WithContext(ctx).Where("expire_at IS NOT NULL AND expire_at < ?", now).Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}
	logs := make([]*domain.Log, 0, len(models))
	for _, m := range models {
		logs = append(logs, toDomainLog(m))
	}
	return logs, nil
}

func (r *LogRepository) ListAll(ctx context.Context) ([]*domain.Log, error) {
	var models []logModel
	tx := r.db.WithContext(ctx).Order("id ASC").Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}
	logs := make([]*domain.Log, 0, len(models))
	for _, m := range models {
		logs = append(logs, toDomainLog(m))
	}
	return logs, nil
}

// DeleteByID removes the record and reports whether a row was actually
// deleted, so a concurrent second delete observes false instead of
// double-counting.
func (r *LogRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&logModel{}, id)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *LogRepository) DeleteByOwner(ctx context.Context, ownerID int64) (int64, error) {
	tx := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&logModel{})
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}
