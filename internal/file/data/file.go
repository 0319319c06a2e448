package data

import (
	"context"
	"errors"
	"time"

	"github.com/lk2023060901/minidrive-backend/internal/file/biz"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FilePO represents the file record database model
type FilePO struct {
	ID          string    `gorm:"type:uuid;primarykey"`
	StorageKey  string    `gorm:"column:storage_key;size:500;not null;uniqueIndex:idx_files_storage_key"`
	DisplayName string    `gorm:"size:255;not null"`
	MediaType   string    `gorm:"size:100;not null"`
	SizeBytes   int64     `gorm:"not null"`
	OwnerID     string    `gorm:"type:uuid;not null;index:idx_files_owner"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`

	Shares []FileSharePO `gorm:"foreignKey:FileID;constraint:OnDelete:CASCADE"`
}

func (FilePO) TableName() string {
	return "files"
}

// FileSharePO is one share grant. The composite primary key (file_id,
// email) is the unique constraint the upsert relies on; emails are stored
// lowercased.
type FileSharePO struct {
	FileID     string    `gorm:"type:uuid;primaryKey"`
	Email      string    `gorm:"size:255;primaryKey"`
	Permission string    `gorm:"size:10;not null;default:'view'"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (FileSharePO) TableName() string {
	return "file_shares"
}

// FileRepo implements biz.FileRepo
type FileRepo struct {
	db *gorm.DB
}

func NewFileRepo(db *gorm.DB) biz.FileRepo {
	return &FileRepo{db: db}
}

func (r *FileRepo) Create(ctx context.Context, file *biz.File) error {
	po := &FilePO{
		ID:          file.ID,
		StorageKey:  file.StorageKey,
		DisplayName: file.DisplayName,
		MediaType:   file.MediaType,
		SizeBytes:   file.SizeBytes,
		OwnerID:     file.OwnerID,
		CreatedAt:   file.CreatedAt,
		UpdatedAt:   file.UpdatedAt,
	}

	return r.db.WithContext(ctx).Create(po).Error
}

func (r *FileRepo) GetByID(ctx context.Context, id string) (*biz.File, error) {
	var po FilePO
	err := r.db.WithContext(ctx).Preload("Shares").Where("id = ?", id).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrFileNotFound
		}
		return nil, err
	}

	return r.toFile(&po, ""), nil
}

func (r *FileRepo) GetByIDAndOwner(ctx context.Context, id, ownerID string) (*biz.File, error) {
	var po FilePO
	err := r.db.WithContext(ctx).Preload("Shares").
		Where("id = ? AND owner_id = ?", id, ownerID).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrFileNotFound
		}
		return nil, err
	}

	return r.toFile(&po, ""), nil
}

func (r *FileRepo) ListByOwner(ctx context.Context, ownerID string) ([]*biz.File, error) {
	var pos []FilePO
	err := r.db.WithContext(ctx).Preload("Shares").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}

	return r.toFiles(ctx, pos, false)
}

func (r *FileRepo) ListSharedWith(ctx context.Context, email string) ([]*biz.File, error) {
	var pos []FilePO
	err := r.db.WithContext(ctx).Preload("Shares").
		Joins("JOIN file_shares ON file_shares.file_id = files.id AND file_shares.email = ?", email).
		Order("files.created_at DESC").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}

	return r.toFiles(ctx, pos, true)
}

func (r *FileRepo) ListAll(ctx context.Context) ([]*biz.File, error) {
	var pos []FilePO
	err := r.db.WithContext(ctx).Preload("Shares").
		Order("created_at DESC").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}

	return r.toFiles(ctx, pos, true)
}

// UpdateContentInfo writes storage key, media type and size in a single
// statement so the three fields stay mutually consistent.
func (r *FileRepo) UpdateContentInfo(ctx context.Context, id, storageKey, mediaType string, sizeBytes int64) error {
	result := r.db.WithContext(ctx).Model(&FilePO{}).Where("id = ?", id).Updates(map[string]interface{}{
		"storage_key": storageKey,
		"media_type":  mediaType,
		"size_bytes":  sizeBytes,
		"updated_at":  time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return biz.ErrFileNotFound
	}
	return nil
}

// UpsertShare inserts or updates the grant in one atomic statement, so
// concurrent shares of the same file never lose each other's writes.
func (r *FileRepo) UpsertShare(ctx context.Context, fileID, email string, permission biz.Permission) error {
	now := time.Now()
	po := &FileSharePO{
		FileID:     fileID,
		Email:      email,
		Permission: string(permission),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "file_id"}, {Name: "email"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"permission": string(permission),
			"updated_at": now,
		}),
	}).Create(po).Error
}

func (r *FileRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("file_id = ?", id).Delete(&FileSharePO{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&FilePO{}).Error
	})
}

// toFiles converts records, optionally resolving owner emails for the
// shared and admin listings.
func (r *FileRepo) toFiles(ctx context.Context, pos []FilePO, withOwner bool) ([]*biz.File, error) {
	emails := map[string]string{}
	if withOwner && len(pos) > 0 {
		ownerIDs := make([]string, 0, len(pos))
		seen := map[string]bool{}
		for _, po := range pos {
			if !seen[po.OwnerID] {
				seen[po.OwnerID] = true
				ownerIDs = append(ownerIDs, po.OwnerID)
			}
		}

		var owners []struct {
			ID    string
			Email string
		}
		if err := r.db.WithContext(ctx).Table("users").
			Select("id, email").
			Where("id IN ?", ownerIDs).
			Find(&owners).Error; err != nil {
			return nil, err
		}
		for _, o := range owners {
			emails[o.ID] = o.Email
		}
	}

	files := make([]*biz.File, len(pos))
	for i, po := range pos {
		files[i] = r.toFile(&po, emails[po.OwnerID])
	}

	return files, nil
}

func (r *FileRepo) toFile(po *FilePO, ownerEmail string) *biz.File {
	shares := make([]biz.ShareEntry, len(po.Shares))
	for i, s := range po.Shares {
		shares[i] = biz.ShareEntry{
			Email:      s.Email,
			Permission: biz.Permission(s.Permission),
		}
	}

	return &biz.File{
		ID:          po.ID,
		StorageKey:  po.StorageKey,
		DisplayName: po.DisplayName,
		MediaType:   po.MediaType,
		SizeBytes:   po.SizeBytes,
		OwnerID:     po.OwnerID,
		OwnerEmail:  ownerEmail,
		Shares:      shares,
		CreatedAt:   po.CreatedAt,
		UpdatedAt:   po.UpdatedAt,
	}
}
