package biz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lk2023060901/minidrive-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrPermissionDenied  = errors.New("edit permission required")
	ErrNoContent         = errors.New("no content provided")
	ErrEmailRequired     = errors.New("email is required")
	ErrInvalidPermission = errors.New("permission must be 'view' or 'edit'")
	ErrFileTooLarge      = errors.New("file size exceeds limit")
)

// Permission granted by a share entry
type Permission string

const (
	PermissionView Permission = "view"
	PermissionEdit Permission = "edit"
)

// Valid reports whether the permission is a known value
func (p Permission) Valid() bool {
	return p == PermissionView || p == PermissionEdit
}

// ShareEntry grants one email access to a file. Emails are stored
// lowercased; at most one entry exists per email.
type ShareEntry struct {
	Email      string
	Permission Permission
}

// File is the central record: one uploaded file with its ownership and
// sharing metadata. Content bytes live in the blob store under StorageKey.
type File struct {
	ID          string
	StorageKey  string // changes only on binary replacement
	DisplayName string // original filename, immutable
	MediaType   string
	SizeBytes   int64
	OwnerID     string
	OwnerEmail  string // populated on shared/admin listings
	Shares      []ShareEntry
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FileRepo defines file record persistence
type FileRepo interface {
	Create(ctx context.Context, file *File) error
	// GetByID loads a record with its share entries, ErrFileNotFound if absent.
	GetByID(ctx context.Context, id string) (*File, error)
	// GetByIDAndOwner is the owner-scoped lookup: an ownership mismatch is
	// indistinguishable from a missing id (both return ErrFileNotFound).
	GetByIDAndOwner(ctx context.Context, id, ownerID string) (*File, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*File, error)
	ListSharedWith(ctx context.Context, email string) ([]*File, error)
	ListAll(ctx context.Context) ([]*File, error)
	// UpdateContentInfo persists storage key, media type and size together.
	UpdateContentInfo(ctx context.Context, id, storageKey, mediaType string, sizeBytes int64) error
	// UpsertShare atomically inserts or updates the entry keyed by email.
	UpsertShare(ctx context.Context, fileID, email string, permission Permission) error
	Delete(ctx context.Context, id string) error
}

// BlobStore is the key-addressed byte store holding file content
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// FileUseCase implements upload, listing, sharing, content replacement and
// deletion on top of the record store and the blob store.
type FileUseCase struct {
	repo     FileRepo
	blobs    BlobStore
	maxBytes int64
	logger   *logger.Logger
}

func NewFileUseCase(repo FileRepo, blobs BlobStore, maxBytes int64, log *logger.Logger) *FileUseCase {
	return &FileUseCase{
		repo:     repo,
		blobs:    blobs,
		maxBytes: maxBytes,
		logger:   log,
	}
}

// newStorageKey builds a unique blob key for a file's content
func newStorageKey(displayName string) string {
	return fmt.Sprintf("files/%s/%s", uuid.Must(uuid.NewV7()).String(), displayName)
}

// Upload stores the content and creates the record, owner = uploader.
// The blob is written first; if the record insert fails the orphaned blob
// is removed best-effort.
func (uc *FileUseCase) Upload(ctx context.Context, owner Identity, displayName, mediaType string, data []byte) (*File, error) {
	if displayName == "" || len(data) == 0 {
		return nil, ErrNoContent
	}
	if uc.maxBytes > 0 && int64(len(data)) > uc.maxBytes {
		return nil, ErrFileTooLarge
	}
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}

	key := newStorageKey(displayName)
	if err := uc.blobs.Put(ctx, key, data, mediaType); err != nil {
		return nil, fmt.Errorf("failed to store content: %w", err)
	}

	now := time.Now()
	file := &File{
		ID:          uuid.Must(uuid.NewV7()).String(),
		StorageKey:  key,
		DisplayName: displayName,
		MediaType:   mediaType,
		SizeBytes:   int64(len(data)),
		OwnerID:     owner.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, file); err != nil {
		if delErr := uc.blobs.Delete(ctx, key); delErr != nil {
			uc.logger.Warn("failed to remove orphaned blob",
				zap.String("storage_key", key), zap.Error(delErr))
		}
		return nil, err
	}

	return file, nil
}

// ListMine returns the caller's own files, most recent first
func (uc *FileUseCase) ListMine(ctx context.Context, requester Identity) ([]*File, error) {
	return uc.repo.ListByOwner(ctx, requester.ID)
}

// ListSharedWithMe returns files shared to the caller's email
func (uc *FileUseCase) ListSharedWithMe(ctx context.Context, requester Identity) ([]*File, error) {
	return uc.repo.ListSharedWith(ctx, requester.NormalizedEmail())
}

// Download returns a file record and its content. A requester outside the
// file's visibility gets ErrFileNotFound, never a permission error.
func (uc *FileUseCase) Download(ctx context.Context, requester Identity, id string) (*File, []byte, error) {
	file, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if !CanView(file, requester) {
		return nil, nil, ErrFileNotFound
	}

	data, err := uc.blobs.Get(ctx, file.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read content: %w", err)
	}

	return file, data, nil
}

// Share grants or updates access for an email. Owner only; the lookup is
// owner-scoped so a non-owner cannot learn whether the id exists. The
// upsert is idempotent and keyed by the lowercased email.
func (uc *FileUseCase) Share(ctx context.Context, owner Identity, fileID, email string, permission Permission) (*File, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	if permission == "" {
		permission = PermissionView
	}
	if !permission.Valid() {
		return nil, ErrInvalidPermission
	}

	file, err := uc.repo.GetByIDAndOwner(ctx, fileID, owner.ID)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.UpsertShare(ctx, file.ID, email, permission); err != nil {
		return nil, err
	}

	return uc.repo.GetByID(ctx, file.ID)
}

// ReplaceBinary swaps the stored blob for new content. The new blob is
// written under a fresh key before the record is updated, so a crash in
// between never leaves the record pointing at a missing blob; the old blob
// is then deleted best-effort.
func (uc *FileUseCase) ReplaceBinary(ctx context.Context, requester Identity, id, displayName, mediaType string, data []byte) (*File, error) {
	if len(data) == 0 {
		return nil, ErrNoContent
	}
	if uc.maxBytes > 0 && int64(len(data)) > uc.maxBytes {
		return nil, ErrFileTooLarge
	}

	file, err := uc.checkEdit(ctx, requester, id)
	if err != nil {
		return nil, err
	}

	if mediaType == "" {
		mediaType = file.MediaType
	}
	if displayName == "" {
		displayName = file.DisplayName
	}

	newKey := newStorageKey(displayName)
	if err := uc.blobs.Put(ctx, newKey, data, mediaType); err != nil {
		return nil, fmt.Errorf("failed to store content: %w", err)
	}

	if err := uc.repo.UpdateContentInfo(ctx, file.ID, newKey, mediaType, int64(len(data))); err != nil {
		if delErr := uc.blobs.Delete(ctx, newKey); delErr != nil {
			uc.logger.Warn("failed to remove orphaned blob",
				zap.String("storage_key", newKey), zap.Error(delErr))
		}
		return nil, err
	}

	oldKey := file.StorageKey
	if err := uc.blobs.Delete(ctx, oldKey); err != nil {
		uc.logger.Warn("failed to delete previous blob",
			zap.String("file_id", file.ID),
			zap.String("storage_key", oldKey),
			zap.Error(err))
	}

	return uc.repo.GetByID(ctx, file.ID)
}

// ReplaceText writes raw text content to the file's existing storage key;
// the filename does not change and the size is recomputed from byte length.
func (uc *FileUseCase) ReplaceText(ctx context.Context, requester Identity, id, content string) (*File, error) {
	file, err := uc.checkEdit(ctx, requester, id)
	if err != nil {
		return nil, err
	}

	data := []byte(content)
	if err := uc.blobs.Put(ctx, file.StorageKey, data, file.MediaType); err != nil {
		return nil, fmt.Errorf("failed to store content: %w", err)
	}

	if err := uc.repo.UpdateContentInfo(ctx, file.ID, file.StorageKey, file.MediaType, int64(len(data))); err != nil {
		return nil, err
	}

	return uc.repo.GetByID(ctx, file.ID)
}

// checkEdit locates the file and enforces the edit rule. A view-only
// sharer gets ErrPermissionDenied: the file was located via the sharing
// path, which already reveals existence to that email. Anyone outside the
// file's visibility gets ErrFileNotFound instead.
func (uc *FileUseCase) checkEdit(ctx context.Context, requester Identity, id string) (*File, error) {
	file, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanEdit(file, requester) {
		if CanView(file, requester) {
			return nil, ErrPermissionDenied
		}
		return nil, ErrFileNotFound
	}

	return file, nil
}

// Delete removes the caller's own file permanently. The lookup filters by
// id and owner together, so targeting someone else's file looks identical
// to a missing id.
func (uc *FileUseCase) Delete(ctx context.Context, owner Identity, id string) error {
	file, err := uc.repo.GetByIDAndOwner(ctx, id, owner.ID)
	if err != nil {
		return err
	}

	return uc.deleteRecord(ctx, file)
}

// AdminListAll returns every file with owner identity attached
func (uc *FileUseCase) AdminListAll(ctx context.Context) ([]*File, error) {
	return uc.repo.ListAll(ctx)
}

// AdminListByOwner returns all files owned by the given user
func (uc *FileUseCase) AdminListByOwner(ctx context.Context, ownerID string) ([]*File, error) {
	return uc.repo.ListByOwner(ctx, ownerID)
}

// AdminDelete removes any file unconditionally
func (uc *FileUseCase) AdminDelete(ctx context.Context, id string) error {
	file, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return uc.deleteRecord(ctx, file)
}

// PurgeOwner removes every file owned by a user. Used when an account is
// deleted.
func (uc *FileUseCase) PurgeOwner(ctx context.Context, ownerID string) error {
	files, err := uc.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return err
	}

	for _, file := range files {
		if err := uc.deleteRecord(ctx, file); err != nil {
			return err
		}
	}

	return nil
}

// deleteRecord removes the record first, then the blob best-effort.
// A blob delete failure only leaves a stranded object behind.
func (uc *FileUseCase) deleteRecord(ctx context.Context, file *File) error {
	if err := uc.repo.Delete(ctx, file.ID); err != nil {
		return err
	}

	if err := uc.blobs.Delete(ctx, file.StorageKey); err != nil {
		uc.logger.Warn("failed to delete blob for removed file",
			zap.String("file_id", file.ID),
			zap.String("storage_key", file.StorageKey),
			zap.Error(err))
	}

	return nil
}
