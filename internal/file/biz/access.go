package biz

import (
	"strings"

	"github.com/lk2023060901/minidrive-backend/internal/auth"
)

// Identity is the authenticated requester, supplied by the JWT middleware
// and trusted verbatim.
type Identity struct {
	ID    string
	Email string
	Role  string
}

// IsAdmin reports whether the identity carries the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == auth.RoleAdmin
}

// NormalizedEmail returns the identity's email lowercased for share matching
func (i Identity) NormalizedEmail() string {
	return strings.ToLower(i.Email)
}

// ShareFor returns the share entry matching the given email, or nil.
// Share emails are stored lowercased; the input is normalized before
// comparison so matching is case-insensitive.
func (f *File) ShareFor(email string) *ShareEntry {
	normalized := strings.ToLower(email)
	for i := range f.Shares {
		if f.Shares[i].Email == normalized {
			return &f.Shares[i]
		}
	}
	return nil
}

// IsOwner reports whether the identity owns the file
func (f *File) IsOwner(id Identity) bool {
	return f.OwnerID == id.ID
}

// CanView decides view/download access: owner, any sharer, or admin.
func CanView(f *File, id Identity) bool {
	if f.IsOwner(id) || id.IsAdmin() {
		return true
	}
	return f.ShareFor(id.Email) != nil
}

// CanEdit decides content-replacement access: owner, admin, or a sharer
// holding edit permission.
func CanEdit(f *File, id Identity) bool {
	if f.IsOwner(id) || id.IsAdmin() {
		return true
	}
	share := f.ShareFor(id.Email)
	return share != nil && share.Permission == PermissionEdit
}

// CanShare decides who may grant access: the owner only. Sharing is not
// delegable to sharers or admins.
func CanShare(f *File, id Identity) bool {
	return f.IsOwner(id)
}

// CanDelete decides owner-path deletion. Admin deletion is a separate
// unconditional route and never consults this.
func CanDelete(f *File, id Identity) bool {
	return f.IsOwner(id)
}
