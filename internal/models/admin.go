package models

import "time"

// Admin roles
const (
	RoleMainAdmin = "main_admin"
	RoleSubAdmin  = "sub_admin"
)

// Admin represents a panel account. The main admin can manage other
// accounts; sub-admins are scoped by the two access flags.
type Admin struct {
	ID                 string
	UserID             string // login name, unique
	PasswordHash       string
	Role               string // "main_admin" or "sub_admin"
	NotificationAccess bool
	PhotoAccess        bool
	CreatedBy          *string // admin ID of the creator, nil for bootstrap accounts
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Capabilities is the immutable authorization context computed once after
// authentication and passed down through the request context. Handlers gate
// on these flags, never on raw token claims.
type Capabilities struct {
	ManageAdmins        bool
	ManageNotifications bool
	ManagePhotos        bool
}

// Capabilities derives the capability set from the admin's role and access
// flags. The main admin holds every capability regardless of flags.
func (a *Admin) Capabilities() Capabilities {
	if a.Role == RoleMainAdmin {
		return Capabilities{
			ManageAdmins:        true,
			ManageNotifications: true,
			ManagePhotos:        true,
		}
	}
	return Capabilities{
		ManageNotifications: a.NotificationAccess,
		ManagePhotos:        a.PhotoAccess,
	}
}
