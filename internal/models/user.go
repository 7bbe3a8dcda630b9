package models

import "time"

type User struct {
	ID           uint   `gorm:"primaryKey"`
	FullName     string `gorm:"size:100;not null"`
	Email        string `gorm:"size:100;uniqueIndex;not null"`
	Phone        string `gorm:"size:50"`
	PasswordHash string `gorm:"size:255;not null"`
	Enabled      bool   `gorm:"not null;default:true"`
	Roles        []Role `gorm:"many2many:user_roles;"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports whether the role is in the user's loaded role set.
func (u *User) HasRole(name RoleName) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// RoleNames returns the names of the loaded roles.
func (u *User) RoleNames() []RoleName {
	out := make([]RoleName, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, r.Name)
	}
	return out
}
