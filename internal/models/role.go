package models

type RoleName string

const (
	RoleCandidate     RoleName = "CANDIDATE"
	RoleCompany       RoleName = "COMPANY"
	RoleHiringManager RoleName = "HIRING_MANAGER"
	RoleSuperAdmin    RoleName = "SUPER_ADMIN"
)

// AllRoleNames is the closed set of roles, in seeding order.
var AllRoleNames = []RoleName{
	RoleCandidate,
	RoleCompany,
	RoleHiringManager,
	RoleSuperAdmin,
}

type Role struct {
	ID   uint     `gorm:"primaryKey" json:"id"`
	Name RoleName `gorm:"size:32;uniqueIndex;not null" json:"name"`
}
