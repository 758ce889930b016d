package identity

import (
	"slices"
	"time"
)

type Role string

const (
	RoleEmployee   Role = "employee"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

var Roles = []Role{RoleEmployee, RoleManager, RoleAdmin, RoleSuperAdmin}

func (r Role) Valid() bool {
	return slices.Contains(Roles, r)
}

// Rank orders roles for privilege comparisons; unknown roles rank below employee.
func (r Role) Rank() int {
	return slices.Index(Roles, r)
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type Actor struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	Role               Role      `json:"role"`
	DepartmentID       string    `json:"departmentId"`
	ManagedDepartments []string  `json:"managedDepartments"`
	ManagedBy          string    `json:"managedBy,omitempty"`
	Active             bool      `json:"active"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (a Actor) Manages(departmentID string) bool {
	return departmentID != "" && slices.Contains(a.ManagedDepartments, departmentID)
}

func (a Actor) FullName() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	default:
		return a.FirstName + " " + a.LastName
	}
}

type Department struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	HeadID      string    `json:"headId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Claims is the subset of verified token claims needed to resolve an actor.
type Claims struct {
	UserID string
	Role   string
}

type Credentials struct {
	ActorID      string
	PasswordHash string
}

type ActorFilter struct {
	Role         Role
	DepartmentID string
	ManagedBy    string
	ActiveOnly   bool
}
