package models

import "time"

// UserRole represents the available roles for the access policy.
type UserRole string

const (
	RoleStaff     UserRole = "STAFF"
	RoleHOD       UserRole = "HOD"
	RolePrincipal UserRole = "PRINCIPAL"
	RoleAdmin     UserRole = "ADMIN"
)

// Valid reports whether the role is one of the closed set.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStaff, RoleHOD, RolePrincipal, RoleAdmin:
		return true
	}
	return false
}

// Department identifies an academic department.
type Department string

const (
	DeptCSE   Department = "CSE"
	DeptECE   Department = "ECE"
	DeptMech  Department = "MECH"
	DeptCivil Department = "CIVIL"
	DeptEEE   Department = "EEE"
)

// Departments lists every department in display order.
var Departments = []Department{DeptCSE, DeptECE, DeptMech, DeptCivil, DeptEEE}

// Valid reports whether the department is known.
func (d Department) Valid() bool {
	for _, known := range Departments {
		if d == known {
			return true
		}
	}
	return false
}

// User represents a portal account. Email is the login key; the collection
// carries no uniqueness constraint, so lookups take the first match.
type User struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        UserRole   `json:"role"`
	Department  Department `json:"department"`
	CreatedDate time.Time  `json:"createdDate"`
}
