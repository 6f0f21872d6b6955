// Package policy holds the pure access and visibility rules of the portal.
// Every function is stateless and deterministic given the actor and the
// document set; mutation paths must re-evaluate CanManage at call time
// rather than infer permission from an earlier visibility computation.
package policy

import "github.com/campusdocs/admp-api/internal/models"

// VisibleDocuments returns the subset of docs the actor may see.
// PRINCIPAL and ADMIN see everything, an HOD sees their department, and
// STAFF see only their own uploads.
func VisibleDocuments(actor models.User, docs []models.Document) []models.Document {
	switch actor.Role {
	case models.RolePrincipal, models.RoleAdmin:
		out := make([]models.Document, len(docs))
		copy(out, docs)
		return out
	case models.RoleHOD:
		out := make([]models.Document, 0, len(docs))
		for _, d := range docs {
			if d.Department == actor.Department {
				out = append(out, d)
			}
		}
		return out
	case models.RoleStaff:
		out := make([]models.Document, 0, len(docs))
		for _, d := range docs {
			if d.UploadedBy == actor.ID {
				out = append(out, d)
			}
		}
		return out
	default:
		return []models.Document{}
	}
}

// CanManage authorizes update and delete of a specific document: admins
// always, HODs within their own department, and any actor for documents
// they uploaded themselves.
func CanManage(actor models.User, doc models.Document) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	if actor.Role == models.RoleHOD && doc.Department == actor.Department {
		return true
	}
	return doc.UploadedBy == actor.ID
}

// CanUpload reports whether the actor may create new documents. PRINCIPAL
// and ADMIN are read/manage-only for uploads; this is a deliberate product
// rule, not an oversight.
func CanUpload(actor models.User) bool {
	switch actor.Role {
	case models.RoleStaff, models.RoleHOD:
		return true
	case models.RolePrincipal, models.RoleAdmin:
		return false
	default:
		return false
	}
}

// VisibleDepartments returns the departments the actor may browse in the
// folder view: all of them for ADMIN and PRINCIPAL, otherwise only the
// actor's own.
func VisibleDepartments(actor models.User) []models.Department {
	switch actor.Role {
	case models.RolePrincipal, models.RoleAdmin:
		out := make([]models.Department, len(models.Departments))
		copy(out, models.Departments)
		return out
	case models.RoleStaff, models.RoleHOD:
		return []models.Department{actor.Department}
	default:
		return []models.Department{}
	}
}

// PinnedDepartment resolves the effective department filter for an actor.
// STAFF and HOD are locked to their own department; ADMIN and PRINCIPAL may
// select freely, including the "All" sentinel.
func PinnedDepartment(actor models.User, requested string) string {
	switch actor.Role {
	case models.RolePrincipal, models.RoleAdmin:
		return requested
	default:
		return string(actor.Department)
	}
}
