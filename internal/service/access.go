package service

import "github.com/KIIZA-TREVOUR/mybiotutor/internal/models"

// canManageContent reports whether the caller may mutate content owned by
// ownerID. Admin roles manage any content; everyone else only their own.
func canManageContent(ownerID, callerID uint, callerRole string) bool {
	if callerID != 0 && callerID == ownerID {
		return true
	}
	return callerRole == models.RoleSuperAdmin || callerRole == models.RoleSchoolAdmin
}
