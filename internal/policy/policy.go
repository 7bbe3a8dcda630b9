// Package policy decides who may manage a job and, through the job, its applications.
package policy

import "jobboard-backend/internal/models"

// CanManage is true when actor posted the job or is a super admin.
// Company or hiring manager membership alone grants nothing.
func CanManage(actor *models.User, job *models.Job) bool {
	if actor == nil || job == nil {
		return false
	}
	if job.PostedByID != 0 && job.PostedByID == actor.ID {
		return true
	}
	return actor.HasRole(models.RoleSuperAdmin)
}
