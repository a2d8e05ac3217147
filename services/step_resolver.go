package services

import (
	"fmt"

	"gorm.io/gorm"

	"forms-management-api/models"
)

// ResolveStepApprovers maps one step of a template's approval chain to the
// user ids that must approve it: the active members of the step's role.
// An empty result is a hard error; the engine never skips a step silently.
func ResolveStepApprovers(db *gorm.DB, template *models.FormTemplate, step int) ([]int, error) {
	if step < 0 || step >= len(template.ApprovalChain) {
		return nil, fmt.Errorf("step %d out of range for template %d: %w", step, template.TemplateID, ErrNotFound)
	}
	roleID := template.ApprovalChain[step]

	var approverIDs []int
	err := db.Model(&models.User{}).
		Joins("JOIN user_roles ON user_roles.user_id = users.user_id").
		Where("user_roles.role_id = ? AND users.is_active = ? AND users.delete_at IS NULL", roleID, true).
		Order("users.user_id").
		Pluck("users.user_id", &approverIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve approvers for role %d: %w", roleID, err)
	}

	if len(approverIDs) == 0 {
		return nil, fmt.Errorf("role %d at step %d: %w", roleID, step, ErrNoApproversConfigured)
	}
	return approverIDs, nil
}
