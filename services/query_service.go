package services

import (
	"fmt"

	"gorm.io/gorm"

	"forms-management-api/models"
)

// QueryService provides the read-only projections consumed by the UI:
// pending-for-me, approval history and aggregate statistics. It never
// mutates state.
type QueryService struct {
	db *gorm.DB
}

func NewQueryService(db *gorm.DB) *QueryService {
	return &QueryService{db: db}
}

// PendingApproval is one form waiting for a given approver.
type PendingApproval struct {
	Form         models.Form         `json:"form"`
	TemplateName string              `json:"template_name"`
	ApprovalInfo models.FormApproval `json:"approval_info"`
}

// PendingApprovalsFor lists the open forms whose current step holds a
// pending approval slot for the user, newest first.
func (s *QueryService) PendingApprovalsFor(userID int) ([]PendingApproval, error) {
	var approvals []models.FormApproval
	err := s.db.
		Joins("JOIN forms ON forms.form_id = form_approvals.form_id").
		Where("form_approvals.approver_id = ? AND form_approvals.action IS NULL", userID).
		Where("form_approvals.step_number = forms.current_step").
		Where("forms.status = ?", models.FormStatusPending).
		Order("forms.create_at DESC").
		Find(&approvals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load pending approvals: %w", err)
	}

	return s.joinForms(approvals)
}

// ApprovalHistoryFor lists the user's past decisions, newest first.
func (s *QueryService) ApprovalHistoryFor(userID int) ([]PendingApproval, error) {
	var approvals []models.FormApproval
	err := s.db.
		Where("approver_id = ? AND action IS NOT NULL", userID).
		Order("action_date DESC").
		Limit(50).
		Find(&approvals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load approval history: %w", err)
	}

	return s.joinForms(approvals)
}

func (s *QueryService) joinForms(approvals []models.FormApproval) ([]PendingApproval, error) {
	result := make([]PendingApproval, 0, len(approvals))
	for _, approval := range approvals {
		var form models.Form
		if err := s.db.Preload("Template").Where("form_id = ?", approval.FormID).First(&form).Error; err != nil {
			return nil, fmt.Errorf("failed to load form %d: %w", approval.FormID, err)
		}
		templateName := ""
		if form.Template != nil {
			templateName = form.Template.NameHebrew
		}
		result = append(result, PendingApproval{
			Form:         form,
			TemplateName: templateName,
			ApprovalInfo: approval,
		})
	}
	return result, nil
}

// OverviewStatistics is the admin dashboard aggregate.
type OverviewStatistics struct {
	TotalUsers      int64            `json:"total_users"`
	ActiveUsers     int64            `json:"active_users"`
	TotalForms      int64            `json:"total_forms"`
	PendingForms    int64            `json:"pending_forms"`
	CompletedForms  int64            `json:"completed_forms"`
	RejectedForms   int64            `json:"rejected_forms"`
	TotalTemplates  int64            `json:"total_templates"`
	TotalRoles      int64            `json:"total_roles"`
	FormsByStatus   map[string]int64 `json:"forms_by_status"`
	FormsByTemplate map[string]int64 `json:"forms_by_template"`
	RecentForms     []models.Form    `json:"recent_forms"`
}

// Overview computes the full admin statistics by scanning the form store.
func (s *QueryService) Overview() (*OverviewStatistics, error) {
	stats := &OverviewStatistics{
		FormsByStatus:   make(map[string]int64),
		FormsByTemplate: make(map[string]int64),
	}

	if err := s.db.Model(&models.User{}).Where("delete_at IS NULL").Count(&stats.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if err := s.db.Model(&models.User{}).Where("is_active = ? AND delete_at IS NULL", true).Count(&stats.ActiveUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count active users: %w", err)
	}
	if err := s.db.Model(&models.FormTemplate{}).Where("is_active = ?", true).Count(&stats.TotalTemplates).Error; err != nil {
		return nil, fmt.Errorf("failed to count templates: %w", err)
	}
	if err := s.db.Model(&models.Role{}).Count(&stats.TotalRoles).Error; err != nil {
		return nil, fmt.Errorf("failed to count roles: %w", err)
	}

	statuses := []string{
		models.FormStatusPending,
		models.FormStatusAwaitingFinalApproval,
		models.FormStatusCompleted,
		models.FormStatusRejected,
	}
	for _, status := range statuses {
		var count int64
		if err := s.db.Model(&models.Form{}).Where("status = ?", status).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count forms by status: %w", err)
		}
		stats.FormsByStatus[status] = count
		stats.TotalForms += count
	}
	// Pending covers everything still in flight, awaiting_final included.
	stats.PendingForms = stats.FormsByStatus[models.FormStatusPending] +
		stats.FormsByStatus[models.FormStatusAwaitingFinalApproval]
	stats.CompletedForms = stats.FormsByStatus[models.FormStatusCompleted]
	stats.RejectedForms = stats.FormsByStatus[models.FormStatusRejected]

	var templates []models.FormTemplate
	if err := s.db.Where("is_active = ?", true).Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	for _, template := range templates {
		var count int64
		if err := s.db.Model(&models.Form{}).Where("template_id = ?", template.TemplateID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count forms by template: %w", err)
		}
		stats.FormsByTemplate[template.NameHebrew] = count
	}

	if err := s.db.Preload("Template").Order("create_at DESC").Limit(5).Find(&stats.RecentForms).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent forms: %w", err)
	}

	return stats, nil
}

// UserStatistics is the limited view for non-admin users.
type UserStatistics struct {
	MyForms      int64 `json:"my_forms"`
	PendingForMe int64 `json:"pending_for_me"`
}

// UserStats counts the user's own forms and their open approval slots.
func (s *QueryService) UserStats(userID int) (*UserStatistics, error) {
	stats := &UserStatistics{}

	if err := s.db.Model(&models.Form{}).Where("initiator_id = ?", userID).Count(&stats.MyForms).Error; err != nil {
		return nil, fmt.Errorf("failed to count user forms: %w", err)
	}
	err := s.db.Model(&models.FormApproval{}).
		Joins("JOIN forms ON forms.form_id = form_approvals.form_id").
		Where("form_approvals.approver_id = ? AND form_approvals.action IS NULL", userID).
		Where("form_approvals.step_number = forms.current_step").
		Where("forms.status = ?", models.FormStatusPending).
		Count(&stats.PendingForMe).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count pending approvals: %w", err)
	}

	return stats, nil
}
