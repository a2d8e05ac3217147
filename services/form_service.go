package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"forms-management-api/models"
	"forms-management-api/utils"
)

// FormService handles form submission and retrieval. The approval
// lifecycle after submission belongs to the ApprovalEngine.
type FormService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewFormService(db *gorm.DB, notifier *NotificationService) *FormService {
	return &FormService{db: db, notifier: notifier}
}

// CreateFormInput carries a submission request. Either TemplateID or
// FormType selects the template.
type CreateFormInput struct {
	TemplateID int
	FormType   string
	FormData   map[string]interface{}
}

// CreateForm validates the submission against the template's field
// configuration and creates the form at step 0 together with the
// approval rows for the first step's approvers, in one transaction.
func (s *FormService) CreateForm(initiatorID int, input CreateFormInput) (*models.Form, error) {
	template, err := s.resolveTemplate(input)
	if err != nil {
		return nil, err
	}
	if len(template.ApprovalChain) == 0 {
		return nil, NewValidationError("approval_chain", "template has no approval chain configured")
	}

	if ok, msg := utils.ValidateFormData(template.FieldsConfig, input.FormData); !ok {
		return nil, NewValidationError("form_data", msg)
	}

	now := time.Now()
	form := models.Form{
		FormNumber:  uuid.NewString(),
		TemplateID:  template.TemplateID,
		InitiatorID: initiatorID,
		FormData:    input.FormData,
		Status:      models.FormStatusPending,
		CurrentStep: 0,
		CreateAt:    now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&form).Error; err != nil {
			return fmt.Errorf("failed to create form: %w", err)
		}

		approverIDs, err := ResolveStepApprovers(tx, template, 0)
		if err != nil {
			return err
		}
		for _, approverID := range approverIDs {
			row := models.FormApproval{
				FormID:     form.FormID,
				StepNumber: 0,
				ApproverID: approverID,
				CreateAt:   now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to create approval for user %d: %w", approverID, err)
			}
		}

		if err := recordStatusChange(tx, form.FormID, "", models.FormStatusPending, initiatorID, "form submitted"); err != nil {
			return err
		}

		form.Template = template
		s.notifier.NotifyApproversAssigned(tx, &form, approverIDs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &form, nil
}

func (s *FormService) resolveTemplate(input CreateFormInput) (*models.FormTemplate, error) {
	var template models.FormTemplate
	var err error

	switch {
	case input.TemplateID != 0:
		err = s.db.Where("template_id = ? AND is_active = ?", input.TemplateID, true).First(&template).Error
	case strings.TrimSpace(input.FormType) != "":
		err = s.db.Where("form_type = ? AND is_active = ?", input.FormType, true).First(&template).Error
	default:
		return nil, NewValidationError("template_id", "either template_id or template_type must be provided")
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("form template: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	return &template, nil
}

// ListFormsFilter narrows the form listing.
type ListFormsFilter struct {
	Status       string
	MyFormsOnly  bool
	PendingForMe bool
}

// ListForms returns the forms visible to the user: admins see everything,
// regular users see their own forms and forms they were asked to approve.
func (s *FormService) ListForms(userID int, isAdmin bool, filter ListFormsFilter) ([]models.Form, error) {
	query := s.db.Model(&models.Form{}).Preload("Template")

	switch {
	case filter.MyFormsOnly:
		query = query.Where("initiator_id = ?", userID)
	case filter.PendingForMe:
		query = query.
			Joins("JOIN form_approvals ON form_approvals.form_id = forms.form_id").
			Where("form_approvals.approver_id = ? AND form_approvals.action IS NULL AND form_approvals.step_number = forms.current_step", userID).
			Where("forms.status = ?", models.FormStatusPending)
	case !isAdmin:
		query = query.Where(
			"initiator_id = ? OR forms.form_id IN (?)",
			userID,
			s.db.Model(&models.FormApproval{}).Select("form_id").Where("approver_id = ?", userID),
		)
	}

	if filter.Status != "" {
		query = query.Where("forms.status = ?", filter.Status)
	}

	var forms []models.Form
	if err := query.Order("forms.create_at DESC").Find(&forms).Error; err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	return forms, nil
}

// FormDetails is the full read model of one form.
type FormDetails struct {
	Form      models.Form           `json:"form"`
	Template  models.FormTemplate   `json:"template"`
	Approvals []models.FormApproval `json:"approvals"`
}

// GetForm returns one form with its template and approval rows. Access is
// limited to admins, the initiator, and anyone holding an approval row.
func (s *FormService) GetForm(formID, userID int, isAdmin bool) (*FormDetails, error) {
	var form models.Form
	if err := loadForm(s.db, formID, &form); err != nil {
		return nil, err
	}

	if !isAdmin && form.InitiatorID != userID {
		var assigned int64
		if err := s.db.Model(&models.FormApproval{}).
			Where("form_id = ? AND approver_id = ?", formID, userID).
			Count(&assigned).Error; err != nil {
			return nil, fmt.Errorf("failed to check form access: %w", err)
		}
		if assigned == 0 {
			return nil, ErrForbidden
		}
	}

	var approvals []models.FormApproval
	if err := s.db.Preload("Approver").
		Where("form_id = ?", formID).
		Order("step_number, approval_id").
		Find(&approvals).Error; err != nil {
		return nil, fmt.Errorf("failed to load approvals: %w", err)
	}

	return &FormDetails{Form: form, Template: *form.Template, Approvals: approvals}, nil
}

// ApprovalsByStep groups a form's approval rows by step for the chain
// viewer.
func (s *FormService) ApprovalsByStep(formID int) (*models.Form, map[int][]models.FormApproval, error) {
	var form models.Form
	if err := loadForm(s.db, formID, &form); err != nil {
		return nil, nil, err
	}

	var approvals []models.FormApproval
	if err := s.db.Preload("Approver").
		Where("form_id = ?", formID).
		Order("step_number, approval_id").
		Find(&approvals).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load approvals: %w", err)
	}

	byStep := make(map[int][]models.FormApproval)
	for _, approval := range approvals {
		byStep[approval.StepNumber] = append(byStep[approval.StepNumber], approval)
	}
	return &form, byStep, nil
}
