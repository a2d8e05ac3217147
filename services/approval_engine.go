package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"forms-management-api/models"
)

// ApprovalEngine drives a form through its template's approval chain.
//
// Every mutating operation runs as one transaction and is serialized per
// form id, so two approvers acting on the same form never interleave.
// Operations on different forms proceed in parallel.
type ApprovalEngine struct {
	db       *gorm.DB
	notifier *NotificationService
}

// formLocks is process-wide so every engine instance serializes against
// the same per-form mutex.
var formLocks sync.Map // form_id -> *sync.Mutex

func NewApprovalEngine(db *gorm.DB, notifier *NotificationService) *ApprovalEngine {
	return &ApprovalEngine{db: db, notifier: notifier}
}

func (e *ApprovalEngine) lockForm(formID int) func() {
	mu, _ := formLocks.LoadOrStore(formID, &sync.Mutex{})
	lock := mu.(*sync.Mutex)
	lock.Lock()
	return lock.Unlock
}

// Approve records the actor's approval at the form's current step. When
// the step's whole approver set (additional approvers included) has
// approved, the form either advances to the next step or, on the last
// step, moves to awaiting_final_approval for the initiator's sign-off.
func (e *ApprovalEngine) Approve(formID, actorID int, comments string) (*models.Form, error) {
	defer e.lockForm(formID)()

	var form models.Form
	err := e.db.Transaction(func(tx *gorm.DB) error {
		f, approval, err := loadActionableApproval(tx, formID, actorID)
		if err != nil {
			return err
		}
		form = *f

		now := time.Now()
		action := models.ApprovalActionApproved
		approval.Action = &action
		approval.ActionDate = &now
		if comments != "" {
			approval.Comments = &comments
		}
		if err := tx.Save(approval).Error; err != nil {
			return fmt.Errorf("failed to save approval: %w", err)
		}

		var pending int64
		if err := tx.Model(&models.FormApproval{}).
			Where("form_id = ? AND step_number = ? AND action IS NULL", formID, form.CurrentStep).
			Count(&pending).Error; err != nil {
			return fmt.Errorf("failed to count pending approvals: %w", err)
		}
		if pending > 0 {
			// Step not satisfied yet; other approvers are still outstanding.
			form.UpdateAt = &now
			return tx.Omit(clause.Associations).Save(&form).Error
		}

		return e.advanceStep(tx, &form, actorID, now)
	})
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// advanceStep runs after the current step's approver set is fully
// approved. The last step never completes the form directly: final
// sign-off stays with the initiator.
func (e *ApprovalEngine) advanceStep(tx *gorm.DB, form *models.Form, actorID int, now time.Time) error {
	chainLen := len(form.Template.ApprovalChain)

	if form.CurrentStep >= chainLen-1 {
		oldStatus := form.Status
		form.Status = models.FormStatusAwaitingFinalApproval
		form.UpdateAt = &now
		if err := tx.Omit(clause.Associations).Save(form).Error; err != nil {
			return fmt.Errorf("failed to update form status: %w", err)
		}
		if err := recordStatusChange(tx, form.FormID, oldStatus, form.Status, actorID, "all approval steps satisfied"); err != nil {
			return err
		}
		e.notifier.NotifyAwaitingFinalApproval(tx, form)
		return nil
	}

	form.CurrentStep++
	form.UpdateAt = &now
	if err := tx.Omit(clause.Associations).Save(form).Error; err != nil {
		return fmt.Errorf("failed to advance form step: %w", err)
	}

	approverIDs, err := ResolveStepApprovers(tx, form.Template, form.CurrentStep)
	if err != nil {
		return err
	}
	for _, approverID := range approverIDs {
		row := models.FormApproval{
			FormID:     form.FormID,
			StepNumber: form.CurrentStep,
			ApproverID: approverID,
			CreateAt:   now,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to create approval for user %d: %w", approverID, err)
		}
	}
	e.notifier.NotifyApproversAssigned(tx, form, approverIDs)
	return nil
}

// Reject records the actor's rejection. One veto is terminal: the form
// moves to rejected immediately and no later step executes.
func (e *ApprovalEngine) Reject(formID, actorID int, comments string) (*models.Form, error) {
	defer e.lockForm(formID)()

	var form models.Form
	err := e.db.Transaction(func(tx *gorm.DB) error {
		f, approval, err := loadActionableApproval(tx, formID, actorID)
		if err != nil {
			return err
		}
		form = *f

		now := time.Now()
		action := models.ApprovalActionRejected
		approval.Action = &action
		approval.ActionDate = &now
		if comments != "" {
			approval.Comments = &comments
		}
		if err := tx.Save(approval).Error; err != nil {
			return fmt.Errorf("failed to save approval: %w", err)
		}

		oldStatus := form.Status
		form.Status = models.FormStatusRejected
		form.CompletedAt = &now
		form.UpdateAt = &now
		if err := tx.Omit(clause.Associations).Save(&form).Error; err != nil {
			return fmt.Errorf("failed to update form status: %w", err)
		}
		if err := recordStatusChange(tx, form.FormID, oldStatus, form.Status, actorID, "rejected by approver"); err != nil {
			return err
		}
		e.notifier.NotifyFormRejected(tx, &form, actorID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// FinalApprove is the initiator's terminal sign-off on a form whose chain
// is fully satisfied.
func (e *ApprovalEngine) FinalApprove(formID, actorID int) (*models.Form, error) {
	defer e.lockForm(formID)()

	var form models.Form
	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := loadForm(tx, formID, &form); err != nil {
			return err
		}
		if form.IsTerminal() {
			return ErrFormClosed
		}
		if form.InitiatorID != actorID {
			return ErrForbidden
		}
		if form.Status != models.FormStatusAwaitingFinalApproval {
			return NewValidationError("status", "form is not awaiting final approval")
		}

		now := time.Now()
		oldStatus := form.Status
		form.Status = models.FormStatusCompleted
		form.CompletedAt = &now
		form.UpdateAt = &now
		if err := tx.Omit(clause.Associations).Save(&form).Error; err != nil {
			return fmt.Errorf("failed to complete form: %w", err)
		}
		if err := recordStatusChange(tx, form.FormID, oldStatus, form.Status, actorID, "final approval by initiator"); err != nil {
			return err
		}
		e.notifier.NotifyFormCompleted(tx, &form)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// AddApprover inserts an additional approver into the form's current
// step. The caller must itself hold a pending approval slot there; the
// new approver joins the step's must-approve set.
func (e *ApprovalEngine) AddApprover(formID, actorID, newApproverID int) (*models.Form, *models.FormApproval, error) {
	defer e.lockForm(formID)()

	var form models.Form
	var added models.FormApproval
	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := loadForm(tx, formID, &form); err != nil {
			return err
		}
		if form.IsTerminal() {
			return ErrFormClosed
		}

		var actorApproval models.FormApproval
		err := tx.Where("form_id = ? AND step_number = ? AND approver_id = ? AND action IS NULL",
			formID, form.CurrentStep, actorID).
			First(&actorApproval).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotCurrentApprover
		}
		if err != nil {
			return fmt.Errorf("failed to look up approval: %w", err)
		}

		var approver models.User
		err = tx.Where("user_id = ? AND is_active = ? AND delete_at IS NULL", newApproverID, true).
			First(&approver).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("approver %d: %w", newApproverID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to look up user: %w", err)
		}

		var existing int64
		if err := tx.Model(&models.FormApproval{}).
			Where("form_id = ? AND step_number = ? AND approver_id = ?", formID, form.CurrentStep, newApproverID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check existing approval: %w", err)
		}
		if existing > 0 {
			return NewValidationError("approver_id", "this approver is already assigned to the current step")
		}

		now := time.Now()
		added = models.FormApproval{
			FormID:       formID,
			StepNumber:   form.CurrentStep,
			ApproverID:   newApproverID,
			IsAdditional: true,
			AddedBy:      &actorID,
			CreateAt:     now,
		}
		if err := tx.Create(&added).Error; err != nil {
			return fmt.Errorf("failed to create additional approval: %w", err)
		}
		e.notifier.NotifyApproversAssigned(tx, &form, []int{newApproverID})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &form, &added, nil
}

// loadForm fetches a form with its template, mapping missing rows onto
// the engine error taxonomy.
func loadForm(tx *gorm.DB, formID int, form *models.Form) error {
	err := tx.Preload("Template").Where("form_id = ?", formID).First(form).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("form %d: %w", formID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to load form %d: %w", formID, err)
	}
	return nil
}

// loadActionableApproval checks the shared approve/reject precondition:
// an open form and a pending slot for the actor at the current step.
func loadActionableApproval(tx *gorm.DB, formID, actorID int) (*models.Form, *models.FormApproval, error) {
	var form models.Form
	if err := loadForm(tx, formID, &form); err != nil {
		return nil, nil, err
	}
	if form.IsTerminal() {
		return nil, nil, ErrFormClosed
	}

	var approval models.FormApproval
	err := tx.Where("form_id = ? AND step_number = ? AND approver_id = ?",
		formID, form.CurrentStep, actorID).
		First(&approval).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNotCurrentApprover
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up approval: %w", err)
	}
	if !approval.IsPending() {
		return nil, nil, ErrAlreadyActioned
	}
	return &form, &approval, nil
}

func recordStatusChange(tx *gorm.DB, formID int, oldStatus, newStatus string, changedBy int, reason string) error {
	entry := models.FormStatusHistory{
		FormID:    formID,
		NewStatus: newStatus,
		ChangedBy: changedBy,
		Reason:    &reason,
		CreatedAt: time.Now(),
	}
	if oldStatus != "" {
		entry.OldStatus = &oldStatus
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record status change: %w", err)
	}
	return nil
}
