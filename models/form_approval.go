package models

import "time"

// Approval actions. A NULL action means the approval is still pending.
const (
	ApprovalActionApproved = "approved"
	ApprovalActionRejected = "rejected"
)

// FormApproval is one approver's slot at one step of a form's chain.
// Additional approvers inserted at runtime carry is_additional=true and
// join the must-approve set of their step.
type FormApproval struct {
	ApprovalID   int        `gorm:"primaryKey;column:approval_id" json:"approval_id"`
	FormID       int        `gorm:"column:form_id" json:"form_id"`
	StepNumber   int        `gorm:"column:step_number" json:"step_number"`
	ApproverID   int        `gorm:"column:approver_id" json:"approver_id"`
	Action       *string    `gorm:"column:action" json:"action"`
	Comments     *string    `gorm:"column:comments" json:"comments,omitempty"`
	ActionDate   *time.Time `gorm:"column:action_date" json:"action_date,omitempty"`
	IsAdditional bool       `gorm:"column:is_additional" json:"is_additional"`
	AddedBy      *int       `gorm:"column:added_by" json:"added_by,omitempty"`
	CreateAt     time.Time  `gorm:"column:create_at" json:"create_at"`

	// Relations
	Approver *User `gorm:"foreignKey:ApproverID" json:"approver,omitempty"`
}

func (FormApproval) TableName() string {
	return "form_approvals"
}

// IsPending reports whether the approver has not acted yet.
func (a *FormApproval) IsPending() bool {
	return a.Action == nil
}
