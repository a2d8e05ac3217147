package models

import "time"

// Form statuses. Transitions are one-directional: pending forms move
// forward through the chain until awaiting_final_approval, then the
// initiator completes them; a single rejection is terminal.
const (
	FormStatusPending               = "pending"
	FormStatusAwaitingFinalApproval = "awaiting_final_approval"
	FormStatusCompleted             = "completed"
	FormStatusRejected              = "rejected"
)

// Form is one submitted instance of a template, in flight or closed.
type Form struct {
	FormID      int        `gorm:"primaryKey;column:form_id" json:"form_id"`
	FormNumber  string     `gorm:"column:form_number;unique" json:"form_number"`
	TemplateID  int        `gorm:"column:template_id" json:"template_id"`
	InitiatorID int        `gorm:"column:initiator_id" json:"initiator_id"`
	FormData    JSONMap    `gorm:"column:form_data;type:json" json:"form_data"`
	Status      string     `gorm:"column:status" json:"status"`
	CurrentStep int        `gorm:"column:current_step" json:"current_step"`
	CreateAt    time.Time  `gorm:"column:create_at" json:"created_at"`
	UpdateAt    *time.Time `gorm:"column:update_at" json:"update_at,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	// Relations
	Template  *FormTemplate `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
	Initiator *User         `gorm:"foreignKey:InitiatorID" json:"initiator,omitempty"`
}

func (Form) TableName() string {
	return "forms"
}

// IsTerminal reports whether the form can no longer be acted on.
func (f *Form) IsTerminal() bool {
	return f.Status == FormStatusCompleted || f.Status == FormStatusRejected
}
