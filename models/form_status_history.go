package models

import "time"

// FormStatusHistory tracks historical status changes for forms.
type FormStatusHistory struct {
	HistoryID int       `gorm:"primaryKey;column:history_id" json:"history_id"`
	FormID    int       `gorm:"column:form_id" json:"form_id"`
	OldStatus *string   `gorm:"column:old_status" json:"old_status"`
	NewStatus string    `gorm:"column:new_status" json:"new_status"`
	ChangedBy int       `gorm:"column:changed_by" json:"changed_by"`
	Reason    *string   `gorm:"column:reason" json:"reason"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table for FormStatusHistory.
func (FormStatusHistory) TableName() string {
	return "form_status_history"
}
