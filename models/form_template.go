package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// FieldSpec describes one input field of a form template.
type FieldSpec struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"` // text|number|date|select|textarea|checkbox|radio|file
	Required bool     `json:"required"`
	Order    int      `json:"order"`
	Options  []string `json:"options,omitempty"`
}

// FieldSpecList stores the ordered field configuration as a JSON column.
type FieldSpecList []FieldSpec

func (l FieldSpecList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *FieldSpecList) Scan(value interface{}) error {
	if value == nil {
		*l = FieldSpecList{}
		return nil
	}
	b, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("failed to scan FieldSpecList: %w", err)
	}
	if len(b) == 0 {
		*l = FieldSpecList{}
		return nil
	}
	return json.Unmarshal(b, l)
}

// FormTemplate defines a reusable form: its fields and the ordered role
// chain that must approve each submitted instance (one role per step).
type FormTemplate struct {
	TemplateID    int           `gorm:"primaryKey;column:template_id" json:"template_id"`
	Name          string        `gorm:"column:name" json:"name"`
	NameHebrew    string        `gorm:"column:name_hebrew" json:"name_hebrew"`
	Description   *string       `gorm:"column:description" json:"description,omitempty"`
	FormType      string        `gorm:"column:form_type" json:"form_type"` // sms|software|tags|other
	FieldsConfig  FieldSpecList `gorm:"column:fields_config;type:json" json:"fields_config"`
	ApprovalChain IntList       `gorm:"column:approval_chain;type:json" json:"approval_chain"`
	IsActive      bool          `gorm:"column:is_active" json:"is_active"`
	CreatedBy     int           `gorm:"column:created_by" json:"created_by"`
	CreateAt      *time.Time    `gorm:"column:create_at" json:"create_at"`
	UpdateAt      *time.Time    `gorm:"column:update_at" json:"update_at"`
}

func (FormTemplate) TableName() string {
	return "form_templates"
}
