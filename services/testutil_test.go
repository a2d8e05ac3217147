package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"forms-management-api/models"
)

// newTestDB opens an isolated in-memory database with the full schema.
// A single connection keeps the :memory: database alive for the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	// user_roles is both the many2many join table and its own model;
	// registering it as the join table keeps its surrogate key.
	require.NoError(t, db.SetupJoinTable(&models.User{}, "Roles", &models.UserRole{}))
	require.NoError(t, db.AutoMigrate(
		&models.UserRole{},
		&models.User{},
		&models.Role{},
		&models.OTPCode{},
		&models.FormTemplate{},
		&models.Form{},
		&models.FormApproval{},
		&models.FormStatusHistory{},
		&models.Notification{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	now := time.Now()
	user := models.User{
		Email:    email,
		Password: "x",
		FullName: email,
		Role:     "user",
		IsActive: true,
		CreateAt: &now,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createRole(t *testing.T, db *gorm.DB, name string, members ...*models.User) *models.Role {
	t.Helper()

	now := time.Now()
	role := models.Role{Name: name, NameHebrew: name, CreateAt: &now}
	require.NoError(t, db.Create(&role).Error)
	for _, member := range members {
		link := models.UserRole{UserID: member.UserID, RoleID: role.RoleID, CreateAt: &now}
		require.NoError(t, db.Create(&link).Error)
	}
	return &role
}

func createTemplate(t *testing.T, db *gorm.DB, chain ...int) *models.FormTemplate {
	t.Helper()

	now := time.Now()
	template := models.FormTemplate{
		Name:       fmt.Sprintf("template-%d", time.Now().UnixNano()),
		NameHebrew: "בקשת תוכנה",
		FormType:   "software",
		FieldsConfig: models.FieldSpecList{
			{Name: "reason", Label: "סיבה", Type: "text", Required: true, Order: 1},
		},
		ApprovalChain: models.IntList(chain),
		IsActive:      true,
		CreatedBy:     1,
		CreateAt:      &now,
	}
	require.NoError(t, db.Create(&template).Error)
	return &template
}

// submitForm creates a form through the FormService so that step-0
// approval rows exist, mirroring the production path.
func submitForm(t *testing.T, db *gorm.DB, template *models.FormTemplate, initiator *models.User) *models.Form {
	t.Helper()

	svc := NewFormService(db, nil)
	form, err := svc.CreateForm(initiator.UserID, CreateFormInput{
		TemplateID: template.TemplateID,
		FormData:   map[string]interface{}{"reason": "testing"},
	})
	require.NoError(t, err)
	return form
}

func approvalsAt(t *testing.T, db *gorm.DB, formID, step int) []models.FormApproval {
	t.Helper()

	var approvals []models.FormApproval
	require.NoError(t, db.
		Where("form_id = ? AND step_number = ?", formID, step).
		Order("approval_id").
		Find(&approvals).Error)
	return approvals
}

func reloadForm(t *testing.T, db *gorm.DB, formID int) *models.Form {
	t.Helper()

	var form models.Form
	require.NoError(t, db.Preload("Template").Where("form_id = ?", formID).First(&form).Error)
	return &form
}
