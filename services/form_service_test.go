package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forms-management-api/models"
)

func TestCreateFormMaterializesFirstStep(t *testing.T) {
	db := newTestDB(t)
	initiator := createUser(t, db, "initiator@corp.test")
	u1 := createUser(t, db, "u1@corp.test")
	u2 := createUser(t, db, "u2@corp.test")
	role := createRole(t, db, "team-leads", u1, u2)
	template := createTemplate(t, db, role.RoleID)

	svc := NewFormService(db, nil)
	form, err := svc.CreateForm(initiator.UserID, CreateFormInput{
		TemplateID: template.TemplateID,
		FormData:   map[string]interface{}{"reason": "new laptop"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.FormStatusPending, form.Status)
	assert.Equal(t, 0, form.CurrentStep)
	assert.NotEmpty(t, form.FormNumber)

	rows := approvalsAt(t, db, form.FormID, 0)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Nil(t, row.Action)
		assert.False(t, row.IsAdditional)
	}

	var history []models.FormStatusHistory
	require.NoError(t, db.Where("form_id = ?", form.FormID).Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, models.FormStatusPending, history[0].NewStatus)
}

func TestCreateFormResolvesTemplateByType(t *testing.T) {
	db := newTestDB(t)
	initiator := createUser(t, db, "initiator@corp.test")
	u1 := createUser(t, db, "u1@corp.test")
	role := createRole(t, db, "team-leads", u1)
	template := createTemplate(t, db, role.RoleID)

	svc := NewFormService(db, nil)
	form, err := svc.CreateForm(initiator.UserID, CreateFormInput{
		FormType: "software",
		FormData: map[string]interface{}{"reason": "license renewal"},
	})
	require.NoError(t, err)
	assert.Equal(t, template.TemplateID, form.TemplateID)
}

func TestCreateFormRejectsInvalidData(t *testing.T) {
	db := newTestDB(t)
	initiator := createUser(t, db, "initiator@corp.test")
	u1 := createUser(t, db, "u1@corp.test")
	role := createRole(t, db, "team-leads", u1)
	template := createTemplate(t, db, role.RoleID)

	svc := NewFormService(db, nil)

	// Missing required field.
	_, err := svc.CreateForm(initiator.UserID, CreateFormInput{
		TemplateID: template.TemplateID,
		FormData:   map[string]interface{}{},
	})
	assert.True(t, IsValidationError(err), "expected validation error, got %v", err)

	// Unknown field.
	_, err = svc.CreateForm(initiator.UserID, CreateFormInput{
		TemplateID: template.TemplateID,
		FormData:   map[string]interface{}{"reason": "ok", "bogus": "x"},
	})
	assert.True(t, IsValidationError(err), "expected validation error, got %v", err)

	// No rows may survive a rejected submission.
	var forms int64
	require.NoError(t, db.Model(&models.Form{}).Count(&forms).Error)
	assert.Zero(t, forms)
}

func TestCreateFormRequiresTemplateSelector(t *testing.T) {
	db := newTestDB(t)
	initiator := createUser(t, db, "initiator@corp.test")

	svc := NewFormService(db, nil)
	_, err := svc.CreateForm(initiator.UserID, CreateFormInput{
		FormData: map[string]interface{}{"reason": "x"},
	})
	assert.True(t, IsValidationError(err), "expected validation error, got %v", err)

	_, err = svc.CreateForm(initiator.UserID, CreateFormInput{
		TemplateID: 9999,
		FormData:   map[string]interface{}{"reason": "x"},
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateFormFailsWhenFirstStepRoleIsEmpty(t *testing.T) {
	db := newTestDB(t)
	initiator := createUser(t, db, "initiator@corp.test")
	empty := createRole(t, db, "orphan-role")
	template := createTemplate(t, db, empty.RoleID)

	svc := NewFormService(db, nil)
	_, err := svc.CreateForm(initiator.UserID, CreateFormInput{
		TemplateID: template.TemplateID,
		FormData:   map[string]interface{}{"reason": "x"},
	})
	assert.ErrorIs(t, err, ErrNoApproversConfigured)

	// The transaction rolled back the form row too.
	var forms int64
	require.NoError(t, db.Model(&models.Form{}).Count(&forms).Error)
	assert.Zero(t, forms)
}

func TestListFormsVisibility(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice@corp.test")
	bob := createUser(t, db, "bob@corp.test")
	carol := createUser(t, db, "carol@corp.test")
	approver := createUser(t, db, "approver@corp.test")
	role := createRole(t, db, "team-leads", approver)
	template := createTemplate(t, db, role.RoleID)

	aliceForm := submitForm(t, db, template, alice)
	submitForm(t, db, template, bob)

	svc := NewFormService(db, nil)

	// Admins see everything.
	all, err := svc.ListForms(carol.UserID, true, ListFormsFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// A regular user unconnected to any form sees nothing.
	none, err := svc.ListForms(carol.UserID, false, ListFormsFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)

	// Initiators see their own forms.
	mine, err := svc.ListForms(alice.UserID, false, ListFormsFilter{MyFormsOnly: true})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, aliceForm.FormID, mine[0].FormID)

	// Approvers see forms waiting on them.
	pending, err := svc.ListForms(approver.UserID, false, ListFormsFilter{PendingForMe: true})
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestListFormsStatusFilter(t *testing.T) {
	db := newTestDB(t)
	initiator := createUser(t, db, "initiator@corp.test")
	u1 := createUser(t, db, "u1@corp.test")
	role := createRole(t, db, "team-leads", u1)
	template := createTemplate(t, db, role.RoleID)

	form := submitForm(t, db, template, initiator)
	submitForm(t, db, template, initiator)

	engine := NewApprovalEngine(db, nil)
	_, err := engine.Reject(form.FormID, u1.UserID, "no")
	require.NoError(t, err)

	svc := NewFormService(db, nil)
	rejected, err := svc.ListForms(0, true, ListFormsFilter{Status: models.FormStatusRejected})
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, form.FormID, rejected[0].FormID)
}

func TestGetFormAccessControl(t *testing.T) {
	db := newTestDB(t)
	initiator := createUser(t, db, "initiator@corp.test")
	u1 := createUser(t, db, "u1@corp.test")
	outsider := createUser(t, db, "outsider@corp.test")
	role := createRole(t, db, "team-leads", u1)
	template := createTemplate(t, db, role.RoleID)
	form := submitForm(t, db, template, initiator)

	svc := NewFormService(db, nil)

	details, err := svc.GetForm(form.FormID, initiator.UserID, false)
	require.NoError(t, err)
	assert.Equal(t, form.FormID, details.Form.FormID)
	assert.Equal(t, template.TemplateID, details.Template.TemplateID)
	require.Len(t, details.Approvals, 1)

	_, err = svc.GetForm(form.FormID, u1.UserID, false)
	assert.NoError(t, err, "assigned approvers may view the form")

	_, err = svc.GetForm(form.FormID, outsider.UserID, false)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetForm(form.FormID, outsider.UserID, true)
	assert.NoError(t, err, "admins may view any form")

	_, err = svc.GetForm(99999, initiator.UserID, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApprovalsByStepGroupsRows(t *testing.T) {
	db := newTestDB(t)
	initiator := createUser(t, db, "initiator@corp.test")
	u1 := createUser(t, db, "u1@corp.test")
	u2 := createUser(t, db, "u2@corp.test")
	step0 := createRole(t, db, "team-leads", u1)
	step1 := createRole(t, db, "security", u2)
	template := createTemplate(t, db, step0.RoleID, step1.RoleID)
	form := submitForm(t, db, template, initiator)

	engine := NewApprovalEngine(db, nil)
	_, err := engine.Approve(form.FormID, u1.UserID, "")
	require.NoError(t, err)

	svc := NewFormService(db, nil)
	loaded, byStep, err := svc.ApprovalsByStep(form.FormID)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.CurrentStep)
	require.Len(t, byStep[0], 1)
	require.Len(t, byStep[1], 1)
	assert.Equal(t, u2.UserID, byStep[1][0].ApproverID)
}

func TestInactiveUsersAreNotAssigned(t *testing.T) {
	db := newTestDB(t)
	initiator := createUser(t, db, "initiator@corp.test")
	u1 := createUser(t, db, "u1@corp.test")
	suspended := createUser(t, db, "suspended@corp.test")
	require.NoError(t, db.Model(suspended).Update("is_active", false).Error)
	role := createRole(t, db, "team-leads", u1, suspended)
	template := createTemplate(t, db, role.RoleID)

	form := submitForm(t, db, template, initiator)

	rows := approvalsAt(t, db, form.FormID, 0)
	require.Len(t, rows, 1)
	assert.Equal(t, u1.UserID, rows[0].ApproverID)
}
