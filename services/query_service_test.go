package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forms-management-api/models"
)

func TestPendingApprovalsForTracksCurrentStepOnly(t *testing.T) {
	db := newTestDB(t)
	initiator := createUser(t, db, "initiator@corp.test")
	u1 := createUser(t, db, "u1@corp.test")
	u2 := createUser(t, db, "u2@corp.test")
	step0 := createRole(t, db, "team-leads", u1)
	step1 := createRole(t, db, "security", u2)
	template := createTemplate(t, db, step0.RoleID, step1.RoleID)
	form := submitForm(t, db, template, initiator)

	queries := NewQueryService(db)

	// Step 1 approver has nothing yet; the form is still on step 0.
	pending, err := queries.PendingApprovalsFor(u2.UserID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	pending, err = queries.PendingApprovalsFor(u1.UserID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, form.FormID, pending[0].Form.FormID)
	assert.Equal(t, "בקשת תוכנה", pending[0].TemplateName)
	assert.Nil(t, pending[0].ApprovalInfo.Action)

	engine := NewApprovalEngine(db, nil)
	_, err = engine.Approve(form.FormID, u1.UserID, "")
	require.NoError(t, err)

	// The queue moved with the step.
	pending, err = queries.PendingApprovalsFor(u1.UserID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	pending, err = queries.PendingApprovalsFor(u2.UserID)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestPendingApprovalsExcludeClosedForms(t *testing.T) {
	db := newTestDB(t)
	initiator := createUser(t, db, "initiator@corp.test")
	u1 := createUser(t, db, "u1@corp.test")
	u2 := createUser(t, db, "u2@corp.test")
	role := createRole(t, db, "team-leads", u1, u2)
	template := createTemplate(t, db, role.RoleID)
	form := submitForm(t, db, template, initiator)

	engine := NewApprovalEngine(db, nil)
	_, err := engine.Reject(form.FormID, u1.UserID, "no")
	require.NoError(t, err)

	// u2's slot is technically still unactioned, but the form is closed.
	queries := NewQueryService(db)
	pending, err := queries.PendingApprovalsFor(u2.UserID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestApprovalHistoryForListsPastDecisions(t *testing.T) {
	db := newTestDB(t)
	initiator := createUser(t, db, "initiator@corp.test")
	u1 := createUser(t, db, "u1@corp.test")
	role := createRole(t, db, "team-leads", u1)
	template := createTemplate(t, db, role.RoleID)

	formA := submitForm(t, db, template, initiator)
	formB := submitForm(t, db, template, initiator)

	engine := NewApprovalEngine(db, nil)
	_, err := engine.Approve(formA.FormID, u1.UserID, "")
	require.NoError(t, err)
	_, err = engine.Reject(formB.FormID, u1.UserID, "no budget")
	require.NoError(t, err)

	queries := NewQueryService(db)
	history, err := queries.ApprovalHistoryFor(u1.UserID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	for _, entry := range history {
		assert.NotNil(t, entry.ApprovalInfo.Action)
		assert.NotNil(t, entry.ApprovalInfo.ActionDate)
	}
}

func TestOverviewAggregates(t *testing.T) {
	db := newTestDB(t)
	initiator := createUser(t, db, "initiator@corp.test")
	u1 := createUser(t, db, "u1@corp.test")
	role := createRole(t, db, "team-leads", u1)
	template := createTemplate(t, db, role.RoleID)

	approved := submitForm(t, db, template, initiator)
	rejected := submitForm(t, db, template, initiator)
	submitForm(t, db, template, initiator)

	engine := NewApprovalEngine(db, nil)
	_, err := engine.Approve(approved.FormID, u1.UserID, "")
	require.NoError(t, err)
	_, err = engine.Reject(rejected.FormID, u1.UserID, "no")
	require.NoError(t, err)

	queries := NewQueryService(db)
	stats, err := queries.Overview()
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.TotalUsers)
	assert.EqualValues(t, 2, stats.ActiveUsers)
	assert.EqualValues(t, 3, stats.TotalForms)
	assert.EqualValues(t, 2, stats.PendingForms, "awaiting_final_approval counts as in flight")
	assert.EqualValues(t, 1, stats.RejectedForms)
	assert.EqualValues(t, 0, stats.CompletedForms)
	assert.EqualValues(t, 1, stats.TotalTemplates)
	assert.EqualValues(t, 1, stats.TotalRoles)
	assert.EqualValues(t, 1, stats.FormsByStatus[models.FormStatusPending])
	assert.EqualValues(t, 1, stats.FormsByStatus[models.FormStatusAwaitingFinalApproval])
	assert.EqualValues(t, 3, stats.FormsByTemplate[template.NameHebrew])
	assert.Len(t, stats.RecentForms, 3)
}

func TestUserStats(t *testing.T) {
	db := newTestDB(t)
	initiator := createUser(t, db, "initiator@corp.test")
	u1 := createUser(t, db, "u1@corp.test")
	role := createRole(t, db, "team-leads", u1)
	template := createTemplate(t, db, role.RoleID)

	submitForm(t, db, template, initiator)
	submitForm(t, db, template, initiator)

	queries := NewQueryService(db)

	initiatorStats, err := queries.UserStats(initiator.UserID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, initiatorStats.MyForms)
	assert.EqualValues(t, 0, initiatorStats.PendingForMe)

	approverStats, err := queries.UserStats(u1.UserID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, approverStats.MyForms)
	assert.EqualValues(t, 2, approverStats.PendingForMe)
}
