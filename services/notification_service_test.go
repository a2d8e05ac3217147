package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"forms-management-api/models"
)

func notificationsFor(t *testing.T, db *gorm.DB, userID int) []models.Notification {
	t.Helper()

	var rows []models.Notification
	require.NoError(t, db.Where("user_id = ?", userID).Order("notification_id").Find(&rows).Error)
	return rows
}

func TestSubmitNotifiesFirstStepApprovers(t *testing.T) {
	db := newTestDB(t)
	initiator := createUser(t, db, "initiator@corp.test")
	u1 := createUser(t, db, "u1@corp.test")
	u2 := createUser(t, db, "u2@corp.test")
	role := createRole(t, db, "team-leads", u1, u2)
	template := createTemplate(t, db, role.RoleID)

	svc := NewFormService(db, NewNotificationService(db))
	form, err := svc.CreateForm(initiator.UserID, CreateFormInput{
		TemplateID: template.TemplateID,
		FormData:   map[string]interface{}{"reason": "x"},
	})
	require.NoError(t, err)

	for _, approver := range []*models.User{u1, u2} {
		rows := notificationsFor(t, db, approver.UserID)
		require.Len(t, rows, 1)
		assert.False(t, rows[0].IsRead)
		require.NotNil(t, rows[0].RelatedFormID)
		assert.Equal(t, form.FormID, *rows[0].RelatedFormID)
	}
	assert.Empty(t, notificationsFor(t, db, initiator.UserID))
}

func TestLifecycleNotificationsReachInitiator(t *testing.T) {
	db := newTestDB(t)
	initiator := createUser(t, db, "initiator@corp.test")
	u1 := createUser(t, db, "u1@corp.test")
	role := createRole(t, db, "team-leads", u1)
	template := createTemplate(t, db, role.RoleID)

	notifier := NewNotificationService(db)
	svc := NewFormService(db, notifier)
	form, err := svc.CreateForm(initiator.UserID, CreateFormInput{
		TemplateID: template.TemplateID,
		FormData:   map[string]interface{}{"reason": "x"},
	})
	require.NoError(t, err)

	engine := NewApprovalEngine(db, notifier)
	_, err = engine.Approve(form.FormID, u1.UserID, "")
	require.NoError(t, err)
	_, err = engine.FinalApprove(form.FormID, initiator.UserID)
	require.NoError(t, err)

	// Awaiting-final-approval, then completed.
	rows := notificationsFor(t, db, initiator.UserID)
	require.Len(t, rows, 2)
	assert.Equal(t, "success", rows[0].Type)
	assert.Equal(t, "success", rows[1].Type)
}

func TestRejectNotifiesInitiator(t *testing.T) {
	db := newTestDB(t)
	initiator := createUser(t, db, "initiator@corp.test")
	u1 := createUser(t, db, "u1@corp.test")
	role := createRole(t, db, "team-leads", u1)
	template := createTemplate(t, db, role.RoleID)

	notifier := NewNotificationService(db)
	svc := NewFormService(db, notifier)
	form, err := svc.CreateForm(initiator.UserID, CreateFormInput{
		TemplateID: template.TemplateID,
		FormData:   map[string]interface{}{"reason": "x"},
	})
	require.NoError(t, err)

	engine := NewApprovalEngine(db, notifier)
	_, err = engine.Reject(form.FormID, u1.UserID, "no")
	require.NoError(t, err)

	rows := notificationsFor(t, db, initiator.UserID)
	require.Len(t, rows, 1)
	assert.Equal(t, "error", rows[0].Type)
}

func TestNilNotifierIsSafe(t *testing.T) {
	var notifier *NotificationService
	notifier.NotifyApproversAssigned(nil, &models.Form{}, []int{1})
	notifier.NotifyAwaitingFinalApproval(nil, &models.Form{})
	notifier.NotifyFormRejected(nil, &models.Form{}, 1)
	notifier.NotifyFormCompleted(nil, &models.Form{})
}
