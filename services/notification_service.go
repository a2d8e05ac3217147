package services

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"forms-management-api/config"
	"forms-management-api/models"
)

// NotificationService writes in-app notifications and sends best-effort
// email copies. A nil service is valid and does nothing, so the engine
// can run without notifications in tests.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// NotifyApproversAssigned tells newly resolved approvers that a form is
// waiting for them.
func (s *NotificationService) NotifyApproversAssigned(tx *gorm.DB, form *models.Form, approverIDs []int) {
	if s == nil {
		return
	}
	title := "טופס ממתין לאישורך"
	message := fmt.Sprintf("טופס %s ממתין לאישורך בשלב %d", formTitle(form), form.CurrentStep+1)
	for _, approverID := range approverIDs {
		s.create(tx, approverID, title, message, "info", form.FormID)
	}
	s.emailUsers(tx, approverIDs, title, message)
}

// NotifyAwaitingFinalApproval tells the initiator the chain is satisfied
// and the form awaits their final sign-off.
func (s *NotificationService) NotifyAwaitingFinalApproval(tx *gorm.DB, form *models.Form) {
	if s == nil {
		return
	}
	title := "הטופס ממתין לאישור סופי"
	message := fmt.Sprintf("כל שלבי האישור של טופס %s הושלמו; נדרש אישור סופי שלך", formTitle(form))
	s.create(tx, form.InitiatorID, title, message, "success", form.FormID)
	s.emailUsers(tx, []int{form.InitiatorID}, title, message)
}

// NotifyFormRejected tells the initiator their form was rejected.
func (s *NotificationService) NotifyFormRejected(tx *gorm.DB, form *models.Form, rejectedBy int) {
	if s == nil {
		return
	}
	title := "הטופס נדחה"
	message := fmt.Sprintf("טופס %s נדחה על ידי אחד המאשרים", formTitle(form))
	s.create(tx, form.InitiatorID, title, message, "error", form.FormID)
	s.emailUsers(tx, []int{form.InitiatorID}, title, message)
}

// NotifyFormCompleted tells the initiator their form is completed.
func (s *NotificationService) NotifyFormCompleted(tx *gorm.DB, form *models.Form) {
	if s == nil {
		return
	}
	title := "הטופס הושלם"
	message := fmt.Sprintf("טופס %s אושר והושלם", formTitle(form))
	s.create(tx, form.InitiatorID, title, message, "success", form.FormID)
}

func (s *NotificationService) create(tx *gorm.DB, userID int, title, message, typ string, formID int) {
	n := models.Notification{
		UserID:        userID,
		Title:         title,
		Message:       message,
		Type:          typ,
		RelatedFormID: &formID,
		CreateAt:      time.Now(),
	}
	if err := tx.Create(&n).Error; err != nil {
		log.Printf("notification create failed for user %d: %v", userID, err)
	}
}

// emailUsers sends a mail copy outside the transaction path. Failures are
// logged, never surfaced: email is advisory, the notification row is the
// source of truth.
func (s *NotificationService) emailUsers(tx *gorm.DB, userIDs []int, subject, message string) {
	var emails []string
	if err := tx.Model(&models.User{}).
		Where("user_id IN ? AND is_active = ? AND delete_at IS NULL", userIDs, true).
		Pluck("email", &emails).Error; err != nil {
		log.Printf("notification email lookup failed: %v", err)
		return
	}
	if len(emails) == 0 {
		return
	}
	html := fmt.Sprintf("<div dir=\"rtl\"><p>%s</p></div>", message)
	go func() {
		if err := config.SendMail(emails, subject, html); err != nil {
			log.Printf("notification email send failed: %v", err)
		}
	}()
}

func formTitle(form *models.Form) string {
	if form.Template != nil && form.Template.NameHebrew != "" {
		return fmt.Sprintf("%s (%s)", form.Template.NameHebrew, form.FormNumber)
	}
	return form.FormNumber
}
