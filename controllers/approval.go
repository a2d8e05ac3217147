package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"forms-management-api/models"
	"forms-management-api/services"
)

type ApprovalActionRequest struct {
	Comments string `json:"comments"`
}

// ApproveForm records the current user's approval at the form's current
// step and advances the chain when the step is satisfied.
func ApproveForm(c *gin.Context) {
	userID, formID, ok := actionContext(c)
	if !ok {
		return
	}

	var req ApprovalActionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	engine := services.NewApprovalEngine(getDB(), notifier())
	form, err := engine.Approve(formID, userID, strings.TrimSpace(req.Comments))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Form approved successfully",
		"form":    form,
	})
}

// RejectForm records a rejection; the form becomes terminally rejected.
func RejectForm(c *gin.Context) {
	userID, formID, ok := actionContext(c)
	if !ok {
		return
	}

	var req ApprovalActionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	engine := services.NewApprovalEngine(getDB(), notifier())
	form, err := engine.Reject(formID, userID, strings.TrimSpace(req.Comments))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Form rejected successfully",
		"form":    form,
	})
}

type AddApproverRequest struct {
	ApproverID    int    `json:"approver_id"`
	ApproverEmail string `json:"approver_email"`
}

// AddApprover inserts an additional approver into the form's current
// step. The approver may be given by id or resolved from email.
func AddApprover(c *gin.Context) {
	userID, formID, ok := actionContext(c)
	if !ok {
		return
	}

	var req AddApproverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	approverID := req.ApproverID
	if approverID == 0 {
		email := strings.TrimSpace(req.ApproverEmail)
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "approver_id or approver_email is required"})
			return
		}
		var approver models.User
		err := getDB().Where("email = ? AND is_active = ? AND delete_at IS NULL", email, true).First(&approver).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Approver not found or inactive"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		approverID = approver.UserID
	}

	engine := services.NewApprovalEngine(getDB(), notifier())
	form, approval, err := engine.AddApprover(formID, userID, approverID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Additional approver added successfully",
		"form":     form,
		"approval": approval,
	})
}

// GetFormApprovals returns a form's approval rows grouped by step.
func GetFormApprovals(c *gin.Context) {
	_, formID, ok := actionContext(c)
	if !ok {
		return
	}

	svc := services.NewFormService(getDB(), nil)
	form, byStep, err := svc.ApprovalsByStep(formID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"form":              form,
		"approvals_by_step": byStep,
		"current_step":      form.CurrentStep,
	})
}

// GetMyPendingApprovals lists the forms waiting for the current user.
func GetMyPendingApprovals(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication context missing"})
		return
	}

	pending, err := services.NewQueryService(getDB()).PendingApprovalsFor(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pending_approvals": pending,
		"count":             len(pending),
	})
}

// GetApprovalHistory lists the current user's past approval decisions.
func GetApprovalHistory(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication context missing"})
		return
	}

	history, err := services.NewQueryService(getDB()).ApprovalHistoryFor(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"approval_history": history,
		"count":            len(history),
	})
}

func actionContext(c *gin.Context) (userID, formID int, ok bool) {
	userID, ok = getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication context missing"})
		return 0, 0, false
	}
	formID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form id"})
		return 0, 0, false
	}
	return userID, formID, true
}
