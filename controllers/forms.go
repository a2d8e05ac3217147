package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"forms-management-api/services"
)

type CreateFormRequest struct {
	TemplateID   int                    `json:"template_id"`
	TemplateType string                 `json:"template_type"`
	FormData     map[string]interface{} `json:"form_data"`
}

// CreateForm submits a new form instance from a template.
func CreateForm(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication context missing"})
		return
	}

	var req CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewFormService(getDB(), notifier())
	form, err := svc.CreateForm(userID, services.CreateFormInput{
		TemplateID: req.TemplateID,
		FormType:   req.TemplateType,
		FormData:   req.FormData,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Form created successfully",
		"form":    form,
	})
}

// GetForms lists forms visible to the current user, with optional
// status/my_forms_only/pending_for_me filters.
func GetForms(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication context missing"})
		return
	}

	filter := services.ListFormsFilter{
		Status:       c.Query("status"),
		MyFormsOnly:  c.Query("my_forms_only") == "true",
		PendingForMe: c.Query("pending_for_me") == "true",
	}

	svc := services.NewFormService(getDB(), nil)
	forms, err := svc.ListForms(userID, isAdmin(c), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"forms": forms})
}

// GetForm returns one form with its template and approvals.
func GetForm(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication context missing"})
		return
	}

	formID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form id"})
		return
	}

	svc := services.NewFormService(getDB(), nil)
	details, err := svc.GetForm(formID, userID, isAdmin(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"form":      details.Form,
		"template":  details.Template,
		"approvals": details.Approvals,
	})
}

// FinalApproveForm is the initiator's terminal sign-off.
func FinalApproveForm(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication context missing"})
		return
	}

	formID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form id"})
		return
	}

	engine := services.NewApprovalEngine(getDB(), notifier())
	form, err := engine.FinalApprove(formID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Form completed successfully",
		"form":    form,
	})
}

// GetFormStatistics returns aggregate counts: the full overview for
// admins, the personal view for everyone else.
func GetFormStatistics(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication context missing"})
		return
	}

	svc := services.NewQueryService(getDB())

	if isAdmin(c) {
		stats, err := svc.Overview()
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"statistics": stats})
		return
	}

	stats, err := svc.UserStats(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statistics": stats})
}
