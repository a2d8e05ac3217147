package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"forms-management-api/models"
)

// GetFormTemplates lists the active templates available for submission.
func GetFormTemplates(c *gin.Context) {
	var templates []models.FormTemplate
	if err := getDB().Where("is_active = ?", true).Find(&templates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

type FormTemplateRequest struct {
	Name          string               `json:"name" binding:"required"`
	NameHebrew    string               `json:"name_hebrew" binding:"required"`
	Description   *string              `json:"description"`
	FormType      string               `json:"form_type" binding:"required,oneof=sms software tags other"`
	FieldsConfig  models.FieldSpecList `json:"fields_config"`
	ApprovalChain models.IntList       `json:"approval_chain" binding:"required"`
}

// CreateFormTemplate creates a template. The approval chain must be
// non-empty and reference existing roles.
func CreateFormTemplate(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication context missing"})
		return
	}

	var req FormTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg, ok := validateApprovalChain(req.ApprovalChain); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	now := time.Now()
	template := models.FormTemplate{
		Name:          req.Name,
		NameHebrew:    req.NameHebrew,
		Description:   req.Description,
		FormType:      req.FormType,
		FieldsConfig:  req.FieldsConfig,
		ApprovalChain: req.ApprovalChain,
		IsActive:      true,
		CreatedBy:     userID,
		CreateAt:      &now,
	}
	if err := getDB().Create(&template).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Form template created successfully",
		"template": template,
	})
}

// UpdateFormTemplate updates an existing template in place. Forms already
// in flight keep the chain they started with only up to the current step;
// step resolution always reads the template, so chain edits apply to
// steps not yet reached.
func UpdateFormTemplate(c *gin.Context) {
	templateID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}

	var template models.FormTemplate
	if err := getDB().Where("template_id = ?", templateID).First(&template).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}

	var req FormTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg, ok := validateApprovalChain(req.ApprovalChain); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	now := time.Now()
	template.Name = req.Name
	template.NameHebrew = req.NameHebrew
	template.Description = req.Description
	template.FormType = req.FormType
	template.FieldsConfig = req.FieldsConfig
	template.ApprovalChain = req.ApprovalChain
	template.UpdateAt = &now
	if err := getDB().Save(&template).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Form template updated successfully",
		"template": template,
	})
}

// DeleteFormTemplate deactivates a template; existing forms keep their
// reference.
func DeleteFormTemplate(c *gin.Context) {
	templateID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}

	var template models.FormTemplate
	if err := getDB().Where("template_id = ?", templateID).First(&template).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}

	now := time.Now()
	template.IsActive = false
	template.UpdateAt = &now
	if err := getDB().Save(&template).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Form template deleted successfully"})
}

// validateApprovalChain enforces the template invariant: a non-empty
// chain whose role ids all exist.
func validateApprovalChain(chain models.IntList) (string, bool) {
	if len(chain) == 0 {
		return "approval_chain must not be empty", false
	}

	var count int64
	if err := getDB().Model(&models.Role{}).Where("role_id IN ?", []int(chain)).Count(&count).Error; err != nil {
		return err.Error(), false
	}

	unique := make(map[int]struct{}, len(chain))
	for _, roleID := range chain {
		unique[roleID] = struct{}{}
	}
	if count != int64(len(unique)) {
		return "approval_chain references unknown roles", false
	}
	return "", true
}
