package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"forms-management-api/models"
	"forms-management-api/services"
)

// GetSystemOverview returns the admin statistics dashboard.
func GetSystemOverview(c *gin.Context) {
	stats, err := services.NewQueryService(getDB()).Overview()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"statistics": stats})
}

// GetFieldTypes returns the field catalog for the form builder, with
// Hebrew display names.
func GetFieldTypes(c *gin.Context) {
	fieldTypes := []gin.H{
		{
			"type":        "text",
			"name":        "טקסט",
			"description": "שדה טקסט חופשי",
			"properties":  []string{"required", "placeholder", "maxLength"},
		},
		{
			"type":        "number",
			"name":        "מספר",
			"description": "שדה מספרי",
			"properties":  []string{"required", "min", "max", "placeholder"},
		},
		{
			"type":        "date",
			"name":        "תאריך",
			"description": "בחירת תאריך",
			"properties":  []string{"required", "minDate", "maxDate"},
		},
		{
			"type":        "select",
			"name":        "בחירה מרשימה",
			"description": "רשימה נפתחת",
			"properties":  []string{"required", "options", "multiple"},
		},
		{
			"type":        "textarea",
			"name":        "טקסט ארוך",
			"description": "שדה טקסט מרובה שורות",
			"properties":  []string{"required", "placeholder", "rows", "maxLength"},
		},
		{
			"type":        "checkbox",
			"name":        "תיבת סימון",
			"description": "תיבת סימון בודדת",
			"properties":  []string{"required", "label"},
		},
		{
			"type":        "radio",
			"name":        "בחירה יחידה",
			"description": "כפתורי בחירה",
			"properties":  []string{"required", "options"},
		},
		{
			"type":        "file",
			"name":        "קובץ",
			"description": "העלאת קובץ",
			"properties":  []string{"required", "accept", "maxSize"},
		},
	}

	c.JSON(http.StatusOK, gin.H{"field_types": fieldTypes})
}

// ExportData dumps the system's records for backup.
func ExportData(c *gin.Context) {
	db := getDB()

	var users []models.User
	if err := db.Preload("Roles").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var roles []models.Role
	if err := db.Find(&roles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var templates []models.FormTemplate
	if err := db.Find(&templates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var forms []models.Form
	if err := db.Find(&forms).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":       users,
		"roles":       roles,
		"templates":   templates,
		"forms":       forms,
		"export_date": time.Now().UTC().Format(time.RFC3339),
	})
}
