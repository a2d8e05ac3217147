package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"forms-management-api/models"
)

// GetRoles lists all approval-chain roles.
func GetRoles(c *gin.Context) {
	var roles []models.Role
	if err := getDB().Find(&roles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

type RoleRequest struct {
	Name        string         `json:"name" binding:"required"`
	NameHebrew  string         `json:"name_hebrew" binding:"required"`
	Description *string        `json:"description"`
	Permissions models.JSONMap `json:"permissions"`
}

// CreateRole creates an approval-chain role.
func CreateRole(c *gin.Context) {
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	role := models.Role{
		Name:        req.Name,
		NameHebrew:  req.NameHebrew,
		Description: req.Description,
		Permissions: req.Permissions,
		CreateAt:    &now,
	}
	if err := getDB().Create(&role).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Role created successfully",
		"role":    role,
	})
}

// UpdateRole updates a role's metadata and permissions.
func UpdateRole(c *gin.Context) {
	roleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role id"})
		return
	}

	var role models.Role
	if err := getDB().Where("role_id = ?", roleID).First(&role).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Role not found"})
		return
	}

	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	role.Name = req.Name
	role.NameHebrew = req.NameHebrew
	role.Description = req.Description
	role.Permissions = req.Permissions
	role.UpdateAt = &now
	if err := getDB().Save(&role).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Role updated successfully",
		"role":    role,
	})
}

// DeleteRole removes a role. Roles assigned to users or referenced by an
// active template's chain cannot be deleted.
func DeleteRole(c *gin.Context) {
	roleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role id"})
		return
	}

	var role models.Role
	if err := getDB().Where("role_id = ?", roleID).First(&role).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Role not found"})
		return
	}

	var assigned int64
	if err := getDB().Model(&models.UserRole{}).Where("role_id = ?", roleID).Count(&assigned).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if assigned > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete role that is assigned to users"})
		return
	}

	var templates []models.FormTemplate
	if err := getDB().Where("is_active = ?", true).Find(&templates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	for _, template := range templates {
		for _, chainRoleID := range template.ApprovalChain {
			if chainRoleID == roleID {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete role used in a template approval chain"})
				return
			}
		}
	}

	if err := getDB().Delete(&role).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role deleted successfully"})
}
