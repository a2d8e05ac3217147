package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"forms-management-api/models"
	"forms-management-api/utils"
)

const defaultUserPassword = "ChangeMe!123"

// GetUsers lists all users with their assigned approval roles.
func GetUsers(c *gin.Context) {
	var users []models.User
	if err := getDB().Preload("Roles").Where("delete_at IS NULL").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "total": len(users)})
}

type UserRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	FullName string  `json:"full_name" binding:"required"`
	Phone    *string `json:"phone"`
	Role     string  `json:"role" binding:"required,oneof=admin user"`
	Password string  `json:"password"`
	IsActive *bool   `json:"is_active"`
	RoleIDs  []int   `json:"role_ids"`
}

// CreateUser creates a user and assigns approval roles. Admins with a
// phone get OTP login enabled.
func CreateUser(c *gin.Context) {
	adminID, _ := getCurrentUserID(c)

	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing int64
	if err := getDB().Model(&models.User{}).Where("email = ?", req.Email).Count(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
		return
	}

	password := req.Password
	if password == "" {
		password = defaultUserPassword
	}
	if ok, msg := utils.ValidatePassword(password); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	hash, err := HashPassword(password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	now := time.Now()
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	user := models.User{
		Email:      utils.SanitizeInput(req.Email),
		FullName:   utils.SanitizeInput(req.FullName),
		Phone:      req.Phone,
		Role:       req.Role,
		Password:   hash,
		IsActive:   isActive,
		OTPEnabled: req.Role == "admin" && req.Phone != nil,
		CreateAt:   &now,
	}

	if err := getDB().Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := assignRoles(user.UserID, req.RoleIDs, adminID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    user,
	})
}

// UpdateUser updates profile fields, primary role, activation, password
// and approval-role assignments.
func UpdateUser(c *gin.Context) {
	adminID, _ := getCurrentUserID(c)

	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var user models.User
	if err := getDB().Where("user_id = ? AND delete_at IS NULL", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	user.Email = utils.SanitizeInput(req.Email)
	user.FullName = utils.SanitizeInput(req.FullName)
	user.Phone = req.Phone
	user.Role = req.Role
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != "" {
		if ok, msg := utils.ValidatePassword(req.Password); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		hash, err := HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user.Password = hash
	}
	if user.Role == "admin" && user.Phone != nil {
		user.OTPEnabled = true
	}
	user.UpdateAt = &now

	if err := getDB().Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.RoleIDs != nil {
		if err := getDB().Where("user_id = ?", user.UserID).Delete(&models.UserRole{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if err := assignRoles(user.UserID, req.RoleIDs, adminID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully",
		"user":    user,
	})
}

// DeleteUser soft-deactivates a user. Self-deletion is blocked.
func DeleteUser(c *gin.Context) {
	adminID, _ := getCurrentUserID(c)

	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if userID == adminID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete your own account"})
		return
	}

	var user models.User
	if err := getDB().Where("user_id = ? AND delete_at IS NULL", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	now := time.Now()
	user.IsActive = false
	user.UpdateAt = &now
	if err := getDB().Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deactivated successfully"})
}

func assignRoles(userID int, roleIDs []int, assignedBy int) error {
	now := time.Now()
	for _, roleID := range roleIDs {
		userRole := models.UserRole{
			UserID:     userID,
			RoleID:     roleID,
			AssignedBy: &assignedBy,
			CreateAt:   &now,
		}
		if err := getDB().Create(&userRole).Error; err != nil {
			return err
		}
	}
	return nil
}
