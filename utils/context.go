package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nexkart/marketplace/logger"
)

// GetUserIDFromContext extracts the authenticated user ID from the Gin
// context. The auth middleware stores it as a string under "sub".
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	sub, exists := c.Get("sub")
	if !exists {
		logger.ErrorLogger.Error("User ID not found in context.")
		return uuid.Nil, ErrUserIDNotFound
	}

	userIDStr, ok := sub.(string)
	if !ok {
		logger.ErrorLogger.Errorf("User ID in context is not a string, actual type: %T", sub)
		return uuid.Nil, fmt.Errorf("internal server error: invalid user ID format in context")
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to parse user ID string '%s' to UUID: %v", userIDStr, err)
		return uuid.Nil, fmt.Errorf("internal server error: invalid user ID format")
	}
	return userID, nil
}

// GetRoleFromContext returns the role claim set by the auth middleware.
func GetRoleFromContext(c *gin.Context) string {
	role, exists := c.Get("role")
	if !exists {
		return ""
	}
	roleStr, _ := role.(string)
	return roleStr
}
