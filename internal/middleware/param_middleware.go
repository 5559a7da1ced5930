package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Ключи контекста Gin
const (
	AttemptIDKey = "attemptID"
	UserIDKey    = "userID"
)

// ExtractAttemptID создает middleware для извлечения и валидации UUID попытки из URL.
// paramName - имя параметра в URL (например, "attempt_id").
func ExtractAttemptID(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param(paramName)
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s", paramName)})
			c.Abort()
			return
		}
		// Храним в каноническом виде
		c.Set(AttemptIDKey, id.String())
		c.Next()
	}
}

// ExtractUserID извлекает обязательный числовой user_id из query-строки
func ExtractUserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("user_id")
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
			c.Abort()
			return
		}
		c.Set(UserIDKey, uint(id))
		c.Next()
	}
}
