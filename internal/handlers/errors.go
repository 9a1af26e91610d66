package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/warbler-app/warbler/internal/middleware"
	"github.com/warbler-app/warbler/internal/models"
	"github.com/warbler-app/warbler/pkg/logger"
)

// respondError writes err as {"error", "code"}. Unauthorized is 401 for
// anonymous callers and 403 for signed-in users lacking rights. Internal
// errors are logged and rendered with a generic message.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	code := models.ErrorCode(err)
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch code {
	case models.CodeValidation:
		status = http.StatusBadRequest
	case models.CodeNotFound:
		status = http.StatusNotFound
	case models.CodeDuplicate:
		status = http.StatusConflict
	case models.CodeUnauthorized:
		status = http.StatusForbidden
		if middleware.GetCurrentUser(c) == nil {
			status = http.StatusUnauthorized
		}
	}

	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
	} else {
		message = err.Error()
	}

	c.AbortWithStatusJSON(status, gin.H{"error": message, "code": code})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error": message,
		"code":  models.CodeValidation,
	})
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}
