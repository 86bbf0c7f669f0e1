// Package response writes the JSON envelope shared by the funnel frontend
// and the admin dashboard: {"success": true, "data": ...} on success,
// {"success": false, "error": {"code", "message"[, "details"]}} otherwise.
// Handlers never build envelopes by hand.
package response

import "github.com/gin-gonic/gin"

// Success writes data under the success envelope.
func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

// Error writes a machine-readable error code plus a human message.
func Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// ErrorWithDetails additionally attaches per-field details, typically the
// validator's field map.
func ErrorWithDetails(c *gin.Context, statusCode int, code, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
