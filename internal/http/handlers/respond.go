package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error payloads are a flat {"error": "<message>"} object. Validation
// failures additionally carry field details.

func RespondError(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"error": message})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	if details == nil {
		RespondError(ctx, http.StatusBadRequest, message)
		return
	}

	ctx.JSON(http.StatusBadRequest, gin.H{
		"error":   message,
		"details": details,
	})
}

func RespondUnauthorized(ctx *gin.Context) {
	RespondError(ctx, http.StatusUnauthorized, "Unauthorized")
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message)
}

func RespondConflict(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusConflict, message)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, message)
}
