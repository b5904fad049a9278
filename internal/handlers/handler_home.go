package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func getHome(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "Settlement Core API v1"})
}
