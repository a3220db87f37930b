package controllers

import (
	"net/http"
	"strconv"

	"github.com/addisbingo/bingo-backend/config"
	"github.com/addisbingo/bingo-backend/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListTransactions returns a user's ledger history, newest first
func ListTransactions(c *gin.Context) {
	tidStr := c.Param("telegram_id")
	tid, err := strconv.ParseInt(tidStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid telegram_id"})
		return
	}

	var user models.User
	if err := config.DB.Where("telegram_id = ?", tid).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var transactions []models.Transaction
	if err := config.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&transactions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, transactions)
}
