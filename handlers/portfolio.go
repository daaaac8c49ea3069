package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"tradesim/models"
)

// Index shows the portfolio: every holding with shares > 0, the cash
// balance and the summed holding totals (zero when nothing is held).
func (h *Handler) Index(c *gin.Context) {
	userID := h.userID(c)

	var holdings []models.Holding
	if err := h.DB.Where("user_id = ? AND shares > 0", userID).Find(&holdings).Error; err != nil {
		h.fail(c, "index", err)
		return
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		h.fail(c, "index", err)
		return
	}

	stocksTotal := decimal.Zero
	for _, holding := range holdings {
		stocksTotal = stocksTotal.Add(holding.Total)
	}

	c.JSON(http.StatusOK, gin.H{
		"holdings":    holdings,
		"cash":        user.Cash,
		"stocksTotal": stocksTotal,
		"grandTotal":  user.Cash.Add(stocksTotal),
	})
}

// History lists the user's transactions, newest first. Zero-delta rows
// are filtered out, mirroring the history page.
func (h *Handler) History(c *gin.Context) {
	var entries []models.Transaction
	err := h.DB.Where("user_id = ? AND shares <> 0", h.userID(c)).
		Order("timestamp desc").
		Find(&entries).Error
	if err != nil {
		h.fail(c, "history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

type FundsInput struct {
	NewFunds int64 `form:"newFunds" json:"newFunds" binding:"required,min=1"`
}

// FundsForm returns the current cash balance.
func (h *Handler) FundsForm(c *gin.Context) {
	var user models.User
	if err := h.DB.First(&user, h.userID(c)).Error; err != nil {
		h.fail(c, "funds", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cash": user.Cash})
}

// AddFunds credits the cash balance. Amounts below 1 are rejected
// rather than silently swallowed by integer parsing.
func (h *Handler) AddFunds(c *gin.Context) {
	userID := h.userID(c)

	var input FundsInput
	if err := c.ShouldBind(&input); err != nil {
		reject(c, http.StatusBadRequest, msgMissingFunds)
		return
	}

	tx := h.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		tx.Rollback()
		h.fail(c, "funds", err)
		return
	}
	user.Cash = user.Cash.Add(decimal.NewFromInt(input.NewFunds))
	if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("cash", user.Cash).Error; err != nil {
		tx.Rollback()
		h.fail(c, "funds", err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		h.fail(c, "funds", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cash": user.Cash})
}
