package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tradesim/models"
)

type TradeInput struct {
	Symbol string `form:"symbol" json:"symbol"`
	Shares int64  `form:"shares" json:"shares"`
}

// BuyForm returns the data the buy page needs: the user's cash.
func (h *Handler) BuyForm(c *gin.Context) {
	var user models.User
	if err := h.DB.First(&user, h.userID(c)).Error; err != nil {
		h.fail(c, "buy", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cash": user.Cash})
}

// Buy purchases shares at the current quote. The read-modify-write
// sequence over cash, holding and history runs in one transaction.
func (h *Handler) Buy(c *gin.Context) {
	userID := h.userID(c)

	var input TradeInput
	if err := c.ShouldBind(&input); err != nil || input.Symbol == "" {
		reject(c, http.StatusBadRequest, msgMissingSymbol)
		return
	}
	if input.Shares < 1 {
		reject(c, http.StatusBadRequest, msgMissingShares)
		return
	}

	quote, err := h.Quotes.Lookup(c.Request.Context(), input.Symbol)
	if err != nil {
		h.Log.WithError(err).WithField("symbol", input.Symbol).Warn("quote lookup failed")
		reject(c, http.StatusForbidden, msgQuoteUnavailable)
		return
	}
	cost := quote.LatestPrice.Mul(decimal.NewFromInt(input.Shares))

	tx := h.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		tx.Rollback()
		h.fail(c, "buy", err)
		return
	}
	if cost.GreaterThan(user.Cash) {
		tx.Rollback()
		reject(c, http.StatusBadRequest, msgInsufficientFunds)
		return
	}

	// Upsert the holding by (user, symbol). A nonzero position grows
	// and the whole position re-prices at the new quote; total is
	// shares * latest price, not a weighted-average cost basis.
	var holding models.Holding
	err = tx.Where("user_id = ? AND symbol = ?", userID, quote.Symbol).First(&holding).Error
	switch {
	case err == nil && holding.Shares > 0:
		holding.Shares += input.Shares
	case err == nil:
		holding.Name = quote.CompanyName
		holding.Shares = input.Shares
	case errors.Is(err, gorm.ErrRecordNotFound):
		holding = models.Holding{
			UserID: userID,
			Symbol: quote.Symbol,
			Name:   quote.CompanyName,
			Shares: input.Shares,
		}
	default:
		tx.Rollback()
		h.fail(c, "buy", err)
		return
	}
	holding.Price = quote.LatestPrice
	holding.Total = quote.LatestPrice.Mul(decimal.NewFromInt(holding.Shares))

	if err := tx.Save(&holding).Error; err != nil {
		tx.Rollback()
		h.fail(c, "buy", err)
		return
	}

	entry := models.Transaction{
		UserID:    userID,
		Symbol:    quote.Symbol,
		Shares:    input.Shares,
		Price:     quote.LatestPrice,
		Timestamp: time.Now(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		tx.Rollback()
		h.fail(c, "buy", err)
		return
	}

	user.Cash = user.Cash.Sub(cost)
	if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("cash", user.Cash).Error; err != nil {
		tx.Rollback()
		h.fail(c, "buy", err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		h.fail(c, "buy", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol": quote.Symbol,
		"shares": holding.Shares,
		"price":  quote.LatestPrice,
		"total":  holding.Total,
		"cash":   user.Cash,
	})
}

// SellForm returns the symbols the user can sell.
func (h *Handler) SellForm(c *gin.Context) {
	var symbols []string
	err := h.DB.Model(&models.Holding{}).
		Where("user_id = ? AND shares > 0", h.userID(c)).
		Pluck("symbol", &symbols).Error
	if err != nil {
		h.fail(c, "sell", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbols": symbols})
}

// Sell sells shares at the current quote. Zero-share rows are kept.
func (h *Handler) Sell(c *gin.Context) {
	userID := h.userID(c)

	var input TradeInput
	if err := c.ShouldBind(&input); err != nil || input.Symbol == "" {
		reject(c, http.StatusBadRequest, msgMissingSymbol)
		return
	}
	if input.Shares < 1 {
		reject(c, http.StatusBadRequest, msgMissingShares)
		return
	}

	quote, err := h.Quotes.Lookup(c.Request.Context(), input.Symbol)
	if err != nil {
		h.Log.WithError(err).WithField("symbol", input.Symbol).Warn("quote lookup failed")
		reject(c, http.StatusForbidden, msgQuoteUnavailable)
		return
	}
	proceeds := quote.LatestPrice.Mul(decimal.NewFromInt(input.Shares))

	tx := h.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var holding models.Holding
	err = tx.Where("user_id = ? AND symbol = ?", userID, quote.Symbol).First(&holding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && input.Shares > holding.Shares) {
		tx.Rollback()
		reject(c, http.StatusBadRequest, msgInsufficientShares)
		return
	}
	if err != nil {
		tx.Rollback()
		h.fail(c, "sell", err)
		return
	}

	holding.Shares -= input.Shares
	holding.Price = quote.LatestPrice
	holding.Total = quote.LatestPrice.Mul(decimal.NewFromInt(holding.Shares))
	if err := tx.Save(&holding).Error; err != nil {
		tx.Rollback()
		h.fail(c, "sell", err)
		return
	}

	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		tx.Rollback()
		h.fail(c, "sell", err)
		return
	}
	user.Cash = user.Cash.Add(proceeds)
	if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("cash", user.Cash).Error; err != nil {
		tx.Rollback()
		h.fail(c, "sell", err)
		return
	}

	entry := models.Transaction{
		UserID:    userID,
		Symbol:    quote.Symbol,
		Shares:    -input.Shares,
		Price:     quote.LatestPrice,
		Timestamp: time.Now(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		tx.Rollback()
		h.fail(c, "sell", err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		h.fail(c, "sell", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol": quote.Symbol,
		"shares": holding.Shares,
		"price":  quote.LatestPrice,
		"total":  holding.Total,
		"cash":   user.Cash,
	})
}

// Quote looks up a symbol. A pure read, no persistence.
func (h *Handler) Quote(c *gin.Context) {
	var input TradeInput
	if err := c.ShouldBind(&input); err != nil || input.Symbol == "" {
		reject(c, http.StatusBadRequest, msgMissingSymbol)
		return
	}
	h.renderQuote(c, input.Symbol)
}

// QuoteBySymbol serves GET /quote?symbol=X.
func (h *Handler) QuoteBySymbol(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		reject(c, http.StatusBadRequest, msgMissingSymbol)
		return
	}
	h.renderQuote(c, symbol)
}

func (h *Handler) renderQuote(c *gin.Context, symbol string) {
	quote, err := h.Quotes.Lookup(c.Request.Context(), symbol)
	if err != nil {
		h.Log.WithError(err).WithField("symbol", symbol).Warn("quote lookup failed")
		reject(c, http.StatusForbidden, msgQuoteUnavailable)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"symbol":      quote.Symbol,
		"companyName": quote.CompanyName,
		"latestPrice": quote.LatestPrice,
	})
}
