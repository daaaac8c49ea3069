package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tradesim/config"
	"tradesim/quotes"
	"tradesim/sessions"
)

// Handler carries the dependencies of every endpoint. Nothing is read
// from globals; the authenticated user id travels in the gin context.
type Handler struct {
	DB       *gorm.DB
	Quotes   *quotes.Client
	Sessions *sessions.Store
	Cfg      *config.Config
	Log      *logrus.Logger
}

func New(db *gorm.DB, qc *quotes.Client, store *sessions.Store, cfg *config.Config, log *logrus.Logger) *Handler {
	return &Handler{DB: db, Quotes: qc, Sessions: store, Cfg: cfg, Log: log}
}

// Routes mounts every endpoint. The auth middleware is injected so
// tests can substitute a stub that sets user_id directly.
func (h *Handler) Routes(r *gin.Engine, auth gin.HandlerFunc) {
	// Public routes
	r.GET("/login", h.LoginForm)
	r.POST("/login", h.Login)
	r.GET("/register", h.RegisterForm)
	r.POST("/register", h.Signup)
	r.GET("/logout", h.Logout)

	// Protected routes
	protected := r.Group("/")
	protected.Use(auth)
	{
		protected.GET("/", h.Index)
		protected.GET("/buy", h.BuyForm)
		protected.POST("/buy", h.Buy)
		protected.GET("/sell", h.SellForm)
		protected.POST("/sell", h.Sell)
		protected.GET("/quote", h.QuoteBySymbol)
		protected.POST("/quote", h.Quote)
		protected.GET("/history", h.History)
		protected.GET("/funds", h.FundsForm)
		protected.POST("/funds", h.AddFunds)
	}
}

func (h *Handler) userID(c *gin.Context) uint {
	return c.MustGet("user_id").(uint)
}
