package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tradesim/models"
)

type LoginInput struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

type RegisterInput struct {
	Username      string `form:"username" json:"username"`
	Password      string `form:"password" json:"password"`
	PasswordAgain string `form:"passwordAgain" json:"passwordAgain"`
}

// RegisterForm is the JSON stand-in for the registration page.
func (h *Handler) RegisterForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fields": []string{"username", "password", "passwordAgain"}})
}

// Signup registers a new user with the default starting cash. It does
// not establish a session; the client logs in afterwards.
func (h *Handler) Signup(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBind(&input); err != nil {
		reject(c, http.StatusBadRequest, err.Error())
		return
	}

	if input.Username == "" {
		reject(c, http.StatusBadRequest, msgMissingUsername)
		return
	}
	if input.Password == "" || input.PasswordAgain == "" {
		reject(c, http.StatusBadRequest, msgMissingPassword)
		return
	}
	if input.Password != input.PasswordAgain {
		reject(c, http.StatusBadRequest, msgPasswordMismatch)
		return
	}

	var existing models.User
	err := h.DB.Where("username = ?", input.Username).First(&existing).Error
	if err == nil {
		reject(c, http.StatusBadRequest, msgUsernameTaken)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		h.fail(c, "signup", err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		h.fail(c, "signup", err)
		return
	}

	user := models.User{
		Username:     input.Username,
		PasswordHash: string(hashed),
		Cash:         h.Cfg.DefaultCash,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		// The unique index closes the check-then-insert window.
		reject(c, http.StatusBadRequest, msgUsernameTaken)
		return
	}

	h.Log.WithField("username", user.Username).Info("user registered")
	c.JSON(http.StatusCreated, gin.H{"message": "user created successfully"})
}

// LoginForm is the JSON stand-in for the login page.
func (h *Handler) LoginForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fields": []string{"username", "password"}})
}

// Login verifies the password, opens a Redis-backed session (cookie)
// and additionally issues a Bearer access token for API clients.
func (h *Handler) Login(c *gin.Context) {
	// Forget any previous session first.
	if id, err := c.Cookie("session"); err == nil && id != "" {
		_ = h.Sessions.Destroy(c.Request.Context(), id)
	}

	var input LoginInput
	if err := c.ShouldBind(&input); err != nil {
		reject(c, http.StatusBadRequest, err.Error())
		return
	}
	if input.Username == "" {
		reject(c, http.StatusBadRequest, msgMissingUsername)
		return
	}
	if input.Password == "" {
		reject(c, http.StatusBadRequest, msgMissingPassword)
		return
	}

	var user models.User
	if err := h.DB.Where("username = ?", input.Username).First(&user).Error; err != nil {
		reject(c, http.StatusForbidden, msgInvalidCredentials)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		reject(c, http.StatusForbidden, msgInvalidCredentials)
		return
	}

	sessionID, err := h.Sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		h.fail(c, "login", err)
		return
	}
	c.SetCookie("session", sessionID, int(h.Sessions.TTL().Seconds()), "/", "", false, true)

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(h.Sessions.TTL()).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString([]byte(h.Cfg.JWTSecret))
	if err != nil {
		h.fail(c, "login", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": accessToken})
}

// Logout clears the session unconditionally.
func (h *Handler) Logout(c *gin.Context) {
	if id, err := c.Cookie("session"); err == nil && id != "" {
		_ = h.Sessions.Destroy(c.Request.Context(), id)
	}
	c.SetCookie("session", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
