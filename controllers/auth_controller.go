package controllers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/planner/middleware"
	"github.com/cppla/planner/models"
	"github.com/cppla/planner/utils"
)

const maxDisplayNameRunes = 64

// AuthController handles sign-up, sign-in, sign-out and the current-user endpoints.
type AuthController struct {
	db *gorm.DB
	// sendMail is replaced in tests.
	sendMail func(to, name string) error
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db, sendMail: utils.SendConfirmationMail}
}

type authResponse struct {
	Token            string       `json:"token"`
	User             *models.User `json:"user"`
	ConfirmationSent bool         `json:"confirmation_sent,omitempty"`
}

// Register creates an account from email, password and display name.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		Confirm     string `json:"confirm"`
		DisplayName string `json:"display_name"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, err.Error())
		return
	}
	if req.Password != req.Confirm {
		utils.Error(ctx, http.StatusBadRequest, 40003, "passwords do not match")
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, err.Error())
		return
	}
	name := utils.StripTags(req.DisplayName)
	if len([]rune(name)) > maxDisplayNameRunes {
		utils.Error(ctx, http.StatusBadRequest, 40005, "display name is too long")
		return
	}

	ip := ctx.ClientIP()
	if !utils.RegistrationCooldownTry(ip) {
		utils.Error(ctx, http.StatusTooManyRequests, 42910, "too many attempts, try again shortly")
		return
	}
	if !utils.RegistrationDailyLimitCheck(ip) {
		utils.Error(ctx, http.StatusTooManyRequests, 42911, "daily registration limit reached")
		return
	}

	var count int64
	if err := a.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to check email")
		return
	}
	if count > 0 {
		utils.Error(ctx, http.StatusConflict, 40901, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to hash password")
		return
	}
	user := models.User{Email: email, DisplayName: name, PasswordHash: hash}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Sugar.Errorw("create user failed", "email", email, "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to create user")
		return
	}
	utils.RegistrationDailyIncrement(ip)

	token, err := utils.GenerateToken(user.ID, user.Email, utils.TokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	sent := false
	if utils.MailConfigured() {
		if err := a.sendMail(user.Email, user.DisplayName); err != nil {
			utils.Sugar.Warnw("confirmation mail failed", "user_id", user.ID, "error", err)
		} else {
			sent = true
		}
	}
	utils.Success(ctx, authResponse{Token: token, User: &user, ConfirmationSent: sent})
}

// Login exchanges email and password for a token.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40006, "email and password are required")
		return
	}

	var user models.User
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Sugar.Errorw("login lookup failed", "error", err)
		}
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, utils.TokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}
	utils.Success(ctx, authResponse{Token: token, User: &user})
}

// Logout revokes the bearer token until it would have expired.
func (a *AuthController) Logout(ctx *gin.Context) {
	token := ctx.GetString(middleware.ContextTokenKey)
	if token == "" {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "invalid authorization header")
		return
	}
	utils.BlacklistToken(token, utils.TokenExpiry(token).Add(time.Second))
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the current authenticated user.
func (a *AuthController) Me(ctx *gin.Context) {
	user, ok := a.currentUser(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, user)
}

// UpdateProfile changes the display name.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	user, ok := a.currentUser(ctx)
	if !ok {
		return
	}
	var req struct {
		DisplayName *string `json:"display_name"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}
	if req.DisplayName != nil {
		name := utils.StripTags(*req.DisplayName)
		if len([]rune(name)) > maxDisplayNameRunes {
			utils.Error(ctx, http.StatusBadRequest, 40005, "display name is too long")
			return
		}
		user.DisplayName = name
	}
	if err := a.db.Save(user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to update profile")
		return
	}
	utils.Success(ctx, user)
}

func (a *AuthController) currentUser(ctx *gin.Context) (*models.User, bool) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return nil, false
	}
	var user models.User
	if err := a.db.Where("id = ?", userID).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return nil, false
	}
	return &user, true
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", errors.New("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return "", errors.New("email is not a valid address")
	}
	return email, nil
}
