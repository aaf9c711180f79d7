package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"aginventory/pkg/models"
	"aginventory/pkg/token"
	"aginventory/pkg/validators"
)

var (
	usernameLength = validators.Length{Min: 4, Max: 20}
	passwordLength = validators.Length{Min: 6, Max: 16}
	passwordRule   = validators.Password{}
)

func register(c *gin.Context) {
	var request struct {
		Email           string `json:"email" binding:"required,email"`
		Username        string `json:"username" binding:"required"`
		FirstName       string `json:"firstName" binding:"required"`
		LastName        string `json:"lastName" binding:"required"`
		Password        string `json:"password" binding:"required"`
		ConfirmPassword string `json:"confirmPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	if err := usernameLength.Validate(request.Username); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "username: " + err.Error()})
		return
	}
	if request.Password != request.ConfirmPassword {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "passwords do not match"})
		return
	}
	if err := passwordLength.Validate(request.Password); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "password: " + err.Error()})
		return
	}
	if err := passwordRule.Validate(request.Password); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	var count int64
	if err := db.Model(&models.Brother{}).Where("email = ?", request.Email).Count(&count).Error; err != nil {
		renderError(c, err)
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Email is already in use."})
		return
	}
	if err := db.Model(&models.Brother{}).Where("username = ?", request.Username).Count(&count).Error; err != nil {
		renderError(c, err)
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Username is already in use."})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		renderError(c, err)
		return
	}
	brother := models.Brother{
		Email:          request.Email,
		Username:       request.Username,
		FirstName:      request.FirstName,
		LastName:       request.LastName,
		PasswordHash:   string(hash),
		IsAdmin:        false,
		EmailConfirmed: false,
	}
	if err := db.Create(&brother).Error; err != nil {
		renderError(c, err)
		return
	}

	if err := sendConfirmationMail(c, brother); err != nil {
		log.Errorf("confirmation mail for %s failed: %v", brother.Email, err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "A confirmation email has been sent to the address you provided, please confirm before continuing",
	})
}

func sendConfirmationMail(c *gin.Context, brother models.Brother) error {
	raw, err := tokens.EmailToken(brother.Email, token.PurposeConfirm, token.ConfirmTTL)
	if err != nil {
		return err
	}
	link := confirmLink(c, "confirm_email", raw)
	html := fmt.Sprintf("<p>Please confirm your email by following this link:</p><p><a href=%q>%s</a></p>", link, link)
	return mail.Send(brother.Email, "Please Confirm Your Email", html)
}

func confirmLink(c *gin.Context, route, raw string) string {
	scheme := "http"
	if cfg.IsProduction() {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/api/v1/%s/%s", scheme, c.Request.Host, route, raw)
}

func login(c *gin.Context) {
	var request struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	var brother models.Brother
	err := db.Where("email = ?", request.Email).First(&brother).Error
	if errors.Is(err, gorm.ErrRecordNotFound) ||
		(err == nil && bcrypt.CompareHashAndPassword([]byte(brother.PasswordHash), []byte(request.Password)) != nil) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
		return
	}
	if err != nil {
		renderError(c, err)
		return
	}
	if !brother.EmailConfirmed {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unable to login until email is confirmed."})
		return
	}

	session, err := tokens.Session(brother)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":   session,
		"isAdmin": brother.IsAdmin,
	})
}

func logout(c *gin.Context) {
	// Sessions are stateless bearer tokens; the client discards it.
	c.JSON(http.StatusOK, gin.H{"message": "You have successfully been logged out."})
}

func confirmEmail(c *gin.Context) {
	email, err := tokens.ParseEmailToken(c.Param("token"), token.PurposeConfirm)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The confirmation link is invalid or has expired."})
		return
	}
	var brother models.Brother
	if err := db.Where("email = ?", email).First(&brother).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid link."})
		return
	}
	if brother.EmailConfirmed {
		c.JSON(http.StatusOK, gin.H{"message": "Account already confirmed. Please login."})
		return
	}
	brother.EmailConfirmed = true
	if err := db.Save(&brother).Error; err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "You have confirmed your account. Thanks!"})
}

func sendResetEmail(c *gin.Context) {
	var request struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	var brother models.Brother
	if err := db.Where("email = ?", request.Email).First(&brother).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown Email"})
			return
		}
		renderError(c, err)
		return
	}
	raw, err := tokens.EmailToken(brother.Email, token.PurposeReset, token.ResetTTL)
	if err != nil {
		renderError(c, err)
		return
	}
	link := confirmLink(c, "reset_password", raw)
	html := fmt.Sprintf("<p>To reset your password, follow this link:</p><p><a href=%q>%s</a></p>", link, link)
	if err := mail.Send(brother.Email, "Reset Password Link", html); err != nil {
		log.Errorf("reset mail for %s failed: %v", brother.Email, err)
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "A link to reset has been sent to the address you provided"})
}

func resetPassword(c *gin.Context) {
	email, err := tokens.ParseEmailToken(c.Param("token"), token.PurposeReset)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The confirmation link is invalid or has expired."})
		return
	}
	var request struct {
		NewPassword        string `json:"newPassword" binding:"required"`
		ConfirmNewPassword string `json:"confirmNewPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	if request.NewPassword != request.ConfirmNewPassword {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "passwords do not match"})
		return
	}
	if err := passwordLength.Validate(request.NewPassword); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "password: " + err.Error()})
		return
	}
	if err := passwordRule.Validate(request.NewPassword); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	var brother models.Brother
	if err := db.Where("email = ?", email).First(&brother).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid link."})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(request.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		renderError(c, err)
		return
	}
	brother.PasswordHash = string(hash)
	if err := db.Save(&brother).Error; err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "You have successfully reset your password!"})
}
