package handlers

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/gildgrove/gildgrove-golang/internal/auth"
	"github.com/gildgrove/gildgrove-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Account Handlers ---
//

// RegisterInput is separate from models.User because we never accept an
// 'id', 'role' or 'status' from the client.
type RegisterInput struct {
	FullName    string `json:"fullName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}

// Register is the handler for POST /v1/register
func (h *Handlers) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	now := time.Now()
	query := `
		INSERT INTO users (role, status, email, password_hash, full_name, phone_number, created_at, updated_at)
		VALUES ('customer', 'active', ?, ?, ?, ?, ?, ?)`

	result, err := h.DB.Exec(query, strings.ToLower(input.Email), password.Hash, input.FullName, input.PhoneNumber, now, now)
	if err != nil {
		// MySQL error 1062 = duplicate key on the unique email index.
		if strings.Contains(err.Error(), "1062") {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	userID, _ := result.LastInsertId()
	token, err := auth.GenerateToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Account created but token generation failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created",
		"token":   token,
		"userId":  userID,
	})
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /v1/login
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	query := "SELECT id, role, status, password_hash FROM users WHERE email = ?"
	err := h.DB.QueryRow(query, strings.ToLower(input.Email)).Scan(&user.ID, &user.Role, &user.Status, &user.PasswordHash)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	password := models.Password{Hash: user.PasswordHash}
	matches, err := password.Matches(input.Password)
	if err != nil || !matches {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if user.Status == "suspended" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account suspended"})
		return
	}

	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"role":  user.Role,
	})
}

// GetMyProfile is the handler for GET /v1/profile/me
func (h *Handlers) GetMyProfile(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	var u models.User
	query := `
		SELECT id, role, status, email, full_name, phone_number,
		       address_line1, address_line2, city, province, postcode,
		       created_at, updated_at
		FROM users WHERE id = ?`

	err := h.DB.QueryRow(query, userID).Scan(
		&u.ID, &u.Role, &u.Status, &u.Email, &u.FullName, &u.PhoneNumber,
		&u.AddressLine1, &u.AddressLine2, &u.City, &u.Province, &u.Postcode,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": u})
}

type UpdateProfileInput struct {
	FullName     string  `json:"fullName" binding:"required"`
	PhoneNumber  string  `json:"phoneNumber" binding:"required"`
	AddressLine1 *string `json:"addressLine1"`
	AddressLine2 *string `json:"addressLine2"`
	City         *string `json:"city"`
	Province     *string `json:"province"`
	Postcode     *string `json:"postcode"`
}

// UpdateMyProfile is the handler for PUT /v1/profile/me
func (h *Handlers) UpdateMyProfile(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := `
		UPDATE users
		SET full_name = ?, phone_number = ?, address_line1 = ?, address_line2 = ?,
		    city = ?, province = ?, postcode = ?, updated_at = ?
		WHERE id = ?`

	_, err := h.DB.Exec(query, input.FullName, input.PhoneNumber,
		input.AddressLine1, input.AddressLine2, input.City, input.Province, input.Postcode,
		time.Now(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}

//
// --- Password Reset (OTP) ---
//

// generateOTP returns a 6-digit code. Delivery (email/SMS) is an
// external collaborator; we only generate, store and verify.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword is the handler for POST /v1/auth/forgot-password.
// It always answers 200 so the endpoint can't be used to probe which
// emails have accounts.
func (h *Handlers) ForgotPassword(c *gin.Context) {
	var input ForgotPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code, err := generateOTP()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate reset code"})
		return
	}
	expiry := time.Now().Add(15 * time.Minute)

	result, err := h.DB.Exec(
		"UPDATE users SET reset_code = ?, reset_expiry = ?, updated_at = ? WHERE email = ?",
		code, expiry, time.Now(), strings.ToLower(input.Email))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start password reset"})
		return
	}

	if n, _ := result.RowsAffected(); n > 0 {
		// Hand-off point for the delivery collaborator.
		log.Printf("Password reset OTP issued for %s", input.Email)
	}

	c.JSON(http.StatusOK, gin.H{"message": "If that email has an account, a reset code has been sent"})
}

type ResetPasswordInput struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// ResetPassword is the handler for POST /v1/auth/reset-password
func (h *Handlers) ResetPassword(c *gin.Context) {
	var input ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var userID int64
	var storedCode sql.NullString
	var expiry sql.NullTime
	query := "SELECT id, reset_code, reset_expiry FROM users WHERE email = ?"
	err := h.DB.QueryRow(query, strings.ToLower(input.Email)).Scan(&userID, &storedCode, &expiry)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset code"})
		return
	}

	if !storedCode.Valid || storedCode.String != input.Code ||
		!expiry.Valid || time.Now().After(expiry.Time) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset code"})
		return
	}

	var password models.Password
	if err := password.Set(input.NewPassword); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	_, err = h.DB.Exec(
		"UPDATE users SET password_hash = ?, reset_code = NULL, reset_expiry = NULL, updated_at = ? WHERE id = ?",
		password.Hash, time.Now(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}

//
// --- Admin: Customer Management ---
//

// GetCustomers is the handler for GET /v1/admin/customers
func (h *Handlers) GetCustomers(c *gin.Context) {
	query := `
		SELECT id, role, status, email, full_name, phone_number, created_at, updated_at
		FROM users
		WHERE role = 'customer'
		ORDER BY created_at DESC`

	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch customers"})
		return
	}
	defer rows.Close()

	var customers []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Role, &u.Status, &u.Email, &u.FullName, &u.PhoneNumber, &u.CreatedAt, &u.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan customer"})
			return
		}
		customers = append(customers, u)
	}

	if customers == nil {
		customers = []models.User{}
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

type SetCustomerStatusInput struct {
	Status string `json:"status" binding:"required,oneof=active suspended"`
}

// SetCustomerStatus is the handler for PATCH /v1/admin/customers/:id/status
func (h *Handlers) SetCustomerStatus(c *gin.Context) {
	customerID := c.Param("id")

	var input SetCustomerStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.DB.Exec(
		"UPDATE users SET status = ?, updated_at = ? WHERE id = ? AND role = 'customer'",
		input.Status, time.Now(), customerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update customer"})
		return
	}

	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer status updated", "status": input.Status})
}
