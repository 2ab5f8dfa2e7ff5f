package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// BcryptCost is the fixed cost factor for password hashing.
const BcryptCost = 10

func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored hash. It
// never distinguishes why a mismatch happened.
func CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Register(c *gin.Context) {
	var body RegisterRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if body.Name == "" || body.Email == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "All fields are required",
			"missing": gin.H{
				"name":     body.Name == "",
				"email":    body.Email == "",
				"password": body.Password == "",
			},
		})
		return
	}

	var existing User
	err := DB.Where("email = ?", body.Email).First(&existing).Error
	if err == nil {
		jsonError(c, http.StatusBadRequest, "Email already exists")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error().Err(err).Msg("checking existing email")
		jsonError(c, http.StatusInternalServerError, "Error registering user")
		return
	}

	hash, err := HashPassword(body.Password)
	if err != nil {
		log.Error().Err(err).Msg("hashing password")
		jsonError(c, http.StatusInternalServerError, "Error registering user")
		return
	}

	user := User{Name: body.Name, Email: body.Email, Password: hash}
	if err := DB.Create(&user).Error; err != nil {
		// The unique index on email catches registrations racing past
		// the check above.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			jsonError(c, http.StatusBadRequest, "Email already exists")
			return
		}
		log.Error().Err(err).Msg("creating user")
		jsonError(c, http.StatusInternalServerError, "Error registering user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Login(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body LoginRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			jsonError(c, http.StatusBadRequest, "Invalid request body")
			return
		}

		var user User
		if err := DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Error().Err(err).Msg("looking up user")
			}
			// Unknown email and wrong password answer the same.
			jsonError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		if !CheckPassword(body.Password, user.Password) {
			jsonError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		token, err := tokens.Generate(user.ID)
		if err != nil {
			log.Error().Err(err).Msg("generating token")
			jsonError(c, http.StatusInternalServerError, "Error logging in")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user":  gin.H{"id": user.ID, "name": user.Name},
		})
	}
}
