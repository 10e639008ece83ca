package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	goval "github.com/go-passwd/validator"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/leebenson/conform"
)

const (
	RoleUser  = "user"
	RoleModel = "model"
	RoleAdmin = "admin"
)

// User represents a participant of the platform. Models are users with
// Role = "model"; their public profile lives in ModelProfile.
type User struct {
	Model
	Name                     string     `json:"name" binding:"required,min=2" conform:"trim"`
	Email                    string     `json:"email" gorm:"unique;not null" binding:"required,email" conform:"trim,lower"`
	CPF                      string     `json:"cpf" gorm:"unique;not null" binding:"required" conform:"trim"`
	Phone                    string     `json:"phone" gorm:"not null;index" binding:"required" conform:"trim"`
	Password                 string     `json:"password,omitempty" gorm:"-" validate:"omitempty,min=6"`
	HashedPassword           string     `json:"-"`
	Credits                  int        `json:"credits" gorm:"default:0"`
	Role                     string     `json:"role" gorm:"default:user"`
	IsActive                 bool       `json:"is_active" gorm:"default:true"`
	IsPasswordSet            bool       `json:"-" gorm:"default:false"`
	RegistrationToken        string     `json:"-" gorm:"default:null"`
	RegistrationTokenExpires *time.Time `json:"-"`
	Avatar                   string     `json:"avatar,omitempty"`
	Online                   bool       `json:"online"`
	AccessToken              string     `json:"-" gorm:"-"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" conform:"trim,lower"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	UserResponse
	AccessToken string `json:"access_token"`
}

type UserResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Role    string `json:"role"`
	Credits int    `json:"credits"`
	Avatar  string `json:"avatar,omitempty"`
}

type SetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// Blacklist holds revoked access tokens
type Blacklist struct {
	Model
	Email string `json:"email"`
	Token string `json:"token"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Phone:   u.Phone,
		Role:    u.Role,
		Credits: u.Credits,
		Avatar:  u.Avatar,
	}
}

// NormalizePhone reduces a phone number to canonical digits-only form,
// the shape the WhatsApp bridge uses as counterpart identity.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func ValidatePassword(password string) error {
	passwordValidator := goval.New(goval.MinLength(6, errors.New("password cant be less than 6 characters")),
		goval.MaxLength(15, errors.New("password cant be more than 15 characters")))
	err := passwordValidator.Validate(password)
	return err
}

func validateWhiteSpaces(data interface{}) error {
	return conform.Strings(data)
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	validatorErrs := err.(validator.ValidationErrors)
	for _, e := range validatorErrs {
		translatedErr := fmt.Errorf(e.Translate(trans) + "; ")
		errs = append(errs, translatedErr)
	}
	return errs
}
