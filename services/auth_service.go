package services

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/amorlink/amorlink/config"
	"github.com/amorlink/amorlink/db"
	apiError "github.com/amorlink/amorlink/errors"
	"github.com/amorlink/amorlink/models"
	jwtPackage "github.com/amorlink/amorlink/services/jwt"
	"github.com/amorlink/amorlink/services/utils"
	"gorm.io/gorm"
)

// Mailer sends account emails. Implemented by mailingservices.Mailgun.
type Mailer interface {
	SendRegistrationEmail(recipient, link string) (string, error)
}

type AuthService interface {
	SignupUser(user *models.User) (*models.User, *apiError.Error)
	LoginUser(loginRequest *models.LoginRequest) (*models.LoginResponse, *apiError.Error)
	SetPassword(token, password string) *apiError.Error
	LogoutUser(accessToken, email string) *apiError.Error
}

type authService struct {
	Config   *config.Config
	authRepo db.AuthRepository
	mail     Mailer
}

func NewAuthService(authRepo db.AuthRepository, mail Mailer, conf *config.Config) AuthService {
	return &authService{
		Config:   conf,
		authRepo: authRepo,
		mail:     mail,
	}
}

// SignupUser creates an account. With a password the account is immediately
// usable; without one it is a pre-registration and the user receives a mail
// with a token link to set the password later.
func (a *authService) SignupUser(user *models.User) (*models.User, *apiError.Error) {
	if err := a.authRepo.IsEmailExist(user.Email); err != nil {
		return nil, apiError.New("email already exists", http.StatusBadRequest)
	}
	if err := a.authRepo.IsCPFExist(user.CPF); err != nil {
		return nil, apiError.New("cpf already exists", http.StatusBadRequest)
	}

	if user.Password != "" {
		if err := models.ValidatePassword(user.Password); err != nil {
			return nil, apiError.New(err.Error(), http.StatusBadRequest)
		}
		hashed, err := utils.HashPassword(user.Password)
		if err != nil {
			log.Printf("failed to hash password: %v", err)
			return nil, apiError.ErrInternalServerError
		}
		user.HashedPassword = hashed
		user.Password = ""
		user.IsPasswordSet = true
	} else {
		token, err := utils.GenerateRegistrationToken(user.Email)
		if err != nil {
			log.Printf("failed to generate registration token: %v", err)
			return nil, apiError.ErrInternalServerError
		}
		expires := time.Now().Add(48 * time.Hour)
		user.RegistrationToken = token
		user.RegistrationTokenExpires = &expires
	}

	created, err := a.authRepo.CreateUser(user)
	if err != nil {
		return nil, apiError.GetUniqueContraintError(err)
	}

	if !created.IsPasswordSet && a.mail != nil {
		link := fmt.Sprintf("%s/register/%s", a.Config.BaseUrl, created.RegistrationToken)
		if _, err := a.mail.SendRegistrationEmail(created.Email, link); err != nil {
			log.Printf("failed to send registration email to %s: %v", created.Email, err)
		}
	}

	return created, nil
}

func (a *authService) LoginUser(loginRequest *models.LoginRequest) (*models.LoginResponse, *apiError.Error) {
	user, err := a.authRepo.FindUserByEmail(loginRequest.Email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apiError.New("invalid email or password", http.StatusUnauthorized)
		}
		log.Printf("failed to find user by email: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	if !user.IsActive {
		return nil, apiError.InActiveUserError
	}
	if !user.IsPasswordSet {
		return nil, apiError.New("password not set, check your registration email", http.StatusUnauthorized)
	}

	if err := utils.ComparePassword(user.HashedPassword, loginRequest.Password); err != nil {
		return nil, apiError.New("invalid email or password", http.StatusUnauthorized)
	}

	token, err := jwtPackage.GenerateToken(user.ID, user.Email, a.Config.JWTSecret)
	if err != nil {
		log.Printf("failed to generate access token: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	return &models.LoginResponse{
		UserResponse: user.ToResponse(),
		AccessToken:  token,
	}, nil
}

func (a *authService) SetPassword(token, password string) *apiError.Error {
	claims, err := utils.VerifyRegistrationToken(token)
	if err != nil {
		return apiError.New("invalid or expired registration token", http.StatusUnauthorized)
	}

	user, err := a.authRepo.FindUserByRegistrationToken(token)
	if err != nil || user.Email != claims.Email {
		return apiError.New("invalid or expired registration token", http.StatusUnauthorized)
	}

	if err := models.ValidatePassword(password); err != nil {
		return apiError.New(err.Error(), http.StatusBadRequest)
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		log.Printf("failed to hash password: %v", err)
		return apiError.ErrInternalServerError
	}

	if err := a.authRepo.UpdatePassword(hashed, user.Email); err != nil {
		log.Printf("failed to update password: %v", err)
		return apiError.ErrInternalServerError
	}
	return nil
}

func (a *authService) LogoutUser(accessToken, email string) *apiError.Error {
	blacklist := &models.Blacklist{
		Email: email,
		Token: accessToken,
	}
	if err := a.authRepo.AddToBlackList(blacklist); err != nil {
		log.Printf("failed to blacklist token: %v", err)
		return apiError.ErrInternalServerError
	}
	return nil
}
