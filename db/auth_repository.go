package db

import (
	"log"
	"strings"

	"github.com/amorlink/amorlink/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type AuthRepository interface {
	CreateUser(user *models.User) (*models.User, error)
	IsEmailExist(email string) error
	IsCPFExist(cpf string) error
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id uint) (*models.User, error)
	FindUserByPhone(phone string) (*models.User, error)
	FindUserByRegistrationToken(token string) (*models.User, error)
	UpdateUser(user *models.User) error
	UpdatePassword(password string, email string) error
	AddToBlackList(blacklist *models.Blacklist) error
	IsTokenInBlacklist(token string) bool
	UpdateUserOnlineStatus(userID uint, online bool) error
}

type authRepo struct {
	DB *gorm.DB
}

func NewAuthRepo(db *GormDB) AuthRepository {
	return &authRepo{db.DB}
}

func (a *authRepo) CreateUser(user *models.User) (*models.User, error) {
	if user == nil {
		log.Println("CreateUser error: user is nil")
		return nil, errors.New("user is nil")
	}

	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.Phone = models.NormalizePhone(user.Phone)

	if err := a.DB.Create(user).Error; err != nil {
		return nil, errors.Wrap(err, "gorm.Create user error")
	}
	return user, nil
}

func (a *authRepo) IsEmailExist(email string) error {
	var count int64
	err := a.DB.Model(&models.User{}).Where("email = ?", strings.ToLower(email)).Count(&count).Error
	if err != nil {
		return errors.Wrap(err, "gorm.count error")
	}
	if count > 0 {
		return errors.New("email already in use")
	}
	return nil
}

func (a *authRepo) IsCPFExist(cpf string) error {
	var count int64
	err := a.DB.Model(&models.User{}).Where("cpf = ?", cpf).Count(&count).Error
	if err != nil {
		return errors.Wrap(err, "gorm.count error")
	}
	if count > 0 {
		return errors.New("cpf already in use")
	}
	return nil
}

func (a *authRepo) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := a.DB.Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *authRepo) FindUserByID(id uint) (*models.User, error) {
	var user models.User
	err := a.DB.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *authRepo) FindUserByPhone(phone string) (*models.User, error) {
	var user models.User
	err := a.DB.Where("phone = ?", models.NormalizePhone(phone)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *authRepo) FindUserByRegistrationToken(token string) (*models.User, error) {
	var user models.User
	err := a.DB.Where("registration_token = ?", token).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *authRepo) UpdateUser(user *models.User) error {
	return a.DB.Save(user).Error
}

func (a *authRepo) UpdatePassword(password string, email string) error {
	result := a.DB.Model(&models.User{}).
		Where("email = ?", strings.ToLower(email)).
		Updates(map[string]interface{}{"hashed_password": password, "is_password_set": true})
	if result.Error != nil {
		return errors.Wrap(result.Error, "gorm.update password error")
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (a *authRepo) AddToBlackList(blacklist *models.Blacklist) error {
	err := a.DB.Create(blacklist).Error
	return errors.Wrap(err, "gorm.Create blacklist error")
}

func (a *authRepo) IsTokenInBlacklist(token string) bool {
	var count int64
	a.DB.Model(&models.Blacklist{}).Where("token = ?", token).Count(&count)
	return count > 0
}

func (a *authRepo) UpdateUserOnlineStatus(userID uint, online bool) error {
	return a.DB.Model(&models.User{}).Where("id = ?", userID).Update("online", online).Error
}
