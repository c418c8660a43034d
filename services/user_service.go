package services

import (
	"context"
	"errors"
	"strings"

	"blog/models"

	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register creates an active, non-staff account.
func (s *UserService) Register(ctx context.Context, form models.RegisterForm) (*models.User, error) {
	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.ToLower(strings.TrimSpace(form.Email))

	fe, err := models.AsFormErrors(form.Validate())
	if err != nil {
		return nil, err
	}
	if fe == nil {
		fe = models.FormErrors{}
	}

	if _, ok := fe["username"]; !ok {
		if taken, err := s.exists(ctx, "LOWER(username) = LOWER(?)", form.Username); err != nil {
			return nil, err
		} else if taken {
			fe.Add("username", "A user with that username already exists.")
		}
	}
	if _, ok := fe["email"]; !ok {
		if taken, err := s.exists(ctx, "email = ?", form.Email); err != nil {
			return nil, err
		} else if taken {
			fe.Add("email", "A user with that email already exists.")
		}
	}
	if len(fe) > 0 {
		return nil, fe
	}

	user := &models.User{
		Email:     form.Email,
		Username:  form.Username,
		Password:  form.Password,
		FirstName: strings.TrimSpace(form.FirstName),
		LastName:  strings.TrimSpace(form.LastName),
		IsActive:  true,
	}

	if err := user.HashPassword(); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.FormErrors{"username": "A user with that username already exists."}
		}
		return nil, err
	}

	return user, nil
}

func (s *UserService) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Unscoped().Where(query, args...).Count(&n).Error
	return n > 0, err
}

// Authenticate checks a username/password pair against active accounts.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive || !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// ChangePassword verifies the old password before storing the new one.
func (s *UserService) ChangePassword(ctx context.Context, user *models.User, form models.PasswordChangeForm) error {
	fe, err := models.AsFormErrors(form.Validate())
	if err != nil {
		return err
	}
	if fe == nil {
		fe = models.FormErrors{}
	}
	if form.OldPassword != "" && !user.CheckPassword(form.OldPassword) {
		fe.Add("old_password", "Your old password was entered incorrectly. Please enter it again.")
	}
	if len(fe) > 0 {
		return fe
	}
	return s.SetPassword(ctx, user, form.NewPassword)
}

func (s *UserService) SetPassword(ctx context.Context, user *models.User, password string) error {
	if err := user.SetPassword(password); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(user).Update("password", user.Password).Error
}
