package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/kargodata/forwarding_backend/config"
	"bitbucket.org/kargodata/forwarding_backend/utils"
	"gorm.io/gorm"
)

type User struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"index;not null" json:"business_id"`
	Username   string    `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Password   string    `gorm:"size:100;not null" json:"-"`
	Role       UserRole  `gorm:"size:1;not null;default:'S'" json:"role"`
	IsActive   *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserSession is what the session middleware restores from redis per request.
type UserSession struct {
	UserId     int      `json:"user_id"`
	BusinessId string   `json:"business_id"`
	Username   string   `json:"username"`
	Name       string   `json:"name"`
	Role       UserRole `json:"role"`
}

var ErrInvalidCredentials = errors.New("invalid username or password")

// Login checks the password, issues a JWT and caches the session in redis
// under the token so the middleware can restore it without a DB hit.
func Login(ctx context.Context, input *LoginInput) (string, *UserSession, error) {
	var user User
	db := config.GetDB()
	err := db.WithContext(ctx).Where("username = ?", input.Username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if user.IsActive == nil || !*user.IsActive {
		return "", nil, ErrInvalidCredentials
	}
	if err := utils.ComparePassword(user.Password, input.Password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.JwtGenerate(user.ID, user.BusinessId, string(user.Role))
	if err != nil {
		return "", nil, err
	}

	session := UserSession{
		UserId:     user.ID,
		BusinessId: user.BusinessId,
		Username:   user.Username,
		Name:       user.Name,
		Role:       user.Role,
	}
	if err := config.SetRedisObject("Token:"+token, &session, utils.GetCacheLifespan()); err != nil {
		config.LogError(config.GetLogger(), "models", "Login", "cache session", user.Username, err)
	}

	return token, &session, nil
}

type NewUser struct {
	Username string   `json:"username" binding:"required"`
	Name     string   `json:"name" binding:"required"`
	Password string   `json:"password" binding:"required,min=8"`
	Role     UserRole `json:"role"`
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := utils.ValidateUnique[User](ctx, "", "username", input.Username, 0); err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = UserRoleStaff
	}

	user := User{
		BusinessId: businessId,
		Username:   input.Username,
		Name:       input.Name,
		Password:   string(hashed),
		Role:       role,
		IsActive:   utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
