package auth

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type adminUserModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Name         string `gorm:"size:255"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (adminUserModel) TableName() string { return "admin_users" }

func (m *adminUserModel) toDomain() *AdminUser {
	return &AdminUser{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Name:         m.Name,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// AdminRepository stores dashboard accounts in the admin_users table.
type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&adminUserModel{})
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*AdminUser, error) {
	var m adminUserModel
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

func (r *AdminRepository) Create(ctx context.Context, user *AdminUser) error {
	m := adminUserModel{
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Name:         user.Name,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return err
	}
	user.ID = m.ID
	user.CreatedAt = m.CreatedAt
	user.UpdatedAt = m.UpdatedAt
	return nil
}
