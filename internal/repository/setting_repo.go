package repository

import (
	"errors"
	"strconv"

	"go-pos-farmstall/internal/model"

	"gorm.io/gorm"
)

type SettingRepository interface {
	Get(key string) (string, error)
	Set(key, value string) error
	GetFloat(key string, fallback float64) float64
}

type settingRepo struct {
	db *gorm.DB
}

func NewSettingRepo(db *gorm.DB) SettingRepository {
	return &settingRepo{db}
}

func (r *settingRepo) Get(key string) (string, error) {
	var setting model.Setting
	if err := r.db.First(&setting, "key = ?", key).Error; err != nil {
		return "", err
	}
	return setting.Value, nil
}

// Set upserts the single row for key.
func (r *settingRepo) Set(key, value string) error {
	var setting model.Setting
	err := r.db.First(&setting, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(&model.Setting{Key: key, Value: value}).Error
	}
	if err != nil {
		return err
	}
	setting.Value = value
	return r.db.Save(&setting).Error
}

// GetFloat reads a numeric setting, falling back when the row is missing or
// holds a value that does not parse.
func (r *settingRepo) GetFloat(key string, fallback float64) float64 {
	raw, err := r.Get(key)
	if err != nil {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}
