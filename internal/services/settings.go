package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/catering-app/internal/models"
)

var ErrAlreadyConfigured = errors.New("business_already_configured")

type SettingsInput struct {
	Name       string
	Phone      string
	Email      string
	Address1   string
	Address2   string
	City       string
	Country    string
	Currency   string
	TaxEnabled bool
	TaxRate    float64
	UserID     uint // required: owner user performing setup
}

// SettingsService manages the single business profile record.
type SettingsService struct{ DB *gorm.DB }

func NewSettingsService(db *gorm.DB) *SettingsService { return &SettingsService{DB: db} }

func (s *SettingsService) IsConfigured() (bool, error) {
	var count int64
	if err := s.DB.Model(&models.BusinessSettings{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *SettingsService) Run(in SettingsInput) (*models.BusinessSettings, error) {
	configured, err := s.IsConfigured()
	if err != nil {
		return nil, err
	}
	if configured {
		return nil, ErrAlreadyConfigured
	}
	if in.UserID == 0 {
		return nil, errors.New("missing_user_id")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.New("missing_business_name")
	}
	cur := strings.ToUpper(strings.TrimSpace(in.Currency))
	if cur == "" {
		cur = "EUR"
	}
	bs := models.BusinessSettings{
		UserID:     in.UserID,
		Name:       strings.TrimSpace(in.Name),
		Phone:      strings.TrimSpace(in.Phone),
		Email:      strings.TrimSpace(in.Email),
		Address1:   strings.TrimSpace(in.Address1),
		Address2:   strings.TrimSpace(in.Address2),
		City:       strings.TrimSpace(in.City),
		Country:    strings.ToUpper(strings.TrimSpace(in.Country)),
		Currency:   cur,
		TaxEnabled: in.TaxEnabled,
		TaxRate:    in.TaxRate,
	}
	if err := s.DB.Create(&bs).Error; err != nil {
		return nil, err
	}
	return &bs, nil
}

// Get returns the single business settings record if present, otherwise nil.
func (s *SettingsService) Get() (*models.BusinessSettings, error) {
	var bs models.BusinessSettings
	err := s.DB.First(&bs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bs, nil
}

// Update modifies the existing business settings with new input values.
func (s *SettingsService) Update(in SettingsInput) (*models.BusinessSettings, error) {
	var bs models.BusinessSettings
	if err := s.DB.First(&bs).Error; err != nil {
		return nil, err
	}
	bs.Name = strings.TrimSpace(in.Name)
	bs.Phone = strings.TrimSpace(in.Phone)
	bs.Email = strings.TrimSpace(in.Email)
	bs.Address1 = strings.TrimSpace(in.Address1)
	bs.Address2 = strings.TrimSpace(in.Address2)
	bs.City = strings.TrimSpace(in.City)
	bs.Country = strings.ToUpper(strings.TrimSpace(in.Country))
	if c := strings.ToUpper(strings.TrimSpace(in.Currency)); c != "" {
		bs.Currency = c
	}
	bs.TaxEnabled = in.TaxEnabled
	bs.TaxRate = in.TaxRate
	if err := s.DB.Save(&bs).Error; err != nil {
		return nil, err
	}
	return &bs, nil
}
