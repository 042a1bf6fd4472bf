package repositories

import (
	"errors"

	"github.com/Znbmels/visa/internal/models"

	"gorm.io/gorm"
)

var (
	ErrCountryNotFound = errors.New("country not found")
	ErrVisaFeeNotFound = errors.New("visa fee not found")
)

type CountryRepository interface {
	FindAll(db *gorm.DB, region string) ([]models.Country, error)
	FindByID(db *gorm.DB, id string) (*models.Country, error)
	FindByName(db *gorm.DB, name string) (*models.Country, error)
	Create(db *gorm.DB, country *models.Country) error
	Update(db *gorm.DB, country *models.Country) error
	Delete(db *gorm.DB, id string) error

	// Visa fee operations
	FindFee(db *gorm.DB, countryID string, visaType models.VisaType) (*models.VisaFee, error)
	FindFeesByCountry(db *gorm.DB, countryID string) ([]models.VisaFee, error)
	UpsertFee(db *gorm.DB, fee *models.VisaFee) error
}

type CountryRepositoryImpl struct{}

func NewCountryRepository() CountryRepository {
	return &CountryRepositoryImpl{}
}

func (r *CountryRepositoryImpl) FindAll(db *gorm.DB, region string) ([]models.Country, error) {
	var countries []models.Country
	query := db.Order("name ASC")
	if region != "" {
		query = query.Where("region = ?", region)
	}
	err := query.Find(&countries).Error
	return countries, err
}

func (r *CountryRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Country, error) {
	var country models.Country
	err := db.First(&country, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCountryNotFound
		}
		return nil, err
	}
	return &country, nil
}

func (r *CountryRepositoryImpl) FindByName(db *gorm.DB, name string) (*models.Country, error) {
	var country models.Country
	err := db.First(&country, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCountryNotFound
		}
		return nil, err
	}
	return &country, nil
}

func (r *CountryRepositoryImpl) Create(db *gorm.DB, country *models.Country) error {
	return db.Create(country).Error
}

func (r *CountryRepositoryImpl) Update(db *gorm.DB, country *models.Country) error {
	result := db.Save(country)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCountryNotFound
	}
	return nil
}

func (r *CountryRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Country{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCountryNotFound
	}
	return nil
}

// Visa fee operations

func (r *CountryRepositoryImpl) FindFee(db *gorm.DB, countryID string, visaType models.VisaType) (*models.VisaFee, error) {
	var fee models.VisaFee
	err := db.First(&fee, "country_id = ? AND visa_type = ?", countryID, visaType).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisaFeeNotFound
		}
		return nil, err
	}
	return &fee, nil
}

func (r *CountryRepositoryImpl) FindFeesByCountry(db *gorm.DB, countryID string) ([]models.VisaFee, error) {
	var fees []models.VisaFee
	err := db.Where("country_id = ?", countryID).Order("visa_type ASC").Find(&fees).Error
	return fees, err
}

func (r *CountryRepositoryImpl) UpsertFee(db *gorm.DB, fee *models.VisaFee) error {
	var existing models.VisaFee
	err := db.First(&existing, "country_id = ? AND visa_type = ?", fee.CountryID, fee.VisaType).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return db.Create(fee).Error
		}
		return err
	}

	return db.Model(&existing).Updates(map[string]interface{}{
		"consular_fee": fee.ConsularFee,
		"service_fee":  fee.ServiceFee,
	}).Error
}
