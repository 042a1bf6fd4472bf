package services

import (
	"errors"

	"github.com/Znbmels/visa/internal/dto"
	"github.com/Znbmels/visa/internal/models"
	"github.com/Znbmels/visa/internal/repositories"
	"github.com/Znbmels/visa/pkg/apperrors"

	"gorm.io/gorm"
)

type CountryService interface {
	ListCountries(db *gorm.DB, region string) ([]dto.CountryResponse, error)
	GetCountry(db *gorm.DB, id string) (*dto.CountryResponse, error)
	CreateCountry(db *gorm.DB, req *dto.CreateCountryRequest) (*dto.CountryResponse, error)
	UpdateCountry(db *gorm.DB, id string, req *dto.UpdateCountryRequest) (*dto.CountryResponse, error)
	DeleteCountry(db *gorm.DB, id string) error

	// Fees & cost calculator
	GetCountryFees(db *gorm.DB, countryID string) ([]dto.VisaFeeResponse, error)
	SetVisaFee(db *gorm.DB, countryID string, req *dto.SetVisaFeeRequest) (*dto.VisaFeeResponse, error)
	EstimateCost(db *gorm.DB, req *dto.CostEstimateRequest) (*dto.CostEstimateResponse, error)
}

type countryService struct {
	countryRepo repositories.CountryRepository
}

func NewCountryService(countryRepo repositories.CountryRepository) CountryService {
	return &countryService{countryRepo: countryRepo}
}

func (s *countryService) ListCountries(db *gorm.DB, region string) ([]dto.CountryResponse, error) {
	countries, err := s.countryRepo.FindAll(db, region)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.CountryResponse, 0, len(countries))
	for i := range countries {
		result = append(result, toCountryResponse(&countries[i]))
	}
	return result, nil
}

func (s *countryService) GetCountry(db *gorm.DB, id string) (*dto.CountryResponse, error) {
	country, err := s.countryRepo.FindByID(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCountryNotFound) {
			return nil, apperrors.ErrCountryNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	resp := toCountryResponse(country)
	return &resp, nil
}

func (s *countryService) CreateCountry(db *gorm.DB, req *dto.CreateCountryRequest) (*dto.CountryResponse, error) {
	if _, err := s.countryRepo.FindByName(db, req.Name); err == nil {
		return nil, apperrors.ErrAlreadyExists(errors.New("country already exists"))
	} else if !errors.Is(err, repositories.ErrCountryNotFound) {
		return nil, apperrors.InternalError(err)
	}

	country := &models.Country{
		Name:               req.Name,
		Region:             req.Region,
		VisaRequirements:   req.VisaRequirements,
		ProcessingTimeDays: req.ProcessingTimeDays,
	}

	if err := s.countryRepo.Create(db, country); err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := toCountryResponse(country)
	return &resp, nil
}

func (s *countryService) UpdateCountry(db *gorm.DB, id string, req *dto.UpdateCountryRequest) (*dto.CountryResponse, error) {
	country, err := s.countryRepo.FindByID(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCountryNotFound) {
			return nil, apperrors.ErrCountryNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if req.Name != nil && *req.Name != country.Name {
		if _, err := s.countryRepo.FindByName(db, *req.Name); err == nil {
			return nil, apperrors.ErrAlreadyExists(errors.New("country already exists"))
		} else if !errors.Is(err, repositories.ErrCountryNotFound) {
			return nil, apperrors.InternalError(err)
		}
		country.Name = *req.Name
	}
	if req.Region != nil {
		country.Region = *req.Region
	}
	if req.VisaRequirements != nil {
		country.VisaRequirements = *req.VisaRequirements
	}
	if req.ProcessingTimeDays != nil {
		country.ProcessingTimeDays = *req.ProcessingTimeDays
	}

	if err := s.countryRepo.Update(db, country); err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := toCountryResponse(country)
	return &resp, nil
}

func (s *countryService) DeleteCountry(db *gorm.DB, id string) error {
	err := s.countryRepo.Delete(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCountryNotFound) {
			return apperrors.ErrCountryNotFound
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *countryService) GetCountryFees(db *gorm.DB, countryID string) ([]dto.VisaFeeResponse, error) {
	if _, err := s.countryRepo.FindByID(db, countryID); err != nil {
		if errors.Is(err, repositories.ErrCountryNotFound) {
			return nil, apperrors.ErrCountryNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	fees, err := s.countryRepo.FindFeesByCountry(db, countryID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.VisaFeeResponse, 0, len(fees))
	for i := range fees {
		result = append(result, toVisaFeeResponse(&fees[i]))
	}
	return result, nil
}

func (s *countryService) SetVisaFee(db *gorm.DB, countryID string, req *dto.SetVisaFeeRequest) (*dto.VisaFeeResponse, error) {
	if _, err := s.countryRepo.FindByID(db, countryID); err != nil {
		if errors.Is(err, repositories.ErrCountryNotFound) {
			return nil, apperrors.ErrCountryNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	fee := &models.VisaFee{
		CountryID:   countryID,
		VisaType:    models.VisaType(req.VisaType),
		ConsularFee: req.ConsularFee,
		ServiceFee:  req.ServiceFee,
	}

	if err := s.countryRepo.UpsertFee(db, fee); err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := toVisaFeeResponse(fee)
	return &resp, nil
}

// EstimateCost считает полную стоимость: (консульский + сервисный сбор) * число заявителей.
func (s *countryService) EstimateCost(db *gorm.DB, req *dto.CostEstimateRequest) (*dto.CostEstimateResponse, error) {
	fee, err := s.countryRepo.FindFee(db, req.CountryID, models.VisaType(req.VisaType))
	if err != nil {
		if errors.Is(err, repositories.ErrVisaFeeNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	perApplicant := fee.TotalFee()
	return &dto.CostEstimateResponse{
		CountryID:          req.CountryID,
		VisaType:           req.VisaType,
		NumberOfApplicants: req.NumberOfApplicants,
		FeePerApplicant:    perApplicant,
		TotalCost:          perApplicant * float64(req.NumberOfApplicants),
	}, nil
}

func toCountryResponse(c *models.Country) dto.CountryResponse {
	return dto.CountryResponse{
		ID:                 c.ID,
		Name:               c.Name,
		Region:             c.Region,
		VisaRequirements:   c.VisaRequirements,
		ProcessingTimeDays: c.ProcessingTimeDays,
	}
}

func toVisaFeeResponse(f *models.VisaFee) dto.VisaFeeResponse {
	return dto.VisaFeeResponse{
		CountryID:   f.CountryID,
		VisaType:    string(f.VisaType),
		ConsularFee: f.ConsularFee,
		ServiceFee:  f.ServiceFee,
		TotalFee:    f.TotalFee(),
	}
}
