package services

import (
	"context"
	"strings"

	"workeradmin/internal/models"
	"workeradmin/internal/repositories"
)

type CustomerService struct {
	Repo repositories.CustomerRepository
}

func NewCustomerService(repo repositories.CustomerRepository) *CustomerService {
	return &CustomerService{Repo: repo}
}

// Filter searches by surname. With a key the store returns decrypted
// sensitive columns, otherwise masked ones.
func (s *CustomerService) Filter(ctx context.Context, f models.CustomerFilter) ([]models.Customer, error) {
	return s.Repo.FindBySurname(ctx, strings.TrimSpace(f.Surname), f.Clave)
}
