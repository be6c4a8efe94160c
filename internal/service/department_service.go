package service

import (
	"context"

	"github.com/noah-isme/duyuru-api/internal/models"
	appErrors "github.com/noah-isme/duyuru-api/pkg/errors"
)

type departmentLister interface {
	List(ctx context.Context) ([]models.Department, error)
}

// DepartmentService exposes department reference data.
type DepartmentService struct {
	repo departmentLister
}

// NewDepartmentService constructs the service.
func NewDepartmentService(repo departmentLister) *DepartmentService {
	return &DepartmentService{repo: repo}
}

// List returns all departments ordered by name.
func (s *DepartmentService) List(ctx context.Context) ([]models.Department, error) {
	departments, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list departments")
	}
	return departments, nil
}
