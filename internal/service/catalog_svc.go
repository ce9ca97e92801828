package service

import (
	"context"

	"flex_inventory_admin/internal/model"
	"flex_inventory_admin/internal/repository"
)

// CatalogService 同步结果的只读查询
type CatalogService struct {
	categoryRepo     repository.CategoryRepository
	manufacturerRepo repository.ManufacturerRepository
	sizeRepo         repository.SizeRepository
	productRepo      repository.ProductRepository
}

func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	manufacturerRepo repository.ManufacturerRepository,
	sizeRepo repository.SizeRepository,
	productRepo repository.ProductRepository,
) *CatalogService {
	return &CatalogService{
		categoryRepo:     categoryRepo,
		manufacturerRepo: manufacturerRepo,
		sizeRepo:         sizeRepo,
		productRepo:      productRepo,
	}
}

func (s *CatalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, int64, error) {
	return s.productRepo.List(ctx, filter)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *CatalogService) ListManufacturers(ctx context.Context) ([]model.Manufacturer, error) {
	return s.manufacturerRepo.List(ctx)
}

func (s *CatalogService) ListSizes(ctx context.Context) ([]model.Size, error) {
	return s.sizeRepo.List(ctx)
}
