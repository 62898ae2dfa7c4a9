package services

import (
	"github.com/nnamdiindu/cara-store/internal/domain"
	"github.com/nnamdiindu/cara-store/internal/repos"
)

type CatalogService struct {
	Collections *repos.CollectionRepo
}

func NewCatalogService(collections *repos.CollectionRepo) *CatalogService {
	return &CatalogService{Collections: collections}
}

func (s *CatalogService) List() ([]domain.Collection, error) {
	return s.Collections.List()
}

func (s *CatalogService) Get(id int64) (domain.Collection, error) {
	return s.Collections.Get(id)
}

func (s *CatalogService) Add(c domain.Collection) (int64, error) {
	return s.Collections.Create(c)
}

// Edit updates text/price fields; the image is replaced only when c.Data
// carries a new upload.
func (s *CatalogService) Edit(c domain.Collection) error {
	return s.Collections.Update(c, len(c.Data) > 0)
}

func (s *CatalogService) Remove(id int64) error {
	return s.Collections.Delete(id)
}
