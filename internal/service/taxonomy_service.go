package service

import (
	"context"
	"strings"
	"time"

	"suggestion_board_backend/internal/model"
	"suggestion_board_backend/internal/repository"

	"github.com/patrickmn/go-cache"
)

const (
	cacheKeyStatuses   = "statuses"
	cacheKeyCategories = "categories"
)

// TaxonomyService serves the dropdown vocabularies and the
// terminal-status rules, with short-lived read caching.
type TaxonomyService struct {
	Repo  *repository.TaxonomyRepository
	cache *cache.Cache
}

func NewTaxonomyService(repo *repository.TaxonomyRepository) *TaxonomyService {
	return &TaxonomyService{
		Repo:  repo,
		cache: cache.New(5*time.Minute, 10*time.Minute),
	}
}

func (s *TaxonomyService) GetCategories(ctx context.Context) ([]model.CategoryDefinition, error) {
	if cached, ok := s.cache.Get(cacheKeyCategories); ok {
		return cached.([]model.CategoryDefinition), nil
	}
	categories, err := s.Repo.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(cacheKeyCategories, categories)
	return categories, nil
}

func (s *TaxonomyService) GetSubcategories(ctx context.Context, category string) ([]model.SubcategoryDefinition, error) {
	return s.Repo.GetSubcategories(ctx, category)
}

func (s *TaxonomyService) GetStatuses(ctx context.Context) ([]model.StatusDefinition, error) {
	if cached, ok := s.cache.Get(cacheKeyStatuses); ok {
		return cached.([]model.StatusDefinition), nil
	}
	statuses, err := s.Repo.GetStatuses(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(cacheKeyStatuses, statuses)
	return statuses, nil
}

// StatusByTitle resolves a status definition case-insensitively.
func (s *TaxonomyService) StatusByTitle(ctx context.Context, title string) (*model.StatusDefinition, error) {
	statuses, err := s.GetStatuses(ctx)
	if err != nil {
		return nil, err
	}
	for i := range statuses {
		if strings.EqualFold(statuses[i].Title, title) {
			return &statuses[i], nil
		}
	}
	return nil, nil
}

// DefaultStatus is the first status in sort order, used for new
// suggestions.
func (s *TaxonomyService) DefaultStatus(ctx context.Context) (string, error) {
	statuses, err := s.GetStatuses(ctx)
	if err != nil {
		return "", err
	}
	if len(statuses) == 0 {
		return model.DefaultStatuses()[0].Title, nil
	}
	return statuses[0].Title, nil
}

// NonTerminalStatuses lists the status titles whose suggestions still
// count toward vote quota.
func (s *TaxonomyService) NonTerminalStatuses(ctx context.Context) ([]string, error) {
	statuses, err := s.GetStatuses(ctx)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(statuses))
	for _, st := range statuses {
		if !st.Terminal() {
			titles = append(titles, st.Title)
		}
	}
	return titles, nil
}

func (s *TaxonomyService) AddCategory(ctx context.Context, title string) (*model.CategoryDefinition, error) {
	created, err := s.Repo.AddCategory(ctx, title)
	if err == nil {
		s.cache.Delete(cacheKeyCategories)
	}
	return created, err
}

func (s *TaxonomyService) AddSubcategory(ctx context.Context, title, category string) (*model.SubcategoryDefinition, error) {
	return s.Repo.AddSubcategory(ctx, title, category)
}

func (s *TaxonomyService) AddStatus(ctx context.Context, def model.StatusDefinition) (*model.StatusDefinition, error) {
	created, err := s.Repo.AddStatus(ctx, def)
	if err == nil {
		s.cache.Delete(cacheKeyStatuses)
	}
	return created, err
}

func (s *TaxonomyService) RemoveCategory(ctx context.Context, id int64) error {
	err := s.Repo.RemoveCategory(ctx, id)
	if err == nil {
		s.cache.Delete(cacheKeyCategories)
	}
	return err
}

func (s *TaxonomyService) RemoveSubcategory(ctx context.Context, id int64) error {
	return s.Repo.RemoveSubcategory(ctx, id)
}

func (s *TaxonomyService) RemoveStatus(ctx context.Context, id int64) error {
	err := s.Repo.RemoveStatus(ctx, id)
	if err == nil {
		s.cache.Delete(cacheKeyStatuses)
	}
	return err
}
