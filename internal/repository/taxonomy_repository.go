package repository

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"suggestion_board_backend/internal/config"
	"suggestion_board_backend/internal/model"
	"suggestion_board_backend/internal/util"

	"suggestion_board_backend/pkg/liststore"
)

// TaxonomyRepository maintains the category, subcategory and status
// lists feeding the dropdowns and the terminal-status rules.
type TaxonomyRepository struct {
	Store        *liststore.Client
	Schema       *SchemaRepository
	Categories   ListSpec
	Subcats      ListSpec
	Statuses     ListSpec
	ScanPageSize int
}

func NewTaxonomyRepository(store *liststore.Client, schema *SchemaRepository, cfg *config.BoardConfig) *TaxonomyRepository {
	return &TaxonomyRepository{
		Store:        store,
		Schema:       schema,
		Categories:   CategoriesSpec(cfg),
		Subcats:      SubcategoriesSpec(cfg),
		Statuses:     StatusesSpec(cfg),
		ScanPageSize: cfg.ScanPageSize,
	}
}

// GetCategories returns the category definitions sorted by title.
func (r *TaxonomyRepository) GetCategories(ctx context.Context) ([]model.CategoryDefinition, error) {
	items, err := r.readAll(ctx, r.Categories)
	if err != nil {
		return nil, err
	}

	categories := make([]model.CategoryDefinition, 0, len(items))
	for i := range items {
		categories = append(categories, model.CategoryFromItem(&items[i]))
	}
	sort.Slice(categories, func(i, j int) bool {
		return strings.ToLower(categories[i].Title) < strings.ToLower(categories[j].Title)
	})
	return categories, nil
}

// GetSubcategories returns the subcategory definitions, optionally
// narrowed to a parent category, sorted by title.
func (r *TaxonomyRepository) GetSubcategories(ctx context.Context, category string) ([]model.SubcategoryDefinition, error) {
	items, err := r.readAll(ctx, r.Subcats)
	if err != nil {
		return nil, err
	}

	subcategories := make([]model.SubcategoryDefinition, 0, len(items))
	for i := range items {
		sub := model.SubcategoryFromItem(&items[i])
		if category != "" && !strings.EqualFold(sub.Category, category) {
			continue
		}
		subcategories = append(subcategories, sub)
	}
	sort.Slice(subcategories, func(i, j int) bool {
		return strings.ToLower(subcategories[i].Title) < strings.ToLower(subcategories[j].Title)
	})
	return subcategories, nil
}

// GetStatuses returns the ordered status vocabulary. An empty list falls
// back to the built-in Active/Done pair so the board stays usable.
func (r *TaxonomyRepository) GetStatuses(ctx context.Context) ([]model.StatusDefinition, error) {
	items, err := r.readAll(ctx, r.Statuses)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return model.DefaultStatuses(), nil
	}

	statuses := make([]model.StatusDefinition, 0, len(items))
	for i := range items {
		statuses = append(statuses, model.StatusFromItem(&items[i]))
	}
	return model.SortStatuses(statuses), nil
}

// AddCategory creates a category. Titles colliding case-insensitively
// with an existing row are rejected as duplicates.
func (r *TaxonomyRepository) AddCategory(ctx context.Context, title string) (*model.CategoryDefinition, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, util.ErrEmptyTitle
	}

	existing, err := r.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range existing {
		if strings.EqualFold(c.Title, title) {
			return nil, util.ErrDuplicateDefinition
		}
	}

	item, err := r.create(ctx, r.Categories, map[string]any{model.FieldTitle: title})
	if err != nil {
		return nil, err
	}
	created := model.CategoryFromItem(item)
	return &created, nil
}

// AddSubcategory creates a subcategory under an optional parent
// category, with the same case-insensitive duplicate rejection.
func (r *TaxonomyRepository) AddSubcategory(ctx context.Context, title, category string) (*model.SubcategoryDefinition, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, util.ErrEmptyTitle
	}

	existing, err := r.GetSubcategories(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, s := range existing {
		if strings.EqualFold(s.Title, title) {
			return nil, util.ErrDuplicateDefinition
		}
	}

	fields := map[string]any{model.FieldTitle: title}
	if category != "" {
		fields[model.FieldParentCategory] = category
	}
	item, err := r.create(ctx, r.Subcats, fields)
	if err != nil {
		return nil, err
	}
	created := model.SubcategoryFromItem(item)
	return &created, nil
}

// AddStatus appends a status definition to the vocabulary.
func (r *TaxonomyRepository) AddStatus(ctx context.Context, def model.StatusDefinition) (*model.StatusDefinition, error) {
	def.Title = strings.TrimSpace(def.Title)
	if def.Title == "" {
		return nil, util.ErrEmptyTitle
	}

	existing, err := r.readAll(ctx, r.Statuses)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if strings.EqualFold(model.StatusFromItem(&existing[i]).Title, def.Title) {
			return nil, util.ErrDuplicateDefinition
		}
	}

	fields := map[string]any{
		model.FieldTitle:           def.Title,
		model.FieldStatusSortOrder: def.SortOrder,
		model.FieldStatusCompleted: def.IsCompleted,
		model.FieldStatusDenied:    def.IsDenied,
	}
	item, err := r.create(ctx, r.Statuses, fields)
	if err != nil {
		return nil, err
	}
	created := model.StatusFromItem(item)
	return &created, nil
}

func (r *TaxonomyRepository) RemoveCategory(ctx context.Context, id int64) error {
	return r.remove(ctx, r.Categories, id)
}

func (r *TaxonomyRepository) RemoveSubcategory(ctx context.Context, id int64) error {
	return r.remove(ctx, r.Subcats, id)
}

func (r *TaxonomyRepository) RemoveStatus(ctx context.Context, id int64) error {
	return r.remove(ctx, r.Statuses, id)
}

func (r *TaxonomyRepository) readAll(ctx context.Context, spec ListSpec) ([]liststore.Item, error) {
	listID, err := r.Schema.ListID(ctx, spec)
	if err != nil {
		return nil, err
	}

	var items []liststore.Item
	token := ""
	for {
		page, err := r.Store.Items(ctx, listID, liststore.Query{
			Expand:    []string{"fields"},
			Top:       r.ScanPageSize,
			SkipToken: token,
		})
		if liststore.IsNotFound(err) {
			return items, nil
		}
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		if page.NextToken == "" {
			return items, nil
		}
		token = page.NextToken
	}
}

func (r *TaxonomyRepository) create(ctx context.Context, spec ListSpec, fields map[string]any) (*liststore.Item, error) {
	listID, err := r.Schema.ListID(ctx, spec)
	if err != nil {
		return nil, err
	}
	return r.Store.CreateItem(ctx, listID, fields)
}

func (r *TaxonomyRepository) remove(ctx context.Context, spec ListSpec, id int64) error {
	listID, err := r.Schema.ListID(ctx, spec)
	if err != nil {
		return err
	}
	return r.Store.DeleteItem(ctx, listID, strconv.FormatInt(id, 10))
}
