package repository

import (
	"context"
	"fmt"
	"strings"

	"suggestion_board_backend/pkg/liststore"
	"suggestion_board_backend/pkg/logger"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// SchemaRepository provisions the logical lists and keeps resolved list
// IDs memoized for the lifetime of the instance.
type SchemaRepository struct {
	Store *liststore.Client
	ids   *cache.Cache
}

func NewSchemaRepository(store *liststore.Client) *SchemaRepository {
	return &SchemaRepository{
		Store: store,
		ids:   cache.New(cache.NoExpiration, cache.NoExpiration),
	}
}

// Reset drops the memoized list IDs so the next call re-resolves.
func (r *SchemaRepository) Reset() {
	r.ids.Flush()
	r.Store.Reset()
}

// ListID resolves a list's ID by display name, creating the list on
// first use when it does not exist yet. The result is memoized per list
// name. Column reconciliation belongs to EnsureAll at provisioning time;
// plain reads never re-diff the schema.
func (r *SchemaRepository) ListID(ctx context.Context, spec ListSpec) (string, error) {
	if id, ok := r.ids.Get(spec.Name); ok {
		return id.(string), nil
	}

	list, err := r.Store.ListByName(ctx, spec.Name)
	if liststore.IsNotFound(err) {
		created, createErr := r.Store.CreateList(ctx, spec.Name, spec.Description, spec.Columns)
		if createErr != nil {
			return "", fmt.Errorf("provision list %q: %w", spec.Name, createErr)
		}
		logger.Log.Info("provisioned list",
			zap.String("list", spec.Name),
			zap.String("id", created.ID))
		r.ids.Set(spec.Name, created.ID, cache.NoExpiration)
		return created.ID, nil
	}
	if err != nil {
		return "", fmt.Errorf("look up list %q: %w", spec.Name, err)
	}

	r.ids.Set(spec.Name, list.ID, cache.NoExpiration)
	return list.ID, nil
}

// EnsureList guarantees the list exists with the expected columns.
// Returns the list ID and whether the list was created by this call.
// Missing columns are added; columns that should be indexed but are not
// are patched best-effort. Existing columns are never removed or renamed.
func (r *SchemaRepository) EnsureList(ctx context.Context, spec ListSpec) (string, bool, error) {
	list, err := r.Store.ListByName(ctx, spec.Name)
	if liststore.IsNotFound(err) {
		created, createErr := r.Store.CreateList(ctx, spec.Name, spec.Description, spec.Columns)
		if createErr != nil {
			return "", false, fmt.Errorf("provision list %q: %w", spec.Name, createErr)
		}
		logger.Log.Info("provisioned list",
			zap.String("list", spec.Name),
			zap.String("id", created.ID))
		return created.ID, true, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("look up list %q: %w", spec.Name, err)
	}

	if err := r.EnsureColumns(ctx, list.ID, spec.Columns); err != nil {
		return "", false, err
	}
	return list.ID, false, nil
}

// EnsureColumns diffs the list's columns against the expected set.
// Adding a missing column is fatal on failure; patching the indexed flag
// is best-effort.
func (r *SchemaRepository) EnsureColumns(ctx context.Context, listID string, want []liststore.Column) error {
	existing, err := r.Store.Columns(ctx, listID)
	if err != nil {
		return fmt.Errorf("read columns of list %s: %w", listID, err)
	}

	byName := make(map[string]liststore.Column, len(existing))
	for _, col := range existing {
		byName[strings.ToLower(col.Name)] = col
	}

	for _, col := range want {
		current, ok := byName[strings.ToLower(col.Name)]
		if !ok {
			if _, err := r.Store.AddColumn(ctx, listID, col); err != nil {
				return fmt.Errorf("add column %q to list %s: %w", col.Name, listID, err)
			}
			continue
		}
		if col.Indexed && !current.Indexed && current.ID != "" {
			patch := map[string]any{"indexed": true}
			if err := r.Store.PatchColumn(ctx, listID, current.ID, patch); err != nil {
				logger.Log.Warn("could not index column",
					zap.String("list", listID),
					zap.String("column", col.Name),
					zap.Error(err))
			}
		}
	}
	return nil
}

// EnsureAll provisions every logical list in the given specs, creating
// missing lists and reconciling columns on the ones that already exist.
func (r *SchemaRepository) EnsureAll(ctx context.Context, specs []ListSpec) error {
	for _, spec := range specs {
		id, _, err := r.EnsureList(ctx, spec)
		if err != nil {
			return err
		}
		r.ids.Set(spec.Name, id, cache.NoExpiration)
	}
	return nil
}
