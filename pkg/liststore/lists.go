package liststore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ListByName looks up a list by display name. Returns a NotFound error
// when no list with that name exists.
func (c *Client) ListByName(ctx context.Context, name string) (*List, error) {
	site, err := c.siteURL(ctx)
	if err != nil {
		return nil, err
	}

	q := Query{Filter: DisplayNameEq(name)}
	url := fmt.Sprintf("%s/lists?%s", site, q.encode().Encode())

	var resp collectionResponse
	if err := c.do(ctx, http.MethodGet, url, nil, &resp, false, "listByName"); err != nil {
		return nil, err
	}
	if len(resp.Value) == 0 {
		return nil, &Error{
			Kind:       KindNotFound,
			StatusCode: http.StatusNotFound,
			Code:       "listNotFound",
			Message:    fmt.Sprintf("no list named %q", name),
			Operation:  "listByName",
		}
	}

	var list List
	if err := json.Unmarshal(resp.Value[0], &list); err != nil {
		return nil, fmt.Errorf("liststore: decode list %q: %w", name, err)
	}
	return &list, nil
}

// CreateList provisions a new generic list with an initial column set.
func (c *Client) CreateList(ctx context.Context, displayName, description string, columns []Column) (*List, error) {
	site, err := c.siteURL(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"displayName": displayName,
		"description": description,
		"columns":     columns,
		"list":        map[string]string{"template": "genericList"},
	}

	var list List
	url := site + "/lists"
	if err := c.do(ctx, http.MethodPost, url, body, &list, false, "createList"); err != nil {
		return nil, err
	}
	return &list, nil
}

// Columns fetches the column definitions of a list.
func (c *Client) Columns(ctx context.Context, listID string) ([]Column, error) {
	site, err := c.siteURL(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/lists/%s/columns", site, listID)
	var resp collectionResponse
	if err := c.do(ctx, http.MethodGet, url, nil, &resp, false, "columns"); err != nil {
		return nil, err
	}

	cols := make([]Column, 0, len(resp.Value))
	for _, raw := range resp.Value {
		var col Column
		if err := json.Unmarshal(raw, &col); err != nil {
			return nil, fmt.Errorf("liststore: decode column: %w", err)
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// AddColumn appends a column to an existing list.
func (c *Client) AddColumn(ctx context.Context, listID string, col Column) (*Column, error) {
	site, err := c.siteURL(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/lists/%s/columns", site, listID)
	var created Column
	if err := c.do(ctx, http.MethodPost, url, col, &created, false, "addColumn"); err != nil {
		return nil, err
	}
	return &created, nil
}

// PatchColumn updates properties of an existing column, typically the
// indexed flag.
func (c *Client) PatchColumn(ctx context.Context, listID, columnID string, patch map[string]any) error {
	site, err := c.siteURL(ctx)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/lists/%s/columns/%s", site, listID, columnID)
	return c.do(ctx, http.MethodPatch, url, patch, nil, false, "patchColumn")
}
