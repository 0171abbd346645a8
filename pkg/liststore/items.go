package liststore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Items reads one page of list items. When the query carries a
// continuation token from a previous page, that token is followed
// verbatim and the remaining modifiers are ignored (the token already
// encodes them).
func (c *Client) Items(ctx context.Context, listID string, q Query) (*ItemPage, error) {
	var url string
	if strings.HasPrefix(q.SkipToken, "http") {
		url = q.SkipToken
	} else {
		site, err := c.siteURL(ctx)
		if err != nil {
			return nil, err
		}
		url = fmt.Sprintf("%s/lists/%s/items?%s", site, listID, q.encode().Encode())
	}

	var resp collectionResponse
	if err := c.do(ctx, http.MethodGet, url, nil, &resp, q.AllowUnindexed, "items"); err != nil {
		return nil, err
	}

	page := &ItemPage{
		Items:     make([]Item, 0, len(resp.Value)),
		NextToken: resp.NextLink,
		Count:     -1,
	}
	if resp.Count != nil {
		page.Count = *resp.Count
	}
	for _, raw := range resp.Value {
		var item Item
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("liststore: decode item: %w", err)
		}
		page.Items = append(page.Items, item)
	}
	return page, nil
}

// Item fetches a single list item with its fields expanded.
func (c *Client) Item(ctx context.Context, listID, itemID string) (*Item, error) {
	site, err := c.siteURL(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/lists/%s/items/%s?%s", site, listID, itemID,
		Query{Expand: []string{"fields"}}.encode().Encode())
	var item Item
	if err := c.do(ctx, http.MethodGet, url, nil, &item, false, "item"); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem inserts a new item with the given field values.
func (c *Client) CreateItem(ctx context.Context, listID string, fields map[string]any) (*Item, error) {
	site, err := c.siteURL(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/lists/%s/items", site, listID)
	body := map[string]any{"fields": fields}
	var item Item
	if err := c.do(ctx, http.MethodPost, url, body, &item, false, "createItem"); err != nil {
		return nil, err
	}
	return &item, nil
}

// PatchItemFields updates field values on an existing item.
func (c *Client) PatchItemFields(ctx context.Context, listID, itemID string, fields map[string]any) error {
	site, err := c.siteURL(ctx)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/lists/%s/items/%s/fields", site, listID, itemID)
	return c.do(ctx, http.MethodPatch, url, fields, nil, false, "patchItem")
}

// DeleteItem removes an item by ID.
func (c *Client) DeleteItem(ctx context.Context, listID, itemID string) error {
	site, err := c.siteURL(ctx)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/lists/%s/items/%s", site, listID, itemID)
	return c.do(ctx, http.MethodDelete, url, nil, nil, false, "deleteItem")
}
