package api

import (
	"context"
	"fmt"
	"net/url"
)

// Categories lists the user's categories, optionally restricted to one type
// ("income" or "expense"; empty means both).
func (c *Client) Categories(ctx context.Context, typ string) ([]Category, error) {
	path := "/api/categories/"
	if typ != "" {
		path += "?type=" + url.QueryEscape(typ)
	}
	var cats []Category
	if err := c.do(ctx, "GET", path, nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

type categoryWrite struct {
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	Color string `json:"category_color"`
}

// CreateCategory adds a category of the given type.
func (c *Client) CreateCategory(ctx context.Context, name, color, typ string) (Category, error) {
	var created Category
	err := c.do(ctx, "POST", "/api/categories/", categoryWrite{Name: name, Type: typ, Color: color}, &created)
	return created, err
}

// UpdateCategory renames and recolors a category; the server's row comes
// back and replaces the local one wholesale.
func (c *Client) UpdateCategory(ctx context.Context, id int, name, color string) (Category, error) {
	var updated Category
	err := c.do(ctx, "PATCH", fmt.Sprintf("/api/categories/%d/", id), categoryWrite{Name: name, Color: color}, &updated)
	return updated, err
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id int) error {
	return c.do(ctx, "DELETE", fmt.Sprintf("/api/categories/%d/", id), nil, nil)
}
