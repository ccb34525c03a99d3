package api

import (
	"context"
	"fmt"
	"net/url"

	apperrors "github.com/mapsengine/gme-cli/internal/errors"
)

// pageFetcher returns one page of items and the token of the next page
type pageFetcher[T any] func(ctx context.Context, pageToken string) ([]T, string, error)

// collectPages follows nextPageToken from the first page until it is empty,
// keeping page order and the order within each page
func collectPages[T any](ctx context.Context, op string, fetch pageFetcher[T]) ([]T, error) {
	var all []T
	seen := make(map[string]bool)
	pageToken := ""

	for {
		items, next, err := fetch(ctx, pageToken)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		if next == "" {
			return all, nil
		}
		if seen[next] {
			return nil, apperrors.New(apperrors.ErrAPIRequest, op, fmt.Errorf("page token %q repeated", next))
		}
		seen[next] = true
		pageToken = next
	}
}

// ListProjects returns every project visible to the signed-in user
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	const op = "list projects"

	return collectPages(ctx, op, func(ctx context.Context, pageToken string) ([]Project, string, error) {
		data, err := c.Get(ctx, "projects", url.Values{"pageToken": {pageToken}})
		if err != nil {
			return nil, "", err
		}

		var page ProjectList
		if err := decode(op, data, &page); err != nil {
			return nil, "", err
		}
		return page.Projects, page.NextPageToken, nil
	})
}

// ListMapsByProject returns every map in projectID across all pages
func (c *Client) ListMapsByProject(ctx context.Context, projectID string) ([]Map, error) {
	const op = "list maps"

	return collectPages(ctx, op, func(ctx context.Context, pageToken string) ([]Map, string, error) {
		data, err := c.Get(ctx, "maps", url.Values{
			"projectId": {projectID},
			"pageToken": {pageToken},
		})
		if err != nil {
			return nil, "", err
		}

		var page MapList
		if err := decode(op, data, &page); err != nil {
			return nil, "", err
		}
		return page.Maps, page.NextPageToken, nil
	})
}

// GetMapByID fetches a single map
func (c *Client) GetMapByID(ctx context.Context, id string) (*Map, error) {
	data, err := c.Get(ctx, "maps/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var m Map
	if err := decode("get map", data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetAssetByID fetches a single asset of any type
func (c *Client) GetAssetByID(ctx context.Context, id string) (*Asset, error) {
	data, err := c.Get(ctx, "assets/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var a Asset
	if err := decode("get asset", data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
