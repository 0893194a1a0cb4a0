package piwebapi

import (
	"context"
	"fmt"
	"strings"
)

// maxPathDepth bounds configured path traversal so a malformed
// parentElementPath cannot trigger unbounded walking.
const maxPathDepth = 10

// PathSeparator splits parentElementPath values.
const PathSeparator = `\`

// ListDatabases enumerates the asset servers once, matches the configured
// server name case-insensitively, then lists that server's databases. A
// missing server is a hard failure carrying the discovered names; no default
// server is ever substituted.
func (c *Client) ListDatabases(ctx context.Context, assetServerName string) ([]Database, error) {
	base, err := c.base(ctx)
	if err != nil {
		return nil, err
	}

	res, err := c.fetchItems(ctx, base+"/assetservers")
	if err != nil {
		return nil, fmt.Errorf("list asset servers: %w", err)
	}
	if !reachableStatus(res.status) {
		return nil, fmt.Errorf("list asset servers: status=%d", res.status)
	}

	available := make([]string, 0, len(res.items))
	var server *rawItem
	for i := range res.items {
		name := res.items[i].Name
		if name == "" {
			continue
		}
		available = append(available, name)
		if server == nil && strings.EqualFold(name, assetServerName) {
			server = &res.items[i]
		}
	}
	if server == nil {
		return nil, &AssetServerNotFoundError{Name: assetServerName, Available: available}
	}

	urls := make([]string, 0, 2)
	if server.Links.Databases != "" {
		urls = append(urls, server.Links.Databases)
	}
	if id := firstNonEmpty(server.WebID, server.ID); id != "" {
		urls = append(urls, base+"/assetservers/"+id+"/assetdatabases")
	}

	items, err := c.firstNonEmptyCollection(ctx, urls, server.Name)
	if err != nil {
		return nil, err
	}
	out := make([]Database, 0, len(items))
	for _, it := range items {
		out = append(out, databaseFromRaw(it))
	}
	return out, nil
}

// FindDatabase locates the configured database by case-insensitive name.
func (c *Client) FindDatabase(ctx context.Context, assetServerName, databaseName string) (Database, error) {
	dbs, err := c.ListDatabases(ctx, assetServerName)
	if err != nil {
		return Database{}, err
	}

	available := make([]string, 0, len(dbs))
	for _, db := range dbs {
		available = append(available, db.Name)
		if strings.EqualFold(db.Name, databaseName) {
			return db, nil
		}
	}
	return Database{}, &DatabaseNotFoundError{Name: databaseName, Available: available}
}

// ListChildren enumerates the immediate children of a database or element.
// The candidate URLs are tried in order; the first answer with a recognized
// non-empty collection wins. Reachable answers with zero items mean "no
// children", which is valid; only when every strategy fails outright does
// this report ChildrenUnavailable.
func (c *Client) ListChildren(ctx context.Context, parent ChildSource) ([]Element, error) {
	base, err := c.base(ctx)
	if err != nil {
		return nil, err
	}

	items, err := c.firstNonEmptyCollection(ctx, parent.childURLs(base), parent.label())
	if err != nil {
		return nil, err
	}

	out := make([]Element, 0, len(items))
	for _, it := range items {
		out = append(out, elementFromRaw(it))
	}
	return out, nil
}

func (c *Client) firstNonEmptyCollection(ctx context.Context, urls []string, parentLabel string) ([]rawItem, error) {
	sawReachable := false
	for _, u := range urls {
		if u == "" {
			continue
		}
		res, err := c.fetchItems(ctx, u)
		if err != nil {
			continue
		}
		if !reachableStatus(res.status) {
			continue
		}
		sawReachable = true
		if len(res.items) > 0 {
			return res.items, nil
		}
	}
	if sawReachable {
		return nil, nil
	}
	return nil, &ChildrenUnavailableError{Parent: parentLabel}
}

// NavigatePath descends the backslash-delimited path from the database root
// and returns the children of the final matched element. The path names a
// container of wells, never a well itself, so zero segments mean "use the
// database's direct children".
func (c *Client) NavigatePath(ctx context.Context, db Database, rawPath string) ([]Element, error) {
	segments := SplitPath(rawPath)
	if len(segments) > maxPathDepth {
		return nil, &PathTooDeepError{Path: rawPath, Depth: len(segments), Max: maxPathDepth}
	}

	children, err := c.ListChildren(ctx, db)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return children, nil
	}

	for i, segment := range segments {
		match, ok := findByName(children, segment)
		if !ok {
			return nil, &PathSegmentNotFoundError{Segment: segment, Path: rawPath}
		}

		children, err = c.ListChildren(ctx, match)
		if err != nil {
			return nil, err
		}
		if i < len(segments)-1 && len(children) == 0 {
			return nil, &EmptyIntermediateElementError{Name: match.Name, Path: rawPath}
		}
	}
	return children, nil
}

// SplitPath splits a backslash-delimited path, discarding empty segments.
func SplitPath(rawPath string) []string {
	parts := strings.Split(rawPath, PathSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func findByName(elements []Element, name string) (Element, bool) {
	for _, el := range elements {
		if strings.EqualFold(el.Name, name) {
			return el, true
		}
	}
	return Element{}, false
}
