package piwebapi

import (
	"fmt"
	"strings"
)

// NotReachableError means no candidate endpoint answered acceptably. Terminal
// for the whole load; the caller decides whether to retry later.
type NotReachableError struct {
	Hostname string
	Tried    []string
}

func (e *NotReachableError) Error() string {
	return fmt.Sprintf("pi web api not reachable on %q (tried %s)", e.Hostname, strings.Join(e.Tried, ", "))
}

// AssetServerNotFoundError means no asset server matched the configured name.
// Available carries the names that were found, for correcting configuration.
type AssetServerNotFoundError struct {
	Name      string
	Available []string
}

func (e *AssetServerNotFoundError) Error() string {
	return fmt.Sprintf("asset server %q not found (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// DatabaseNotFoundError means the configured database name does not exist on
// the asset server.
type DatabaseNotFoundError struct {
	Name      string
	Available []string
}

func (e *DatabaseNotFoundError) Error() string {
	return fmt.Sprintf("asset database %q not found (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// PathSegmentNotFoundError names the missing segment and the full configured
// path it belongs to.
type PathSegmentNotFoundError struct {
	Segment string
	Path    string
}

func (e *PathSegmentNotFoundError) Error() string {
	return fmt.Sprintf("path segment %q not found while navigating %q", e.Segment, e.Path)
}

// EmptyIntermediateElementError means a matched intermediate path element has
// no children, so the rest of the path cannot resolve.
type EmptyIntermediateElementError struct {
	Name string
	Path string
}

func (e *EmptyIntermediateElementError) Error() string {
	return fmt.Sprintf("element %q has no children while navigating %q", e.Name, e.Path)
}

// ChildrenUnavailableError means every child-listing strategy failed outright
// (non-2xx, non-401) for the named parent.
type ChildrenUnavailableError struct {
	Parent string
}

func (e *ChildrenUnavailableError) Error() string {
	return fmt.Sprintf("children of %q unavailable: all listing strategies failed", e.Parent)
}

// PathTooDeepError rejects configured paths beyond the traversal bound before
// any network call is made.
type PathTooDeepError struct {
	Path  string
	Depth int
	Max   int
}

func (e *PathTooDeepError) Error() string {
	return fmt.Sprintf("path %q has %d segments, exceeding the maximum depth of %d", e.Path, e.Depth, e.Max)
}
