package piwebapi

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"
)

// Database is one asset database discovered under an asset server.
type Database struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	WebID        string `json:"web_id,omitempty"`
	ElementsLink string `json:"-"`
}

// Element is a discovered asset element: a well pad at one nesting level or a
// well at the leaf.
type Element struct {
	Name           string `json:"name"`
	Path           string `json:"path"`
	TemplateName   string `json:"template_name,omitempty"`
	WebID          string `json:"web_id,omitempty"`
	ElementsLink   string `json:"-"`
	AttributesLink string `json:"-"`
	HasChildren    bool   `json:"has_children"`
}

// RawAttribute is one leaf attribute with its last recorded value. Value keeps
// whatever JSON type the server sent; numeric coercion happens downstream.
type RawAttribute struct {
	Name      string
	Path      string
	Value     any
	Timestamp time.Time
}

// ChildSource identifies a node whose immediate children can be listed:
// either a Database or an Element. Both expose the ordered candidate URLs
// for their children, since the remote addressing scheme (link-based,
// WebId-based, path-based) varies across deployments.
type ChildSource interface {
	childURLs(base string) []string
	label() string
}

func (d Database) childURLs(base string) []string {
	urls := make([]string, 0, 3)
	if d.ElementsLink != "" {
		urls = append(urls, d.ElementsLink)
	}
	if d.WebID != "" {
		urls = append(urls, base+"/assetdatabases/"+d.WebID+"/elements")
	}
	if d.Path != "" {
		urls = append(urls, base+"/elements?path="+url.QueryEscape(d.Path))
	}
	return urls
}

func (d Database) label() string { return d.Name }

func (e Element) childURLs(base string) []string {
	urls := make([]string, 0, 3)
	if e.ElementsLink != "" {
		urls = append(urls, e.ElementsLink)
	}
	if e.WebID != "" {
		urls = append(urls, base+"/elements/"+e.WebID+"/elements")
	}
	if e.Path != "" {
		urls = append(urls, base+"/elements?path="+url.QueryEscape(e.Path))
	}
	return urls
}

func (e Element) label() string { return e.Name }

func (e Element) attributeURLs(base string) []string {
	urls := make([]string, 0, 3)
	if e.AttributesLink != "" {
		urls = append(urls, e.AttributesLink)
	}
	if e.WebID != "" {
		urls = append(urls, base+"/elements/"+e.WebID+"/attributes")
	}
	if e.Path != "" {
		urls = append(urls, base+"/attributes?path="+url.QueryEscape(e.Path))
	}
	return urls
}

// rawItem is the wire shape shared by asset servers, databases and elements.
// Only the fields this client navigates by are decoded.
type rawItem struct {
	WebID        string   `json:"WebId"`
	ID           string   `json:"Id"`
	Name         string   `json:"Name"`
	Path         string   `json:"Path"`
	TemplateName string   `json:"TemplateName"`
	HasChildren  *bool    `json:"HasChildren"`
	Links        rawLinks `json:"Links"`
}

type rawLinks struct {
	Self       string `json:"Self"`
	Databases  string `json:"Databases"`
	Elements   string `json:"Elements"`
	Attributes string `json:"Attributes"`
	Value      string `json:"Value"`
}

// itemEnvelope is the collection wrapper. Depending on deployment the item
// list arrives under Items or under Elements; both are recognized, decoded
// once here at the boundary.
type itemEnvelope struct {
	Items    []rawItem `json:"Items"`
	Elements []rawItem `json:"Elements"`
}

// collection returns the recognized item list and whether any recognized
// field was present at all (an empty-but-present list is a valid
// "no children" answer, a missing field is not).
func (e itemEnvelope) collection() ([]rawItem, bool) {
	if e.Items != nil {
		return e.Items, true
	}
	if e.Elements != nil {
		return e.Elements, true
	}
	return nil, false
}

type rawAttributeItem struct {
	WebID     string          `json:"WebId"`
	Name      string          `json:"Name"`
	Path      string          `json:"Path"`
	Value     json.RawMessage `json:"Value"`
	Timestamp string          `json:"Timestamp"`
	Links     rawLinks        `json:"Links"`
}

type attributeEnvelope struct {
	Items    []rawAttributeItem `json:"Items"`
	Elements []rawAttributeItem `json:"Elements"`
}

func (e attributeEnvelope) collection() ([]rawAttributeItem, bool) {
	if e.Items != nil {
		return e.Items, true
	}
	if e.Elements != nil {
		return e.Elements, true
	}
	return nil, false
}

func elementFromRaw(it rawItem) Element {
	hasChildren := false
	if it.HasChildren != nil {
		hasChildren = *it.HasChildren
	} else if it.Links.Elements != "" {
		hasChildren = true
	}
	return Element{
		Name:           it.Name,
		Path:           it.Path,
		TemplateName:   it.TemplateName,
		WebID:          firstNonEmpty(it.WebID, it.ID),
		ElementsLink:   it.Links.Elements,
		AttributesLink: it.Links.Attributes,
		HasChildren:    hasChildren,
	}
}

func databaseFromRaw(it rawItem) Database {
	return Database{
		Name:         it.Name,
		Path:         it.Path,
		WebID:        firstNonEmpty(it.WebID, it.ID),
		ElementsLink: it.Links.Elements,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
