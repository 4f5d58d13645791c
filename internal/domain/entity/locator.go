package entity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyLocator    = errors.New("empty locator")
	ErrUnknownStrategy = errors.New("unknown locator strategy")
)

// By is the strategy a driver uses to resolve a Locator.
type By int

const (
	CSS By = iota
	XPath
	ID
	Name
	LinkText
	TagName
)

var strategyNames = map[By]string{
	CSS:      "css",
	XPath:    "xpath",
	ID:       "id",
	Name:     "name",
	LinkText: "link",
	TagName:  "tag",
}

func (b By) String() string {
	if name, ok := strategyNames[b]; ok {
		return name
	}
	return fmt.Sprintf("By(%d)", int(b))
}

// Locator describes how to find a single element on a page.
type Locator struct {
	Strategy By
	Value    string
}

func ByCSS(selector string) Locator  { return Locator{Strategy: CSS, Value: selector} }
func ByXPath(expr string) Locator    { return Locator{Strategy: XPath, Value: expr} }
func ByID(id string) Locator         { return Locator{Strategy: ID, Value: id} }
func ByName(name string) Locator     { return Locator{Strategy: Name, Value: name} }
func ByLinkText(text string) Locator { return Locator{Strategy: LinkText, Value: text} }
func ByTagName(tag string) Locator   { return Locator{Strategy: TagName, Value: tag} }

// ParseLocator reads the "strategy=value" form produced by String. Without a
// known prefix, values starting with "/" or "(" are XPath and anything else
// is a CSS selector.
func ParseLocator(s string) (Locator, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Locator{}, ErrEmptyLocator
	}

	if prefix, value, ok := strings.Cut(s, "="); ok {
		for by, name := range strategyNames {
			if prefix == name {
				loc := Locator{Strategy: by, Value: value}
				return loc, loc.Validate()
			}
		}
	}

	if isXPath(s) {
		return ByXPath(s), nil
	}
	return ByCSS(s), nil
}

func (l Locator) String() string {
	return l.Strategy.String() + "=" + l.Value
}

func (l Locator) Validate() error {
	if _, ok := strategyNames[l.Strategy]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownStrategy, int(l.Strategy))
	}
	if strings.TrimSpace(l.Value) == "" {
		return ErrEmptyLocator
	}
	return nil
}

func isXPath(s string) bool {
	return strings.HasPrefix(s, "/") || strings.HasPrefix(s, "(")
}
