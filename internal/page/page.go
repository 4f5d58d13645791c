// Package page holds page objects: thin wrappers that delegate to an
// output.Driver. Errors from the driver are returned as-is.
package page

import (
	"context"
	"errors"

	"browser-pages/internal/application/port/output"
	"browser-pages/internal/domain/entity"
)

type Page struct {
	driver output.Driver
	logger output.LoggerPort
}

type Option func(*Page)

// WithLogger makes the page log every operation at debug level.
func WithLogger(logger output.LoggerPort) Option {
	return func(p *Page) {
		p.logger = logger
	}
}

func New(driver output.Driver, opts ...Option) *Page {
	p := &Page{driver: driver}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Page) Driver() output.Driver {
	return p.driver
}

func (p *Page) Visit(ctx context.Context, url string) error {
	p.debug("visit", "url", url)
	return p.driver.Get(ctx, url)
}

func (p *Page) Find(ctx context.Context, locator entity.Locator) (output.Element, error) {
	p.debug("find", "locator", locator.String())
	return p.driver.FindElement(ctx, locator)
}

func (p *Page) Click(ctx context.Context, locator entity.Locator) error {
	el, err := p.Find(ctx, locator)
	if err != nil {
		return err
	}
	p.debug("click", "locator", locator.String())
	return el.Click(ctx)
}

func (p *Page) Type(ctx context.Context, locator entity.Locator, text string) error {
	el, err := p.Find(ctx, locator)
	if err != nil {
		return err
	}
	p.debug("type", "locator", locator.String(), "length", len(text))
	return el.SendKeys(ctx, text)
}

func (p *Page) IsDisplayed(ctx context.Context, locator entity.Locator) (bool, error) {
	el, err := p.Find(ctx, locator)
	if err != nil {
		return false, err
	}
	return el.IsDisplayed(ctx)
}

// IsPresent reports whether locator resolves to a displayed element. A
// missing element is not an error here.
func (p *Page) IsPresent(ctx context.Context, locator entity.Locator) (bool, error) {
	displayed, err := p.IsDisplayed(ctx, locator)
	if errors.Is(err, output.ErrElementNotFound) {
		return false, nil
	}
	return displayed, err
}

func (p *Page) Text(ctx context.Context, locator entity.Locator) (string, error) {
	el, err := p.Find(ctx, locator)
	if err != nil {
		return "", err
	}
	return el.Text(ctx)
}

func (p *Page) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
