package output

import (
	"context"
	"errors"

	"browser-pages/internal/domain/entity"
)

var (
	ErrElementNotFound = errors.New("element not found")
	ErrDriverClosed    = errors.New("driver is closed")
)

// Driver is a browser automation session. Page objects delegate every
// operation to it.
type Driver interface {
	Get(ctx context.Context, url string) error
	FindElement(ctx context.Context, locator entity.Locator) (Element, error)

	CurrentURL(ctx context.Context) (string, error)
	PageSource(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) (*entity.Screenshot, error)

	Quit() error
}

type Element interface {
	Click(ctx context.Context) error
	SendKeys(ctx context.Context, text string) error
	IsDisplayed(ctx context.Context) (bool, error)
	Text(ctx context.Context) (string, error)
}
