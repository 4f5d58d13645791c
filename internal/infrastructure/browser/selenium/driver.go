// Package selenium drives a browser through a remote W3C WebDriver endpoint
// such as a Selenium server, a local geckodriver or Sauce Labs.
package selenium

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"strings"
	"sync"
	"time"

	"browser-pages/internal/application/port/output"
	"browser-pages/internal/domain/entity"

	"github.com/tebeka/selenium"
)

const (
	DefaultLocalURL = "http://localhost:4444/wd/hub"
	SauceLabsURL    = "https://ondemand.us-west-1.saucelabs.com/wd/hub"

	defaultTimeout = 10 * time.Second
)

var ErrMissingBrowser = errors.New("browser name is required")

var _ output.Driver = (*Driver)(nil)

type Config struct {
	RemoteURL      string
	BrowserName    string
	BrowserVersion string
	PlatformName   string
	Timeout        time.Duration

	// Sauce Labs credentials, sent as sauce:options when set.
	SauceUsername  string
	SauceAccessKey string
}

// Capabilities builds the W3C capabilities for a new session.
func (c Config) Capabilities() selenium.Capabilities {
	caps := selenium.Capabilities{"browserName": c.BrowserName}
	if c.BrowserVersion != "" {
		caps["browserVersion"] = c.BrowserVersion
	}
	if c.PlatformName != "" {
		caps["platformName"] = c.PlatformName
	}
	if c.SauceUsername != "" {
		caps["sauce:options"] = map[string]any{
			"username":  c.SauceUsername,
			"accessKey": c.SauceAccessKey,
		}
	}
	return caps
}

type Driver struct {
	wd selenium.WebDriver

	mu     sync.Mutex
	closed bool
}

func NewDriver(ctx context.Context, cfg Config) (*Driver, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.BrowserName == "" {
		return nil, ErrMissingBrowser
	}
	if cfg.RemoteURL == "" {
		cfg.RemoteURL = DefaultLocalURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	wd, err := selenium.NewRemote(cfg.Capabilities(), cfg.RemoteURL)
	if err != nil {
		return nil, fmt.Errorf("failed to start remote session at %s: %w", cfg.RemoteURL, err)
	}
	if err := wd.SetImplicitWaitTimeout(cfg.Timeout); err != nil {
		_ = wd.Quit()
		return nil, fmt.Errorf("failed to set implicit wait: %w", err)
	}

	return newDriver(wd), nil
}

func newDriver(wd selenium.WebDriver) *Driver {
	return &Driver{wd: wd}
}

func (d *Driver) Get(ctx context.Context, url string) error {
	if err := d.ready(ctx); err != nil {
		return err
	}
	if err := d.wd.Get(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (d *Driver) FindElement(ctx context.Context, locator entity.Locator) (output.Element, error) {
	if err := d.ready(ctx); err != nil {
		return nil, err
	}
	by, value, err := byFor(locator)
	if err != nil {
		return nil, err
	}

	we, err := d.wd.FindElement(by, value)
	if err != nil {
		if isNoSuchElement(err) {
			return nil, fmt.Errorf("%w: %s: %w", output.ErrElementNotFound, locator, err)
		}
		return nil, fmt.Errorf("find %s: %w", locator, err)
	}
	return &Element{we: we}, nil
}

func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	if err := d.ready(ctx); err != nil {
		return "", err
	}
	url, err := d.wd.CurrentURL()
	if err != nil {
		return "", fmt.Errorf("current url: %w", err)
	}
	return url, nil
}

func (d *Driver) PageSource(ctx context.Context) (string, error) {
	if err := d.ready(ctx); err != nil {
		return "", err
	}
	src, err := d.wd.PageSource()
	if err != nil {
		return "", fmt.Errorf("page source: %w", err)
	}
	return src, nil
}

func (d *Driver) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	if err := d.ready(ctx); err != nil {
		return nil, err
	}

	data, err := d.wd.Screenshot()
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   data,
		Format: "png",
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

func (d *Driver) Quit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.wd.Quit()
}

// ready fails fast on a cancelled context or a quit session; the WebDriver
// client itself has no context support.
func (d *Driver) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return output.ErrDriverClosed
	}
	return nil
}

type Element struct {
	we selenium.WebElement
}

var _ output.Element = (*Element)(nil)

func (e *Element) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.we.Click(); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func (e *Element) SendKeys(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.we.SendKeys(text); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	return nil
}

func (e *Element) IsDisplayed(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	shown, err := e.we.IsDisplayed()
	if err != nil {
		return false, fmt.Errorf("visibility check failed: %w", err)
	}
	return shown, nil
}

func (e *Element) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := e.we.Text()
	if err != nil {
		return "", fmt.Errorf("text failed: %w", err)
	}
	return text, nil
}

func byFor(locator entity.Locator) (by, value string, err error) {
	if err := locator.Validate(); err != nil {
		return "", "", err
	}
	switch locator.Strategy {
	case entity.XPath:
		return selenium.ByXPATH, locator.Value, nil
	case entity.ID:
		return selenium.ByID, locator.Value, nil
	case entity.Name:
		return selenium.ByName, locator.Value, nil
	case entity.LinkText:
		return selenium.ByLinkText, locator.Value, nil
	case entity.TagName:
		return selenium.ByTagName, locator.Value, nil
	default:
		return selenium.ByCSSSelector, locator.Value, nil
	}
}

func isNoSuchElement(err error) bool {
	var se *selenium.Error
	if errors.As(err, &se) {
		return se.Err == "no such element"
	}
	return strings.Contains(err.Error(), "no such element")
}
