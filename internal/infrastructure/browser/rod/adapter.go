package rod

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"browser-pages/internal/application/port/output"
	"browser-pages/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultSlowMotion  = 0
	screenshotMaxWidth = 1024
	screenshotQuality  = 80
)

var (
	ErrInvalidURL = errors.New("invalid url")

	allowedSchemes = map[string]bool{"http": true, "https": true, "file": true, "about": true}
)

var _ output.Driver = (*Driver)(nil)

// Driver drives a single Chromium tab over the DevTools protocol.
type Driver struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration

	mu     sync.RWMutex
	closed bool
}

type DriverConfig struct {
	Headless   bool
	SlowMotion time.Duration
	Timeout    time.Duration
	NoSandbox  bool
	DevTools   bool
	Trace      bool

	// ControlURL connects to an already running browser instead of launching one.
	ControlURL string
}

func DefaultConfig() DriverConfig {
	return DriverConfig{
		Headless:   true,
		SlowMotion: defaultSlowMotion,
		Timeout:    defaultTimeout,
	}
}

// Available reports whether a local Chromium binary can be found without
// downloading one.
func Available() bool {
	_, has := launcher.LookPath()
	return has
}

func NewDriver(ctx context.Context, cfg DriverConfig) (*Driver, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	var l *launcher.Launcher
	controlURL := cfg.ControlURL
	if controlURL == "" {
		l = launcher.New().
			Headless(cfg.Headless).
			Devtools(cfg.DevTools).
			NoSandbox(cfg.NoSandbox).
			Delete("use-mock-keychain")

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		controlURL = u
	}

	browser := rod.New().
		ControlURL(controlURL).
		Trace(cfg.Trace)
	if cfg.SlowMotion > 0 {
		browser = browser.SlowMotion(cfg.SlowMotion)
	}
	if err := browser.Connect(); err != nil {
		killLauncher(l)
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		killLauncher(l)
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &Driver{
		browser:  browser,
		launcher: l,
		page:     page,
		timeout:  cfg.Timeout,
	}, nil
}

func (d *Driver) Get(ctx context.Context, rawURL string) error {
	if d.isClosed() {
		return output.ErrDriverClosed
	}
	if err := validateURL(rawURL); err != nil {
		return err
	}

	pg := d.page.Context(ctx)
	if err := pg.Navigate(rawURL); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := pg.WaitLoad(); err != nil {
		return fmt.Errorf("wait load failed: %w", err)
	}
	return nil
}

func (d *Driver) FindElement(ctx context.Context, locator entity.Locator) (output.Element, error) {
	if d.isClosed() {
		return nil, output.ErrDriverClosed
	}
	if err := locator.Validate(); err != nil {
		return nil, err
	}

	pg := d.page.Context(ctx).Timeout(d.timeout)
	defer pg.CancelTimeout()

	el, err := findBy(pg, locator)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %s", output.ErrElementNotFound, locator)
		}
		return nil, fmt.Errorf("find %s: %w", locator, err)
	}
	// el inherits pg's timeout context, which is cancelled on return.
	return &Element{el: el.Context(ctx)}, nil
}

func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	if d.isClosed() {
		return "", output.ErrDriverClosed
	}
	info, err := d.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

func (d *Driver) PageSource(ctx context.Context) (string, error) {
	if d.isClosed() {
		return "", output.ErrDriverClosed
	}
	html, err := d.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

func (d *Driver) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	if d.isClosed() {
		return nil, output.ErrDriverClosed
	}

	imgBytes, err := d.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(screenshotQuality),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	if img.Bounds().Dx() > screenshotMaxWidth {
		img = imaging.Resize(img, screenshotMaxWidth, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

func (d *Driver) Quit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	var err error
	if d.browser != nil {
		err = d.browser.Close()
	}
	killLauncher(d.launcher)
	return err
}

func (d *Driver) isClosed() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.closed
}

// Element is a resolved DOM node.
type Element struct {
	el *rod.Element
}

var _ output.Element = (*Element)(nil)

func (e *Element) Click(ctx context.Context) error {
	if err := e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func (e *Element) SendKeys(ctx context.Context, text string) error {
	if err := e.el.Context(ctx).Input(text); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	return nil
}

func (e *Element) IsDisplayed(ctx context.Context) (bool, error) {
	visible, err := e.el.Context(ctx).Visible()
	if err != nil {
		return false, fmt.Errorf("visibility check failed: %w", err)
	}
	return visible, nil
}

func (e *Element) Text(ctx context.Context) (string, error) {
	text, err := e.el.Context(ctx).Text()
	if err != nil {
		return "", fmt.Errorf("text failed: %w", err)
	}
	return text, nil
}

func findBy(pg *rod.Page, locator entity.Locator) (*rod.Element, error) {
	switch locator.Strategy {
	case entity.XPath:
		return pg.ElementX(locator.Value)
	case entity.ID:
		return pg.Element(attributeSelector("id", locator.Value))
	case entity.Name:
		return pg.Element(attributeSelector("name", locator.Value))
	case entity.LinkText:
		return pg.ElementR("a", linkTextPattern(locator.Value))
	default:
		return pg.Element(locator.Value)
	}
}

func attributeSelector(attr, value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	return fmt.Sprintf(`[%s="%s"]`, attr, value)
}

func linkTextPattern(text string) string {
	return `/^\s*` + regexp.QuoteMeta(text) + `\s*$/`
}

func validateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !allowedSchemes[strings.ToLower(u.Scheme)] {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	return nil
}

func killLauncher(l *launcher.Launcher) {
	if l == nil {
		return
	}
	l.Kill()
	l.Cleanup()
}
