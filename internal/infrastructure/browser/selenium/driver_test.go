package selenium

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"browser-pages/internal/application/port/output"
	"browser-pages/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tebeka/selenium"
)

// fakeWebDriver overrides only what Driver uses; anything else panics on the
// nil embedded interface.
type fakeWebDriver struct {
	selenium.WebDriver

	visited  []string
	elements map[string]*fakeWebElement
	findErr  error
	readErr  error
	shot     []byte
	quits    int
}

func (f *fakeWebDriver) Get(url string) error {
	f.visited = append(f.visited, url)
	return nil
}

func (f *fakeWebDriver) FindElement(by, value string) (selenium.WebElement, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if el, ok := f.elements[by+"|"+value]; ok {
		return el, nil
	}
	return nil, &selenium.Error{Err: "no such element", Message: "Unable to locate element"}
}

func (f *fakeWebDriver) CurrentURL() (string, error) {
	if f.readErr != nil {
		return "", f.readErr
	}
	if len(f.visited) == 0 {
		return "about:blank", nil
	}
	return f.visited[len(f.visited)-1], nil
}

func (f *fakeWebDriver) PageSource() (string, error) {
	if f.readErr != nil {
		return "", f.readErr
	}
	return "<html><body><h2>Login Page</h2></body></html>", nil
}

func (f *fakeWebDriver) Screenshot() ([]byte, error) {
	return f.shot, nil
}

func (f *fakeWebDriver) Quit() error {
	f.quits++
	return nil
}

type fakeWebElement struct {
	selenium.WebElement

	clicks    int
	keys      []string
	displayed bool
	text      string
	err       error
}

func (f *fakeWebElement) Click() error               { f.clicks++; return f.err }
func (f *fakeWebElement) SendKeys(keys string) error { f.keys = append(f.keys, keys); return f.err }
func (f *fakeWebElement) IsDisplayed() (bool, error) { return f.displayed, f.err }
func (f *fakeWebElement) Text() (string, error)      { return f.text, f.err }

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestByFor(t *testing.T) {
	tests := []struct {
		locator entity.Locator
		by      string
	}{
		{entity.ByCSS("#flash"), selenium.ByCSSSelector},
		{entity.ByXPath("//h2"), selenium.ByXPATH},
		{entity.ByID("username"), selenium.ByID},
		{entity.ByName("password"), selenium.ByName},
		{entity.ByLinkText("Logout"), selenium.ByLinkText},
		{entity.ByTagName("form"), selenium.ByTagName},
	}

	for _, tt := range tests {
		t.Run(tt.locator.String(), func(t *testing.T) {
			by, value, err := byFor(tt.locator)
			require.NoError(t, err)
			assert.Equal(t, tt.by, by)
			assert.Equal(t, tt.locator.Value, value)
		})
	}

	_, _, err := byFor(entity.ByID(""))
	assert.ErrorIs(t, err, entity.ErrEmptyLocator)
}

func TestConfig_Capabilities(t *testing.T) {
	caps := Config{BrowserName: "firefox"}.Capabilities()
	assert.Equal(t, selenium.Capabilities{"browserName": "firefox"}, caps)

	caps = Config{
		BrowserName:    "chrome",
		BrowserVersion: "86.0",
		PlatformName:   "Windows 10",
		SauceUsername:  "user",
		SauceAccessKey: "key",
	}.Capabilities()
	assert.Equal(t, "86.0", caps["browserVersion"])
	assert.Equal(t, "Windows 10", caps["platformName"])
	assert.Equal(t, map[string]any{"username": "user", "accessKey": "key"}, caps["sauce:options"])
}

func TestNewDriver_RequiresBrowser(t *testing.T) {
	_, err := NewDriver(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrMissingBrowser)
}

func TestNewDriver_SessionRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"value":{"error":"session not created","message":"no matching capabilities"}}`))
	}))
	defer server.Close()

	_, err := NewDriver(context.Background(), Config{RemoteURL: server.URL, BrowserName: "chrome"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start remote session")
}

func TestDriver_Delegates(t *testing.T) {
	ctx := context.Background()
	button := &fakeWebElement{displayed: true, text: "Login"}
	wd := &fakeWebDriver{
		elements: map[string]*fakeWebElement{selenium.ByCSSSelector + "|button": button},
		shot:     pngBytes(t, 40, 30),
	}
	driver := newDriver(wd)

	require.NoError(t, driver.Get(ctx, "http://localhost/login"))
	current, err := driver.CurrentURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/login", current)

	el, err := driver.FindElement(ctx, entity.ByCSS("button"))
	require.NoError(t, err)
	require.NoError(t, el.Click(ctx))
	require.NoError(t, el.SendKeys(ctx, "abc"))
	shown, err := el.IsDisplayed(ctx)
	require.NoError(t, err)
	text, err := el.Text(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, button.clicks)
	assert.Equal(t, []string{"abc"}, button.keys)
	assert.True(t, shown)
	assert.Equal(t, "Login", text)

	source, err := driver.PageSource(ctx)
	require.NoError(t, err)
	assert.Contains(t, source, "Login Page")

	shot, err := driver.Screenshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "png", shot.Format)
	assert.Equal(t, 40, shot.Width)
	assert.Equal(t, 30, shot.Height)
}

func TestDriver_FindElement_NotFound(t *testing.T) {
	driver := newDriver(&fakeWebDriver{})

	_, err := driver.FindElement(context.Background(), entity.ByID("missing"))
	assert.ErrorIs(t, err, output.ErrElementNotFound)

	var se *selenium.Error
	assert.ErrorAs(t, err, &se)
}

func TestDriver_FindElement_OtherError(t *testing.T) {
	sessionErr := errors.New("invalid session id")
	driver := newDriver(&fakeWebDriver{findErr: sessionErr})

	_, err := driver.FindElement(context.Background(), entity.ByID("x"))
	assert.ErrorIs(t, err, sessionErr)
	assert.NotErrorIs(t, err, output.ErrElementNotFound)
}

func TestDriver_WrapsRemoteErrors(t *testing.T) {
	stale := &selenium.Error{Err: "stale element reference", Message: "element is not attached to the page document"}
	driver := newDriver(&fakeWebDriver{readErr: stale})
	el := &Element{we: &fakeWebElement{err: stale}}
	ctx := context.Background()

	tests := []struct {
		name   string
		call   func() error
		prefix string
	}{
		{"CurrentURL", func() error { _, err := driver.CurrentURL(ctx); return err }, "current url: "},
		{"PageSource", func() error { _, err := driver.PageSource(ctx); return err }, "page source: "},
		{"Click", func() error { return el.Click(ctx) }, "click failed: "},
		{"SendKeys", func() error { return el.SendKeys(ctx, "x") }, "input failed: "},
		{"IsDisplayed", func() error { _, err := el.IsDisplayed(ctx); return err }, "visibility check failed: "},
		{"Text", func() error { _, err := el.Text(ctx); return err }, "text failed: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.ErrorIs(t, err, stale)
			assert.True(t, strings.HasPrefix(err.Error(), tt.prefix), err.Error())

			var se *selenium.Error
			assert.ErrorAs(t, err, &se)
		})
	}
}

func TestDriver_CancelledContext(t *testing.T) {
	wd := &fakeWebDriver{}
	driver := newDriver(wd)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := driver.Get(ctx, "http://localhost/")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, wd.visited)

	el := &Element{we: &fakeWebElement{}}
	assert.ErrorIs(t, el.Click(ctx), context.Canceled)
}

func TestDriver_Quit(t *testing.T) {
	wd := &fakeWebDriver{}
	driver := newDriver(wd)

	require.NoError(t, driver.Quit())
	require.NoError(t, driver.Quit())
	assert.Equal(t, 1, wd.quits)

	err := driver.Get(context.Background(), "http://localhost/")
	assert.ErrorIs(t, err, output.ErrDriverClosed)
}
