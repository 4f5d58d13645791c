package di

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"browser-pages/internal/application/port/output"
	"browser-pages/internal/infrastructure/browser/rod"
	"browser-pages/internal/infrastructure/browser/selenium"
	"browser-pages/internal/infrastructure/logger"
)

const (
	HostLocal     = "localhost"
	HostSauceLabs = "saucelabs"
	HostRemote    = "remote"

	BrowserChrome = "chrome"

	DefaultBaseURL = "http://the-internet.herokuapp.com"
)

var (
	ErrUnknownHost      = errors.New("unknown host")
	ErrMissingRemoteURL = errors.New("REMOTE_URL is required for host remote")
)

type Container struct {
	Driver output.Driver
	Logger output.LoggerPort
	Config Config
}

type Config struct {
	Host           string
	BrowserName    string
	BrowserVersion string
	PlatformName   string
	RemoteURL      string
	SauceUsername  string
	SauceAccessKey string
	Headless       bool
	Timeout        time.Duration
	BaseURL        string

	LogLevel    string
	LogDir      string
	LogName     string
	ArtifactDir string
}

func LoadConfig(env output.ConfigPort) Config {
	return Config{
		Host:           strings.ToLower(env.GetWithDefault("HOST", HostLocal)),
		BrowserName:    strings.ToLower(env.GetWithDefault("BROWSER_NAME", BrowserChrome)),
		BrowserVersion: env.Get("BROWSER_VERSION"),
		PlatformName:   env.Get("PLATFORM_NAME"),
		RemoteURL:      env.Get("REMOTE_URL"),
		SauceUsername:  env.Get("SAUCE_USERNAME"),
		SauceAccessKey: env.Get("SAUCE_ACCESS_KEY"),
		Headless:       env.GetBool("HEADLESS", true),
		Timeout:        env.GetDuration("TIMEOUT", 10*time.Second),
		BaseURL:        env.GetWithDefault("BASE_URL", DefaultBaseURL),
		LogLevel:       env.GetWithDefault("LOG_LEVEL", "info"),
		LogDir:         env.GetWithDefault("LOG_DIR", "log"),
		ArtifactDir:    env.GetWithDefault("ARTIFACT_DIR", "artifacts"),
	}
}

// UsesLocalBrowser reports whether the session is driven by a Chromium
// launched on this machine.
func (c Config) UsesLocalBrowser() bool {
	return c.Host == HostLocal && c.BrowserName == BrowserChrome
}

// DriverFactory opens a browser session for cfg.
type DriverFactory func(ctx context.Context, cfg Config) (output.Driver, error)

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	return NewContainerWith(ctx, cfg, NewDriver)
}

func NewContainerWith(ctx context.Context, cfg Config, newDriver DriverFactory) (*Container, error) {
	logCfg := logger.DefaultConfig()
	if cfg.LogLevel != "" {
		logCfg.Level = cfg.LogLevel
	}
	if cfg.LogDir != "" {
		logCfg.Dir = cfg.LogDir
	}
	if cfg.LogName != "" {
		logCfg.Name = cfg.LogName
	}

	log, err := logger.NewLoggerAdapter(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	driver, err := newDriver(ctx, cfg)
	if err != nil {
		log.Error("driver start failed", "host", cfg.Host, "browser", cfg.BrowserName, "error", err)
		log.Close()
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}
	log.Info("driver started", "host", cfg.Host, "browser", cfg.BrowserName)

	return &Container{
		Driver: driver,
		Logger: log,
		Config: cfg,
	}, nil
}

type DriverKind int

const (
	KindRod DriverKind = iota
	KindSelenium
)

// DriverTarget is the driver implementation a Config resolves to and, for
// WebDriver sessions, the endpoint it talks to.
type DriverTarget struct {
	Kind      DriverKind
	RemoteURL string
}

// ResolveDriver maps host and browser to a driver. An explicit RemoteURL
// overrides the host's default endpoint; host remote requires one.
func ResolveDriver(cfg Config) (DriverTarget, error) {
	switch cfg.Host {
	case HostLocal:
		if cfg.BrowserName == BrowserChrome {
			return DriverTarget{Kind: KindRod}, nil
		}
		return DriverTarget{Kind: KindSelenium, RemoteURL: orDefault(cfg.RemoteURL, selenium.DefaultLocalURL)}, nil
	case HostSauceLabs:
		return DriverTarget{Kind: KindSelenium, RemoteURL: orDefault(cfg.RemoteURL, selenium.SauceLabsURL)}, nil
	case HostRemote:
		if cfg.RemoteURL == "" {
			return DriverTarget{}, ErrMissingRemoteURL
		}
		return DriverTarget{Kind: KindSelenium, RemoteURL: cfg.RemoteURL}, nil
	default:
		return DriverTarget{}, fmt.Errorf("%w: %q", ErrUnknownHost, cfg.Host)
	}
}

// NewDriver opens the driver ResolveDriver picks for cfg.
func NewDriver(ctx context.Context, cfg Config) (output.Driver, error) {
	target, err := ResolveDriver(cfg)
	if err != nil {
		return nil, err
	}

	if target.Kind == KindRod {
		browserCfg := rod.DefaultConfig()
		browserCfg.Headless = cfg.Headless
		browserCfg.Timeout = cfg.Timeout
		return driverOrNil(rod.NewDriver(ctx, browserCfg))
	}
	return driverOrNil(selenium.NewDriver(ctx, seleniumConfig(cfg, target.RemoteURL)))
}

// driverOrNil keeps a typed nil pointer out of the returned interface.
func driverOrNil[D output.Driver](d D, err error) (output.Driver, error) {
	if err != nil {
		return nil, err
	}
	return d, nil
}

func seleniumConfig(cfg Config, remoteURL string) selenium.Config {
	return selenium.Config{
		RemoteURL:      remoteURL,
		BrowserName:    cfg.BrowserName,
		BrowserVersion: cfg.BrowserVersion,
		PlatformName:   cfg.PlatformName,
		Timeout:        cfg.Timeout,
		SauceUsername:  cfg.SauceUsername,
		SauceAccessKey: cfg.SauceAccessKey,
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func (c *Container) Close() {
	if c.Driver != nil {
		if err := c.Driver.Quit(); err != nil && c.Logger != nil {
			c.Logger.Warn("driver quit failed", "error", err)
		}
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}
