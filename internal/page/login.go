package page

import (
	"context"
	"strings"

	"browser-pages/internal/application/port/output"
	"browser-pages/internal/domain/entity"
)

var (
	LoginUsernameInput = entity.ByID("username")
	LoginPasswordInput = entity.ByID("password")
	LoginSubmitButton  = entity.ByCSS("button[type='submit']")
	LoginSuccessFlash  = entity.ByCSS(".flash.success")
	LoginFailureFlash  = entity.ByCSS(".flash.error")
)

// Login is the page object for the /login form.
type Login struct {
	*Page
}

// NewLogin opens <baseURL>/login.
func NewLogin(ctx context.Context, driver output.Driver, baseURL string, opts ...Option) (*Login, error) {
	l := &Login{Page: New(driver, opts...)}
	if err := l.Visit(ctx, strings.TrimRight(baseURL, "/")+"/login"); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Login) With(ctx context.Context, username, password string) error {
	if err := l.Type(ctx, LoginUsernameInput, username); err != nil {
		return err
	}
	if err := l.Type(ctx, LoginPasswordInput, password); err != nil {
		return err
	}
	return l.Click(ctx, LoginSubmitButton)
}

func (l *Login) SuccessMessagePresent(ctx context.Context) (bool, error) {
	return l.IsPresent(ctx, LoginSuccessFlash)
}

func (l *Login) FailureMessagePresent(ctx context.Context) (bool, error) {
	return l.IsPresent(ctx, LoginFailureFlash)
}
