package page

import (
	"context"
	"fmt"

	"browser-pages/internal/application/port/output"
	"browser-pages/internal/domain/entity"

	"github.com/stretchr/testify/mock"
)

type mockDriver struct {
	mock.Mock
}

var _ output.Driver = (*mockDriver)(nil)

func (m *mockDriver) Get(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

func (m *mockDriver) FindElement(ctx context.Context, locator entity.Locator) (output.Element, error) {
	args := m.Called(ctx, locator)
	el, _ := args.Get(0).(output.Element)
	return el, args.Error(1)
}

func (m *mockDriver) CurrentURL(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockDriver) PageSource(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockDriver) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	args := m.Called(ctx)
	shot, _ := args.Get(0).(*entity.Screenshot)
	return shot, args.Error(1)
}

func (m *mockDriver) Quit() error {
	return m.Called().Error(0)
}

type mockElement struct {
	mock.Mock
}

var _ output.Element = (*mockElement)(nil)

func (m *mockElement) Click(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockElement) SendKeys(ctx context.Context, text string) error {
	return m.Called(ctx, text).Error(0)
}

func (m *mockElement) IsDisplayed(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *mockElement) Text(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) record(level, msg string, args ...any) {
	l.lines = append(l.lines, fmt.Sprint(append([]any{level, msg}, args...)...))
}

func (l *recordingLogger) Debug(msg string, args ...any) { l.record("DEBUG", msg, args...) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.record("INFO", msg, args...) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.record("WARN", msg, args...) }
func (l *recordingLogger) Error(msg string, args ...any) { l.record("ERROR", msg, args...) }

func (l *recordingLogger) WithField(string, any) output.LoggerPort     { return l }
func (l *recordingLogger) WithFields(map[string]any) output.LoggerPort { return l }
func (l *recordingLogger) Close() error                                { return nil }
