package testkit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"browser-pages/internal/application/port/output"
	"browser-pages/internal/infrastructure/pagesource"
)

// SaveArtifacts writes a screenshot and the cleaned page source of the
// current page into dir. A failed capture does not prevent the other one.
func SaveArtifacts(ctx context.Context, driver output.Driver, dir, name string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	base := filepath.Join(dir, fileName(name))

	var (
		paths []string
		errs  []error
	)

	if shot, err := driver.Screenshot(ctx); err != nil {
		errs = append(errs, fmt.Errorf("screenshot: %w", err))
	} else {
		path := base + "." + extension(shot.Format)
		if err := os.WriteFile(path, shot.Data, 0644); err != nil {
			errs = append(errs, fmt.Errorf("write screenshot: %w", err))
		} else {
			paths = append(paths, path)
		}
	}

	if source, err := driver.PageSource(ctx); err != nil {
		errs = append(errs, fmt.Errorf("page source: %w", err))
	} else {
		path := base + ".html"
		if err := os.WriteFile(path, []byte(pagesource.Clean(source, nil)), 0644); err != nil {
			errs = append(errs, fmt.Errorf("write page source: %w", err))
		} else {
			paths = append(paths, path)
		}
	}

	return paths, errors.Join(errs...)
}

func extension(format string) string {
	switch format {
	case "jpeg", "":
		return "jpg"
	default:
		return format
	}
}

func fileName(name string) string {
	return strings.NewReplacer("/", "_", " ", "_", ":", "_").Replace(name)
}
