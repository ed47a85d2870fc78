package material

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	getter "github.com/hashicorp/go-getter"
)

// Fetch copies a materials file from any go-getter source (local path, http,
// s3::, git::...) into dir and returns the local path.
func Fetch(ctx context.Context, src, dir string) (string, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", fmt.Errorf("materials source is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	pwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	dst := filepath.Join(dir, "materials.yaml")
	c := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: getter.ClientModeFile,
	}
	if err := c.Get(); err != nil {
		return "", fmt.Errorf("fetch materials %s: %w", src, err)
	}
	return dst, nil
}

// FetchAndLoad resolves src into dir and extends the built-ins with it.
func FetchAndLoad(ctx context.Context, src, dir string) (Presets, error) {
	path, err := Fetch(ctx, src, dir)
	if err != nil {
		return Builtins(), err
	}
	return LoadFile(path)
}
