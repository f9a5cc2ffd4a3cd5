package tools

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/minbar/pkg/core"
)

// ImagesDir is where uploaded images live within a site.
const ImagesDir = "docs/assets/images"

// DefaultAssetPatterns accepts every file name. Deployments narrow it through
// assets.allowed.
var DefaultAssetPatterns = []string{"*"}

// ImagePath reduces filename to its base name and returns its location in the
// site, or ErrInvalidArgument if the name is empty or not allowed.
func (e *Env) ImagePath(filename string) (string, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", fmt.Errorf("%w: invalid image filename %q", core.ErrInvalidArgument, filename)
	}

	lower := strings.ToLower(name)
	for _, pattern := range e.AssetPatterns {
		ok, err := doublestar.Match(strings.ToLower(pattern), lower)
		if err != nil {
			return "", fmt.Errorf("%w: bad asset pattern %q: %v", core.ErrInternal, pattern, err)
		}
		if ok {
			return path.Join(ImagesDir, name), nil
		}
	}
	return "", fmt.Errorf("%w: file type not allowed: %s", core.ErrInvalidArgument, name)
}

// putImage writes img unconditionally and returns its stored file name.
func (e *Env) putImage(ctx context.Context, site core.SiteRef, img Image, subject string) (string, error) {
	p, err := e.ImagePath(img.Filename)
	if err != nil {
		return "", err
	}
	name := path.Base(p)
	msg := core.FormatChangeReason(core.CommitTypeFeat, "", subject+" "+name, "")
	if _, err := e.Store.PutAsset(ctx, site, core.Asset{Path: p, Content: img.Data}, msg); err != nil {
		return "", err
	}
	e.Logger.Debug("image stored", "site", site.String(), "path", p, "bytes", len(img.Data))
	return name, nil
}

// imageFailure wraps err as an ImageUploadFailed error for filename.
func imageFailure(filename string, err error) error {
	return fmt.Errorf("%w: %s: %w", core.ErrImageUploadFailed, filename, err)
}
