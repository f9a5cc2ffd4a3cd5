package tools

import (
	"context"
	"path"

	"github.com/aretw0/minbar/pkg/core"
)

// uploadImage stores one image unconditionally.
func uploadImage(ctx context.Context, call Call) (any, error) {
	img, err := call.Args.Image("file")
	if err != nil {
		return nil, err
	}
	stored, err := call.Env.putImage(ctx, call.Site, *img, "upload image")
	if err != nil {
		return nil, imageFailure(img.Filename, err)
	}
	return core.Metadata{"filename": stored, "path": path.Join(ImagesDir, stored)}, nil
}
