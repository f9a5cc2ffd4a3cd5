package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/minbar/pkg/core"
)

// Markers delimiting the editable copy in the homepage.
const (
	CopyStart = "<!--COPY_START-->"
	CopyEnd   = "<!--COPY_END-->"
)

// ReplaceCopy replaces everything strictly between the first CopyStart and the
// first CopyEnd after it with text on its own lines. The markers are kept.
func ReplaceCopy(html, text string) (string, error) {
	start := strings.Index(html, CopyStart)
	if start < 0 {
		return "", fmt.Errorf("%w: %s missing", core.ErrMarkersNotFound, CopyStart)
	}
	bodyStart := start + len(CopyStart)
	end := strings.Index(html[bodyStart:], CopyEnd)
	if end < 0 {
		return "", fmt.Errorf("%w: no %s after %s", core.ErrMarkersNotFound, CopyEnd, CopyStart)
	}
	return html[:bodyStart] + "\n" + text + "\n" + html[bodyStart+end:], nil
}

func editHomepageCopy(ctx context.Context, call Call) (any, error) {
	text, err := call.Args.RequiredString("instructions")
	if err != nil {
		return nil, err
	}

	page, err := call.Env.Store.ReadAsset(ctx, call.Site, HomepagePath)
	if err != nil {
		return nil, fmt.Errorf("read homepage: %w", err)
	}
	updated, err := ReplaceCopy(string(page.Content), text)
	if err != nil {
		return nil, err
	}

	page.Content = []byte(updated)
	msg := core.FormatChangeReason(core.CommitTypeFeat, "", "edit homepage copy", "")
	if _, err := call.Env.Store.PutAsset(ctx, call.Site, page, msg); err != nil {
		return nil, fmt.Errorf("write homepage: %w", err)
	}
	return core.Metadata{"updated": true}, nil
}
