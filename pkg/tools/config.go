package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/minbar/pkg/core"
	"github.com/aretw0/minbar/pkg/typed"
)

// updateConfig shallow-merges changes over config.json.
func updateConfig(ctx context.Context, call Call) (any, error) {
	changes, err := call.Args.Object("changes")
	if err != nil {
		return nil, err
	}

	repo := typed.NewRepository[core.Metadata](call.Env.Store)
	doc, err := repo.GetOrDefault(ctx, call.Site, ConfigPath, core.Metadata{})
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if doc.Data == nil {
		doc.Data = core.Metadata{}
	}

	keys := make([]string, 0, len(changes))
	for k, v := range changes {
		doc.Data[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)

	body := ""
	if len(keys) > 0 {
		body = "keys: " + strings.Join(keys, ", ")
	}
	msg := core.FormatChangeReason(core.CommitTypeFeat, "", "update config", body)
	if err := doc.Save(ctx, msg); err != nil {
		return nil, fmt.Errorf("write config: %w", err)
	}
	return changes, nil
}
