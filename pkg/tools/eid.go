package tools

import (
	"context"
	"fmt"

	"github.com/aretw0/minbar/pkg/core"
	"github.com/aretw0/minbar/pkg/typed"
)

// setEid overwrites only the supplied fields. An empty datetime clears it.
func setEid(ctx context.Context, call Call) (any, error) {
	visible, hasVisible, err := call.Args.Bool("visible")
	if err != nil {
		return nil, err
	}
	datetime, err := call.Args.String("datetime")
	if err != nil {
		return nil, err
	}
	hasDatetime := call.Args.Has("datetime")

	repo := typed.NewRepository[EidState](call.Env.Store)
	doc, err := repo.GetOrDefault(ctx, call.Site, EidPath, EidState{})
	if err != nil {
		return nil, fmt.Errorf("read eid: %w", err)
	}

	if hasVisible {
		doc.Data.Visible = visible
	}
	if hasDatetime {
		if datetime == "" {
			doc.Data.Datetime = nil
		} else {
			doc.Data.Datetime = &datetime
		}
	}

	msg := core.FormatChangeReason(core.CommitTypeFeat, "", "set eid", "")
	if err := doc.Save(ctx, msg); err != nil {
		return nil, fmt.Errorf("write eid: %w", err)
	}
	return doc.Data, nil
}
