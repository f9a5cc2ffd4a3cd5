package tools

import (
	"context"
	"fmt"

	"github.com/aretw0/minbar/pkg/core"
	"github.com/aretw0/minbar/pkg/typed"
)

// addAnnouncement appends one entry, in arrival order. An attached image is
// stored first and the entry records only its file name.
func addAnnouncement(ctx context.Context, call Call) (any, error) {
	env := call.Env
	text, err := call.Args.RequiredString("text")
	if err != nil {
		return nil, err
	}
	startAt, err := call.Args.String("start_at")
	if err != nil {
		return nil, err
	}
	endAt, err := call.Args.String("end_at")
	if err != nil {
		return nil, err
	}
	image, err := call.Args.Image("image")
	if err != nil {
		return nil, err
	}

	repo := typed.NewRepository[Announcements](env.Store)
	doc, err := repo.GetOrDefault(ctx, call.Site, AnnouncementsPath, Announcements{Items: []core.Metadata{}})
	if err != nil {
		return nil, fmt.Errorf("read announcements: %w", err)
	}

	entry := core.Metadata{"text": text}
	if startAt != "" {
		entry["start_at"] = startAt
	}
	if endAt != "" {
		entry["end_at"] = endAt
	}
	if image != nil {
		stored, err := env.putImage(ctx, call.Site, *image, "add announcement image")
		if err != nil {
			return nil, imageFailure(image.Filename, err)
		}
		entry["image"] = stored
	}

	doc.Data.Items = append(doc.Data.Items, entry)
	msg := core.FormatChangeReason(core.CommitTypeFeat, "", "add announcement", "")
	if err := doc.Save(ctx, msg); err != nil {
		return nil, fmt.Errorf("write announcements: %w", err)
	}
	return entry, nil
}
