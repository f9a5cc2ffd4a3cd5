package tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/minbar/pkg/core"
	"github.com/aretw0/minbar/pkg/typed"
)

// setJumuah upserts the entry for friday_date and keeps entries sorted by
// date string.
func setJumuah(ctx context.Context, call Call) (any, error) {
	date, err := call.Args.RequiredString("friday_date")
	if err != nil {
		return nil, err
	}
	khutbah, err := call.Args.RequiredString("khutbah_time")
	if err != nil {
		return nil, err
	}
	prayer, err := call.Args.RequiredString("prayer_time")
	if err != nil {
		return nil, err
	}

	repo := typed.NewRepository[JumuahSchedule](call.Env.Store)
	doc, err := repo.GetOrDefault(ctx, call.Site, JumuahPath, JumuahSchedule{Entries: []core.Metadata{}})
	if err != nil {
		return nil, fmt.Errorf("read jumuah: %w", err)
	}

	doc.Data.Entries = UpsertJumuah(doc.Data.Entries, date, khutbah, prayer)

	msg := core.FormatChangeReason(core.CommitTypeFeat, "", "set jumuah "+date, "")
	if err := doc.Save(ctx, msg); err != nil {
		return nil, fmt.Errorf("write jumuah: %w", err)
	}
	return core.Metadata{"date": date}, nil
}

// UpsertJumuah overwrites the times of the entry dated date, or appends a new
// entry, then sorts ascending by date string. Other keys on entries are kept.
func UpsertJumuah(entries []core.Metadata, date, khutbah, prayer string) []core.Metadata {
	replaced := false
	for _, e := range entries {
		if entryDate(e) == date {
			e["khutbah_time"] = khutbah
			e["prayer_time"] = prayer
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, core.Metadata{
			"date":         date,
			"khutbah_time": khutbah,
			"prayer_time":  prayer,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entryDate(entries[i]) < entryDate(entries[j])
	})
	return entries
}

func entryDate(e core.Metadata) string {
	switch d := e["date"].(type) {
	case string:
		return d
	case nil:
		return ""
	default:
		return fmt.Sprint(d)
	}
}
