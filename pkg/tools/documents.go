package tools

import "github.com/aretw0/minbar/pkg/core"

// Fixed document and asset paths within a site.
const (
	ConfigPath        = "docs/content/config.json"
	AnnouncementsPath = "docs/content/announcements.json"
	JumuahPath        = "docs/content/jumuah.json"
	EidPath           = "docs/content/eid.json"
	HomepagePath      = "docs/index.html"
)

// Announcements is the shape of announcements.json. Items are kept as raw
// objects so keys written by other tools survive.
type Announcements struct {
	Items []core.Metadata `json:"items"`
}

// JumuahSchedule is the shape of jumuah.json.
type JumuahSchedule struct {
	Entries []core.Metadata `json:"entries"`
}

// EidState is the shape of eid.json.
type EidState struct {
	Visible  bool    `json:"visible"`
	Datetime *string `json:"datetime"`
}
