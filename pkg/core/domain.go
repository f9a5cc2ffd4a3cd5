// Package core holds the minbar domain: the content store port, the plan/merge/dispatch
// pipeline and the error taxonomy shared by every adapter.
package core

import "time"

// Metadata represents a free-form JSON object.
type Metadata map[string]any

// Clone returns a shallow copy of m. A nil map yields an empty, non-nil map.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Action names one of the operations a plan may request.
type Action string

const (
	ActionScaffoldSite     Action = "scaffold_site"
	ActionAddAnnouncement  Action = "add_announcement"
	ActionUpdateConfig     Action = "update_config"
	ActionSetJumuah        Action = "set_jumuah"
	ActionSetEid           Action = "set_eid"
	ActionUploadImage      Action = "upload_image"
	ActionEditHomepageCopy Action = "edit_homepage_copy"
)

// AllowedActions is the closed set of actions a planner may choose from.
var AllowedActions = []Action{
	ActionScaffoldSite,
	ActionAddAnnouncement,
	ActionUpdateConfig,
	ActionSetJumuah,
	ActionSetEid,
	ActionUploadImage,
	ActionEditHomepageCopy,
}

// Valid reports whether a is in AllowedActions.
func (a Action) Valid() bool {
	for _, allowed := range AllowedActions {
		if a == allowed {
			return true
		}
	}
	return false
}

// SiteRef identifies a site (one remote repository).
type SiteRef struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
	URL   string `json:"url,omitempty"`
}

// String returns "owner/name".
func (s SiteRef) String() string {
	if s.Owner == "" {
		return s.Name
	}
	return s.Owner + "/" + s.Name
}

// TemplateRef points at the repository new sites are generated from.
type TemplateRef struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

// Document is a JSON object stored at a fixed path within a site.
// Version is the store's content identifier captured at read time; an empty
// Version on write means the write is unconditional.
type Document struct {
	Path    string
	Data    Metadata
	Version string
}

// Asset is a binary file stored within a site.
type Asset struct {
	Path    string
	Content []byte
	Version string
}

// Commit is a simplified entry of a site's history.
type Commit struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

// Plan is the validated envelope produced from planner output.
type Plan struct {
	Action Action   `json:"action"`
	Args   Metadata `json:"args"`
}

// ToolError is the serializable form of a handler failure.
type ToolError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// ToolResult is the uniform envelope every dispatch produces.
// Partial is set when the handler made observable progress but some part of
// the work failed (e.g. some scaffold images were not uploaded).
type ToolResult struct {
	OK      bool       `json:"ok"`
	Tool    Action     `json:"tool"`
	Result  any        `json:"result,omitempty"`
	Error   *ToolError `json:"error,omitempty"`
	Partial bool       `json:"partial,omitempty"`
}

// SiteResult is implemented by handler results that created a site.
type SiteResult interface {
	CreatedSite() SiteRef
}

// EventType represents the type of change observed in a site.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a path within a site.
type Event struct {
	Type      EventType
	Site      SiteRef
	Path      string
	Timestamp time.Time
}

// String implements fmt.Stringer.
func (e Event) String() string {
	return string(e.Type) + " " + e.Site.String() + ":" + e.Path
}
