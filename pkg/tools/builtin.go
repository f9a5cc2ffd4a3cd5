package tools

import "github.com/aretw0/minbar/pkg/core"

// Builtins returns a fresh set of the built-in tools, one per allowed action.
func Builtins() []*Tool {
	return []*Tool{
		{
			Name:        core.ActionScaffoldSite,
			Description: "Create a site from the template, seed its content and upload images",
			Required:    []string{"name"},
			Execute:     scaffoldSite,
		},
		{
			Name:        core.ActionAddAnnouncement,
			Description: "Append an announcement, optionally with an image",
			Required:    []string{"text"},
			NeedsSite:   true,
			Execute:     addAnnouncement,
		},
		{
			Name:        core.ActionUpdateConfig,
			Description: "Shallow-merge changes into the site config",
			NeedsSite:   true,
			Execute:     updateConfig,
		},
		{
			Name:        core.ActionSetJumuah,
			Description: "Set the khutbah and prayer times for a Friday",
			Required:    []string{"friday_date", "khutbah_time", "prayer_time"},
			NeedsSite:   true,
			Execute:     setJumuah,
		},
		{
			Name:        core.ActionSetEid,
			Description: "Show or hide the Eid banner and set its time",
			NeedsSite:   true,
			Execute:     setEid,
		},
		{
			Name:        core.ActionUploadImage,
			Description: "Store an image under docs/assets/images",
			Required:    []string{"file"},
			NeedsSite:   true,
			Execute:     uploadImage,
		},
		{
			Name:        core.ActionEditHomepageCopy,
			Description: "Replace the marked copy block of the homepage",
			Required:    []string{"instructions"},
			NeedsSite:   true,
			Execute:     editHomepageCopy,
		},
	}
}
