package tools

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/minbar/pkg/core"
)

// Config seed values for new sites.
const (
	DefaultCalcMethod = 2
	DefaultSchool     = 0
	DefaultTheme      = "default"
)

// FailedImage records one image that could not be stored.
type FailedImage struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// ScaffoldResult reports how far scaffold_site got. Created is true once the
// site exists, even if later steps failed.
type ScaffoldResult struct {
	Created        bool          `json:"created"`
	Repo           string        `json:"repo"`
	RepoSlug       string        `json:"repo_slug"`
	URL            string        `json:"url,omitempty"`
	Seeded         []string      `json:"seeded"`
	UploadedImages []string      `json:"uploaded_images"`
	FailedImages   []FailedImage `json:"failed_images"`

	site core.SiteRef
}

// CreatedSite implements core.SiteResult.
func (r *ScaffoldResult) CreatedSite() core.SiteRef {
	return r.site
}

// ParseLocation reads "lat,lon". Anything unparsable yields 0, 0.
func ParseLocation(location string) (lat, lon float64) {
	if !strings.Contains(location, ",") {
		return 0, 0
	}
	parts := strings.Split(location, ",")
	lat, err := parseCoordinate(parts[0])
	if err != nil {
		return 0, 0
	}
	lon, err = parseCoordinate(parts[1])
	if err != nil {
		return 0, 0
	}
	return lat, lon
}

func parseCoordinate(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("coordinate %q is not finite", s)
	}
	return f, nil
}

// SeedDocuments returns the initial content of a new site.
func SeedDocuments(name, location string, now time.Time) []core.Document {
	lat, lon := ParseLocation(location)
	return []core.Document{
		{Path: ConfigPath, Data: core.Metadata{
			"name":        name,
			"address":     location,
			"lat":         lat,
			"lon":         lon,
			"calc_method": DefaultCalcMethod,
			"school":      DefaultSchool,
			"theme":       DefaultTheme,
			"show_eid":    false,
			"created_iso": now.UTC().Format(time.RFC3339),
		}},
		{Path: AnnouncementsPath, Data: core.Metadata{"items": []any{}}},
		{Path: JumuahPath, Data: core.Metadata{"entries": []any{}}},
		{Path: EidPath, Data: core.Metadata{"visible": false, "datetime": nil}},
	}
}

var seedSubjects = map[string]string{
	ConfigPath:        "initialize config.json",
	AnnouncementsPath: "initialize announcements",
	JumuahPath:        "initialize jumuah",
	EidPath:           "initialize eid",
}

// scaffoldSite creates a site from the template, seeds its documents and
// uploads each image independently. Nothing is rolled back: once the site
// exists the result is returned, with an error if any later step failed.
func scaffoldSite(ctx context.Context, call Call) (any, error) {
	env := call.Env
	name, err := call.Args.RequiredString("name")
	if err != nil {
		return nil, err
	}
	location, err := call.Args.String("location")
	if err != nil {
		return nil, err
	}
	images, err := call.Args.List("images")
	if err != nil {
		return nil, err
	}

	slug := core.Slugify(name)
	if strings.Trim(slug, "-") == "" {
		return nil, fmt.Errorf("%w: name %q yields an empty slug", core.ErrInvalidArgument, name)
	}

	site, err := env.Store.CreateSiteFromTemplate(ctx, env.Template, slug, env.Owner)
	if err != nil {
		return nil, fmt.Errorf("create site %s: %w", slug, err)
	}
	env.Logger.Info("site created", "site", site.String(), "url", site.URL)

	res := &ScaffoldResult{
		Created:        true,
		Repo:           site.String(),
		RepoSlug:       site.Name,
		URL:            site.URL,
		Seeded:         []string{},
		UploadedImages: []string{},
		FailedImages:   []FailedImage{},
		site:           site,
	}

	for _, doc := range SeedDocuments(name, location, env.Now()) {
		msg := core.FormatChangeReason(core.CommitTypeChore, "", seedSubjects[doc.Path], "")
		if _, err := env.Store.WriteDocument(ctx, site, doc, msg); err != nil {
			return res, fmt.Errorf("seed %s: %w", doc.Path, err)
		}
		res.Seeded = append(res.Seeded, doc.Path)
	}

	for i, raw := range images {
		img, err := DecodeImage(raw)
		if err == nil {
			var stored string
			stored, err = env.putImage(ctx, site, img, "add image")
			if err == nil {
				res.UploadedImages = append(res.UploadedImages, stored)
				continue
			}
		}
		filename := img.Filename
		if filename == "" {
			filename = fmt.Sprintf("images[%d]", i)
		}
		env.Logger.Warn("image upload failed", "site", site.String(), "filename", filename, "error", err)
		res.FailedImages = append(res.FailedImages, FailedImage{Filename: filename, Error: err.Error()})
	}

	if n := len(res.FailedImages); n > 0 {
		return res, fmt.Errorf("%w: %d of %d images", core.ErrImageUploadFailed, n, len(images))
	}
	return res, nil
}
