package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/minbar/pkg/core"
)

// Sentinel errors for registry operations.
var (
	ErrToolNotFound          = errors.New("tool not found")
	ErrToolAlreadyRegistered = errors.New("tool already registered")
	ErrInvalidTool           = errors.New("invalid tool definition")
	ErrMissingRequiredArg    = fmt.Errorf("%w: missing required argument", core.ErrInvalidArgument)
)

// Handler performs one action. A handler that made observable progress before
// failing returns both its partial result and the error.
type Handler func(ctx context.Context, call Call) (any, error)

// Tool binds an action to its handler.
type Tool struct {
	Name        core.Action
	Description string

	// Required lists argument keys that must be present and non-null.
	Required []string

	// NeedsSite makes the registry resolve repo_slug into Call.Site.
	NeedsSite bool

	Execute Handler
}

// Validate checks the tool definition.
func (t *Tool) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: nil tool", ErrInvalidTool)
	}
	if !t.Name.Valid() {
		return fmt.Errorf("%w: action %q is not allowed", ErrInvalidTool, t.Name)
	}
	if t.Execute == nil {
		return fmt.Errorf("%w: %s has no handler", ErrInvalidTool, t.Name)
	}
	return nil
}

// Env is everything handlers share: the store and the deployment settings.
type Env struct {
	Store core.ContentStore

	// Owner is the account new sites are created under and existing sites
	// are looked up in.
	Owner    string
	Template core.TemplateRef

	// AssetPatterns is the case-insensitive glob allowlist for image file
	// names. Empty means DefaultAssetPatterns.
	AssetPatterns []string

	Logger *slog.Logger
	Now    func() time.Time
}

// Call is one handler invocation.
type Call struct {
	Env  *Env
	Site core.SiteRef
	Args Args
}

func (e Env) withDefaults() Env {
	if e.Logger == nil {
		e.Logger = slog.Default()
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	if len(e.AssetPatterns) == 0 {
		e.AssetPatterns = DefaultAssetPatterns
	}
	return e
}
