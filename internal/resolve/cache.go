package resolve

import (
	"context"
	"fmt"

	"github.com/dvmodel/dvctl/internal/output"
	"github.com/dvmodel/dvctl/internal/platform"
)

// GenerationLister lists the platform's generations.
type GenerationLister interface {
	Generations(ctx context.Context) ([]platform.Generation, error)
}

// GenerationKey identifies the generation a run needs. Fields that do not
// apply to Kind are left zero.
type GenerationKey struct {
	Kind                   platform.GenerationKind
	BusinessVaultReleaseID int64
	Technology             platform.Technology

	// BaselineReleaseID is the old business-vault release of a DELTA.
	BaselineReleaseID int64

	// FlowID and SourceGenerationID identify an FMC generation.
	FlowID             int64
	SourceGenerationID int64
}

// String renders the key for log output.
func (k GenerationKey) String() string {
	switch k.Kind {
	case platform.KindFMC:
		return fmt.Sprintf("%s flow=%d source=%d", k.Kind, k.FlowID, k.SourceGenerationID)
	case platform.KindDelta:
		return fmt.Sprintf("%s bv=%d baseline=%d tech=%s", k.Kind, k.BusinessVaultReleaseID, k.BaselineReleaseID, k.Technology)
	default:
		return fmt.Sprintf("%s bv=%d tech=%s", k.Kind, k.BusinessVaultReleaseID, k.Technology)
	}
}

// Matches reports whether g has the identity described by the key.
// A zero technology or baseline on the generation side is treated as
// unreported and does not rule the generation out.
func (k GenerationKey) Matches(g platform.Generation) bool {
	if g.Kind != k.Kind {
		return false
	}
	if k.Kind == platform.KindFMC {
		return g.FlowID == k.FlowID && g.SourceGenerationID == k.SourceGenerationID
	}
	if g.BusinessVaultReleaseID != k.BusinessVaultReleaseID {
		return false
	}
	if g.Technology != "" && k.Technology != "" && g.Technology != k.Technology {
		return false
	}
	if k.Kind == platform.KindDelta && g.BaselineReleaseID != 0 && g.BaselineReleaseID != k.BaselineReleaseID {
		return false
	}
	return true
}

// CreateFunc requests a new generation from the platform.
type CreateFunc func(ctx context.Context) (platform.Generation, error)

// GenerationCache finds reusable generations. The platform listing is fetched
// lazily, once per cache, and generations created through the cache are added
// to it.
type GenerationCache struct {
	lister GenerationLister
	loaded bool
	items  []platform.Generation
}

// NewGenerationCache creates an empty cache.
func NewGenerationCache(lister GenerationLister) *GenerationCache {
	return &GenerationCache{lister: lister}
}

func (c *GenerationCache) load(ctx context.Context) error {
	if c.loaded {
		return nil
	}
	items, err := c.lister.Generations(ctx)
	if err != nil {
		return fmt.Errorf("listing generations: %w", err)
	}
	seen := make(map[int64]bool, len(items))
	for _, g := range items {
		seen[g.ID] = true
	}
	for _, g := range c.items {
		if !seen[g.ID] {
			items = append(items, g)
		}
	}
	c.items = items
	c.loaded = true
	output.Debug("loaded generations", "count", len(items))
	return nil
}

// Find returns the latest cached generation matching key.
func (c *GenerationCache) Find(ctx context.Context, key GenerationKey) (platform.Generation, bool, error) {
	if err := c.load(ctx); err != nil {
		return platform.Generation{}, false, err
	}
	matches := platform.Filter(c.items, key.Matches)
	g, ok := platform.Latest(matches)
	return g, ok, nil
}

// FindOrCreate returns the latest generation matching key, or calls create
// when none exists or force is set. The boolean reports whether the returned
// generation was reused.
func (c *GenerationCache) FindOrCreate(ctx context.Context, key GenerationKey, force bool, create CreateFunc) (platform.Generation, bool, error) {
	if !force {
		g, ok, err := c.Find(ctx, key)
		if err != nil {
			return platform.Generation{}, false, err
		}
		if ok {
			output.Debug("reusing generation", "key", key, "generation", g)
			return g, true, nil
		}
	}

	g, err := create(ctx)
	if err != nil {
		return platform.Generation{}, false, err
	}
	c.Add(g)
	output.Debug("created generation", "key", key, "generation", g)
	return g, false, nil
}

// Add records a generation created outside FindOrCreate.
func (c *GenerationCache) Add(g platform.Generation) {
	c.items = append(c.items, g)
}
