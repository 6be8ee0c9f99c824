// Package resolve decides which releases a run operates on, whether code is
// generated as a FULL or DELTA set, and which existing generations can be
// reused instead of asking the platform for new ones.
package resolve

import (
	"context"
	"fmt"
	"strconv"

	oerrors "github.com/dvmodel/dvctl/internal/errors"
	"github.com/dvmodel/dvctl/internal/output"
	"github.com/dvmodel/dvctl/internal/platform"
)

// LockRequirement constrains the lock state of a selected release.
type LockRequirement int

const (
	// AnyLock accepts locked and unlocked releases.
	AnyLock LockRequirement = iota
	// RequireLocked accepts only locked releases.
	RequireLocked
	// RequireUnlocked accepts only editable releases.
	RequireUnlocked
)

// String returns the requirement name used in log output.
func (l LockRequirement) String() string {
	switch l {
	case RequireLocked:
		return "locked"
	case RequireUnlocked:
		return "unlocked"
	default:
		return "any"
	}
}

func (l LockRequirement) accepts(locked bool) bool {
	switch l {
	case RequireLocked:
		return locked
	case RequireUnlocked:
		return !locked
	default:
		return true
	}
}

// Policy sets the lock requirement for each release level.
type Policy struct {
	DataVault     LockRequirement
	BusinessVault LockRequirement
}

var (
	// GenerationPolicy selects locked releases at both levels.
	GenerationPolicy = Policy{DataVault: RequireLocked, BusinessVault: RequireLocked}

	// EditPolicy selects an editable business-vault release under a locked data-vault release.
	EditPolicy = Policy{DataVault: RequireLocked, BusinessVault: RequireUnlocked}

	// LatestPolicy selects the latest releases regardless of lock state.
	LatestPolicy = Policy{DataVault: AnyLock, BusinessVault: AnyLock}
)

// Releases is the resolved release pair.
type Releases struct {
	Release       platform.Release              `json:"release" yaml:"release"`
	BusinessVault platform.BusinessVaultRelease `json:"businessVaultRelease" yaml:"businessVaultRelease"`
}

// Resolver selects releases. It keeps the release listings it fetched so a
// run never lists the same parent twice.
type Resolver struct {
	releases platform.ReleaseReader

	dvReleases map[int64][]platform.Release
	bvReleases map[int64][]platform.BusinessVaultRelease
}

// NewResolver creates a Resolver backed by the given release reader.
func NewResolver(releases platform.ReleaseReader) *Resolver {
	return &Resolver{
		releases:   releases,
		dvReleases: make(map[int64][]platform.Release),
		bvReleases: make(map[int64][]platform.BusinessVaultRelease),
	}
}

// DataVaultReleases returns every release of the data vault.
func (r *Resolver) DataVaultReleases(ctx context.Context, dataVaultID int64) ([]platform.Release, error) {
	if rels, ok := r.dvReleases[dataVaultID]; ok {
		return rels, nil
	}
	rels, err := r.releases.Releases(ctx, dataVaultID)
	if err != nil {
		return nil, fmt.Errorf("listing releases of data vault %d: %w", dataVaultID, err)
	}
	r.dvReleases[dataVaultID] = rels
	return rels, nil
}

// BusinessVaultReleases returns every business-vault release of a data-vault release.
func (r *Resolver) BusinessVaultReleases(ctx context.Context, releaseID int64) ([]platform.BusinessVaultRelease, error) {
	if rels, ok := r.bvReleases[releaseID]; ok {
		return rels, nil
	}
	rels, err := r.releases.BusinessVaultReleases(ctx, releaseID)
	if err != nil {
		return nil, fmt.Errorf("listing business vault releases of release %d: %w", releaseID, err)
	}
	r.bvReleases[releaseID] = rels
	return rels, nil
}

// ResolveReleases picks the data-vault release and, below it, the
// business-vault release. A non-empty name selects that release and checks its
// lock state; an empty name selects the latest release meeting the policy.
func (r *Resolver) ResolveReleases(ctx context.Context, dv platform.DataVault, dvReleaseName, bvReleaseName string, policy Policy) (Releases, error) {
	dvReleases, err := r.DataVaultReleases(ctx, dv.ID)
	if err != nil {
		return Releases{}, err
	}

	rel, err := pick(dvReleases, dvReleaseName, policy.DataVault, level[platform.Release]{
		kind:   "data vault release",
		parent: fmt.Sprintf("data vault %s", dv.Name),
		name:   func(r platform.Release) string { return r.Name },
		locked: func(r platform.Release) bool { return r.Locked },
	})
	if err != nil {
		return Releases{}, err
	}
	output.Debug("selected data vault release", "release", rel.Name, "id", rel.ID, "named", dvReleaseName != "", "lock", policy.DataVault)

	bvReleases, err := r.BusinessVaultReleases(ctx, rel.ID)
	if err != nil {
		return Releases{}, err
	}

	bv, err := pick(bvReleases, bvReleaseName, policy.BusinessVault, level[platform.BusinessVaultRelease]{
		kind:   "business vault release",
		parent: fmt.Sprintf("data vault release %s", rel.Name),
		name:   func(b platform.BusinessVaultRelease) string { return b.Name },
		locked: func(b platform.BusinessVaultRelease) bool { return b.Locked },
	})
	if err != nil {
		return Releases{}, err
	}
	output.Debug("selected business vault release", "release", bv.Name, "id", bv.ID, "named", bvReleaseName != "", "lock", policy.BusinessVault)

	return Releases{Release: rel, BusinessVault: bv}, nil
}

// level describes one release level to pick.
type level[T platform.Dated] struct {
	kind   string
	parent string
	name   func(T) string
	locked func(T) bool
}

func pick[T platform.Dated](items []T, name string, req LockRequirement, lv level[T]) (T, error) {
	var zero T
	ctx := map[string]string{"Scope": lv.parent}

	if name != "" {
		item, ok := findByName(items, name, lv.name)
		if !ok {
			return zero, oerrors.NewNotFoundError(
				fmt.Sprintf("%s %q does not exist in %s", lv.kind, name, lv.parent), ctx,
				"Omit the release name to use the latest eligible release.")
		}
		if req.accepts(lv.locked(item)) {
			return item, nil
		}
		if req == RequireLocked {
			return zero, oerrors.NewReleaseStateError(oerrors.ErrNotLocked,
				fmt.Sprintf("%s %q is not locked", lv.kind, name), ctx,
				"Lock the release on the platform before generating code for it.")
		}
		return zero, oerrors.NewReleaseStateError(oerrors.ErrReleaseLocked,
			fmt.Sprintf("%s %q is locked and cannot be modified", lv.kind, name), ctx,
			"Create a new release or pick an unlocked one.")
	}

	eligible := platform.Filter(items, func(item T) bool { return req.accepts(lv.locked(item)) })
	if latest, ok := platform.Latest(eligible); ok {
		return latest, nil
	}

	switch req {
	case RequireLocked:
		return zero, oerrors.NewReleaseStateError(oerrors.ErrNoLockedRelease,
			fmt.Sprintf("no locked %s found in %s", lv.kind, lv.parent), ctx,
			"Lock a release on the platform or name one explicitly.")
	case RequireUnlocked:
		return zero, oerrors.NewReleaseStateError(oerrors.ErrNoUnlockedRelease,
			fmt.Sprintf("no unlocked %s found in %s", lv.kind, lv.parent), ctx,
			"Create a new business vault release on the platform.")
	default:
		return zero, oerrors.NewNotFoundError(
			fmt.Sprintf("no %s found in %s", lv.kind, lv.parent), ctx, "")
	}
}

// findByName matches the release name first and falls back to the numeric ID.
func findByName[T platform.Dated](items []T, name string, nameOf func(T) string) (T, bool) {
	for _, item := range items {
		if nameOf(item) == name {
			return item, true
		}
	}
	if id, err := strconv.ParseInt(name, 10, 64); err == nil {
		for _, item := range items {
			if item.Identity() == id {
				return item, true
			}
		}
	}
	var zero T
	return zero, false
}
