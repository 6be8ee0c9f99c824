// Package signatures imports signature assignments of a business vault
// release from CSV files.
package signatures

import (
	"context"
	"fmt"
	"path/filepath"

	oerrors "github.com/dvmodel/dvctl/internal/errors"
	"github.com/dvmodel/dvctl/internal/output"
	"github.com/dvmodel/dvctl/internal/platform"
	"github.com/dvmodel/dvctl/internal/resolve"
)

// Client is the platform surface signature import needs.
type Client interface {
	platform.ProjectReader
	platform.ReleaseReader
	platform.SignatureService
}

// ImportOptions selects the business vault release and the CSV directory.
type ImportOptions struct {
	Project   string
	DataVault string
	Dir       string

	// DVRelease and BVRelease name the releases. Empty selects the latest
	// locked data vault release and its latest unlocked business vault release.
	DVRelease string
	BVRelease string
}

// ImportResult counts what Import did.
type ImportResult struct {
	Releases          resolve.Releases `json:"releases" yaml:"releases"`
	ObjectRows        int              `json:"objectRows" yaml:"objectRows"`
	AttributeRows     int              `json:"attributeRows" yaml:"attributeRows"`
	CreatedObjects    []string         `json:"createdObjects" yaml:"createdObjects"`
	CreatedAttributes []string         `json:"createdAttributes" yaml:"createdAttributes"`
}

// Import assigns the signatures listed in the directory's CSV files. All rows
// are read and validated before anything is written. Signatures that do not
// exist yet are created once.
func Import(ctx context.Context, c Client, opts ImportOptions) (*ImportResult, error) {
	objRows, haveObj, err := readFile(filepath.Join(opts.Dir, ObjectFile), ReadObjectRows)
	if err != nil {
		return nil, err
	}
	attrRows, haveAttr, err := readFile(filepath.Join(opts.Dir, AttributeFile), ReadAttributeRows)
	if err != nil {
		return nil, err
	}
	if !haveObj && !haveAttr {
		return nil, oerrors.NewNotFoundError(
			fmt.Sprintf("no signature files in %s", opts.Dir),
			map[string]string{"Expected": ObjectFile + ", " + AttributeFile}, "")
	}
	if !haveObj {
		output.Warn("object signature file not found, skipping", "file", ObjectFile)
	}
	if !haveAttr {
		output.Warn("attribute signature file not found, skipping", "file", AttributeFile)
	}

	project, err := c.Project(ctx, opts.Project)
	if err != nil {
		return nil, fmt.Errorf("looking up project %q: %w", opts.Project, err)
	}
	dv, err := c.DataVault(ctx, project.ID, opts.DataVault)
	if err != nil {
		return nil, fmt.Errorf("looking up data vault %q: %w", opts.DataVault, err)
	}

	releases, err := resolve.NewResolver(c).ResolveReleases(ctx, dv, opts.DVRelease, opts.BVRelease, resolve.EditPolicy)
	if err != nil {
		return nil, err
	}
	bvID := releases.BusinessVault.ID
	output.Info("importing signatures", "release", releases.Release.Name, "bv", releases.BusinessVault.Name)

	result := &ImportResult{Releases: releases, ObjectRows: len(objRows), AttributeRows: len(attrRows)}

	if len(objRows) > 0 {
		sigs, err := newRegistry(ctx, "signature object", bvID, c.SignatureObjects, c.CreateSignatureObject)
		if err != nil {
			return result, err
		}
		for _, row := range objRows {
			id, err := sigs.get(ctx, row.Signature)
			if err != nil {
				return result, err
			}
			if err := c.AssignObjectSignature(ctx, bvID, row.Object, id); err != nil {
				return result, fmt.Errorf("%s:%d: assigning %s to %s: %w", ObjectFile, row.Line, row.Signature, row.Object, err)
			}
		}
		result.CreatedObjects = sigs.created
	}

	if len(attrRows) > 0 {
		sigs, err := newRegistry(ctx, "signature attribute", bvID, c.SignatureAttributes, c.CreateSignatureAttribute)
		if err != nil {
			return result, err
		}
		for _, row := range attrRows {
			id, err := sigs.get(ctx, row.Signature)
			if err != nil {
				return result, err
			}
			if err := c.AssignAttributeSignature(ctx, bvID, row.Object, row.Attribute, id); err != nil {
				return result, fmt.Errorf("%s:%d: assigning %s to %s.%s: %w",
					AttributeFile, row.Line, row.Signature, row.Object, row.Attribute, err)
			}
		}
		result.CreatedAttributes = sigs.created
	}

	return result, nil
}

// registry resolves signature names to IDs, creating missing signatures.
type registry struct {
	kind    string
	bvID    int64
	ids     map[string]int64
	create  func(ctx context.Context, bvReleaseID int64, name string) (platform.Signature, error)
	created []string
}

func newRegistry(
	ctx context.Context,
	kind string,
	bvID int64,
	list func(ctx context.Context, bvReleaseID int64) ([]platform.Signature, error),
	create func(ctx context.Context, bvReleaseID int64, name string) (platform.Signature, error),
) (*registry, error) {
	existing, err := list(ctx, bvID)
	if err != nil {
		return nil, fmt.Errorf("listing %ss: %w", kind, err)
	}
	r := &registry{kind: kind, bvID: bvID, ids: make(map[string]int64, len(existing)), create: create}
	for _, s := range existing {
		r.ids[s.Name] = s.ID
	}
	return r, nil
}

func (r *registry) get(ctx context.Context, name string) (int64, error) {
	if id, ok := r.ids[name]; ok {
		return id, nil
	}
	sig, err := r.create(ctx, r.bvID, name)
	if err != nil {
		return 0, fmt.Errorf("creating %s %s: %w", r.kind, name, err)
	}
	output.Debug("created "+r.kind, "name", name, "id", sig.ID)
	r.ids[name] = sig.ID
	r.created = append(r.created, name)
	return sig.ID, nil
}
