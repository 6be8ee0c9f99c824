// Package platformtest provides an in-memory platform.Client for tests.
package platformtest

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	oerrors "github.com/dvmodel/dvctl/internal/errors"
	"github.com/dvmodel/dvctl/internal/platform"
)

// ObjectAssignment records a signature assigned to an object.
type ObjectAssignment struct {
	BusinessVaultReleaseID int64
	Object                 string
	SignatureID            int64
}

// AttributeAssignment records a signature assigned to an object attribute.
type AttributeAssignment struct {
	BusinessVaultReleaseID int64
	Object                 string
	Attribute              string
	SignatureID            int64
}

// Deployment records a generation deployed to a database link.
type Deployment struct {
	GenerationID int64
	LinkID       int64
}

// Fake is an in-memory platform.Client. Populate the exported fields, then
// inspect Calls and the recorded slices after exercising the code under test.
type Fake struct {
	mu sync.Mutex

	ProjectList    []platform.Project
	DataVaultList  []platform.DataVault
	ReleaseList    []platform.Release
	BVReleaseList  []platform.BusinessVaultRelease
	GenerationList []platform.Generation
	FlowList       []platform.Flow
	SourceList     []platform.Source
	LinkList       []platform.DatabaseLink
	TemplateList   []platform.Template

	ProjectParams map[int64][]platform.Parameter
	SourceParams  map[int64][]platform.Parameter

	// Archives maps generation IDs to zip archive bytes.
	Archives map[int64][]byte

	// SignatureObjectList and SignatureAttributeList are keyed by business-vault release ID.
	SignatureObjectList    map[int64][]platform.Signature
	SignatureAttributeList map[int64][]platform.Signature

	// Examples maps a template base object to the example returned for it.
	Examples map[string]platform.TemplateExample

	// EmptyFlows marks flows whose generation fails with an empty-flow error.
	EmptyFlows map[int64]bool

	// FlowErrors forces GenerateFlow to return the given error for a flow.
	FlowErrors map[int64]error

	// Recorded side effects.
	Calls                map[string]int
	DeletedFlows         []int64
	CreatedFlows         []platform.FlowSpec
	Deployments          []Deployment
	ObjectAssignments    []ObjectAssignment
	AttributeAssignments []AttributeAssignment
	SavedTemplates       []platform.Template

	// Now stamps created records. Defaults to time.Now.
	Now func() time.Time

	nextID int64
}

var _ platform.Client = (*Fake)(nil)

// NewFake returns an empty Fake with initialized maps.
func NewFake() *Fake {
	return &Fake{
		ProjectParams:          make(map[int64][]platform.Parameter),
		SourceParams:           make(map[int64][]platform.Parameter),
		Archives:               make(map[int64][]byte),
		SignatureObjectList:    make(map[int64][]platform.Signature),
		SignatureAttributeList: make(map[int64][]platform.Signature),
		Examples:               make(map[string]platform.TemplateExample),
		EmptyFlows:             make(map[int64]bool),
		FlowErrors:             make(map[int64]error),
		Calls:                  make(map[string]int),
		nextID:                 1000,
	}
}

func (f *Fake) record(method string) {
	if f.Calls == nil {
		f.Calls = make(map[string]int)
	}
	f.Calls[method]++
}

func (f *Fake) newID() int64 {
	if f.nextID == 0 {
		f.nextID = 1000
	}
	f.nextID++
	return f.nextID
}

func (f *Fake) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now().UTC()
}

func notFound(kind string, key any) error {
	return fmt.Errorf("%s %v: %w", kind, key, oerrors.ErrNotFound)
}

// Project implements platform.ProjectReader.
func (f *Fake) Project(_ context.Context, name string) (platform.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Project")

	for _, p := range f.ProjectList {
		if p.Name == name {
			return p, nil
		}
	}
	return platform.Project{}, notFound("project", name)
}

// DataVault implements platform.ProjectReader.
func (f *Fake) DataVault(_ context.Context, projectID int64, name string) (platform.DataVault, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DataVault")

	for _, dv := range f.DataVaultList {
		if dv.ProjectID == projectID && dv.Name == name {
			return dv, nil
		}
	}
	return platform.DataVault{}, notFound("data vault", name)
}

// Releases implements platform.ReleaseReader.
func (f *Fake) Releases(_ context.Context, dataVaultID int64) ([]platform.Release, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Releases")

	return platform.Filter(f.ReleaseList, func(r platform.Release) bool {
		return r.DataVaultID == dataVaultID
	}), nil
}

// BusinessVaultReleases implements platform.ReleaseReader.
func (f *Fake) BusinessVaultReleases(_ context.Context, releaseID int64) ([]platform.BusinessVaultRelease, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BusinessVaultReleases")

	return platform.Filter(f.BVReleaseList, func(r platform.BusinessVaultRelease) bool {
		return r.ReleaseID == releaseID
	}), nil
}

// Generations implements platform.GenerationService.
func (f *Fake) Generations(_ context.Context) ([]platform.Generation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Generations")

	out := make([]platform.Generation, len(f.GenerationList))
	copy(out, f.GenerationList)
	return out, nil
}

func (f *Fake) addGeneration(g platform.Generation) platform.Generation {
	g.ID = f.newID()
	g.Date = f.now()
	f.GenerationList = append(f.GenerationList, g)
	return g
}

// GenerateDDL implements platform.GenerationService.
func (f *Fake) GenerateDDL(_ context.Context, req platform.GenerateRequest) (platform.Generation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GenerateDDL")

	return f.addGeneration(platform.Generation{
		Kind:                   platform.KindDDL,
		Technology:             req.Technology,
		BusinessVaultReleaseID: req.BusinessVaultReleaseID,
		FileName:               fmt.Sprintf("ddl_%d.zip", req.BusinessVaultReleaseID),
		CanAutoDeploy:          true,
	}), nil
}

// GenerateETL implements platform.GenerationService.
func (f *Fake) GenerateETL(_ context.Context, req platform.GenerateRequest) (platform.Generation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GenerateETL")

	return f.addGeneration(platform.Generation{
		Kind:                   platform.KindETL,
		Technology:             req.Technology,
		BusinessVaultReleaseID: req.BusinessVaultReleaseID,
		FileName:               fmt.Sprintf("etl_%d.zip", req.BusinessVaultReleaseID),
		CanAutoDeploy:          true,
	}), nil
}

// GenerateDelta implements platform.GenerationService.
func (f *Fake) GenerateDelta(_ context.Context, req platform.DeltaRequest) (platform.Generation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GenerateDelta")

	return f.addGeneration(platform.Generation{
		Kind:                   platform.KindDelta,
		Technology:             req.Technology,
		BusinessVaultReleaseID: req.NewBusinessVaultReleaseID,
		BaselineReleaseID:      req.OldBusinessVaultReleaseID,
		FileName: fmt.Sprintf("delta_%d_%d.zip",
			req.OldBusinessVaultReleaseID, req.NewBusinessVaultReleaseID),
		CanAutoDeploy: true,
	}), nil
}

// Flows implements platform.FlowService.
func (f *Fake) Flows(_ context.Context, dataVaultID int64) ([]platform.Flow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Flows")

	return platform.Filter(f.FlowList, func(fl platform.Flow) bool {
		return fl.DataVaultID == dataVaultID
	}), nil
}

// CreateFlow implements platform.FlowService.
func (f *Fake) CreateFlow(_ context.Context, dataVaultID int64, spec platform.FlowSpec) (platform.Flow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateFlow")

	fl := platform.Flow{
		ID:          f.newID(),
		Name:        spec.Name,
		Description: spec.Description,
		DataVaultID: dataVaultID,
		FlowType:    spec.FlowType,
		LoadType:    spec.LoadType,
	}
	f.FlowList = append(f.FlowList, fl)
	f.CreatedFlows = append(f.CreatedFlows, spec)
	return fl, nil
}

// DeleteFlow implements platform.FlowService.
func (f *Fake) DeleteFlow(_ context.Context, flowID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteFlow")

	for i, fl := range f.FlowList {
		if fl.ID == flowID {
			f.FlowList = append(f.FlowList[:i], f.FlowList[i+1:]...)
			f.DeletedFlows = append(f.DeletedFlows, flowID)
			return nil
		}
	}
	return notFound("flow", flowID)
}

// GenerateFlow implements platform.FlowService.
func (f *Fake) GenerateFlow(_ context.Context, flowID, etlGenerationID int64) (platform.Generation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GenerateFlow")

	if err, ok := f.FlowErrors[flowID]; ok {
		return platform.Generation{}, err
	}
	if f.EmptyFlows[flowID] {
		return platform.Generation{}, &platform.GenerationError{
			FlowID:  flowID,
			Empty:   true,
			Message: "flow contains no tasks",
		}
	}

	return f.addGeneration(platform.Generation{
		Kind:               platform.KindFMC,
		FlowID:             flowID,
		SourceGenerationID: etlGenerationID,
		FileName:           fmt.Sprintf("fmc_%d_%d.zip", flowID, etlGenerationID),
	}), nil
}

// Sources implements platform.ParameterService.
func (f *Fake) Sources(_ context.Context, projectID int64) ([]platform.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Sources")

	return platform.Filter(f.SourceList, func(s platform.Source) bool {
		return s.ProjectID == projectID
	}), nil
}

// ProjectParameters implements platform.ParameterService.
func (f *Fake) ProjectParameters(_ context.Context, projectID int64) ([]platform.Parameter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ProjectParameters")

	return append([]platform.Parameter(nil), f.ProjectParams[projectID]...), nil
}

// SourceParameters implements platform.ParameterService.
func (f *Fake) SourceParameters(_ context.Context, sourceID int64) ([]platform.Parameter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SourceParameters")

	return append([]platform.Parameter(nil), f.SourceParams[sourceID]...), nil
}

// SaveSourceParameters implements platform.ParameterService.
func (f *Fake) SaveSourceParameters(_ context.Context, sourceID int64, params []platform.Parameter) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SaveSourceParameters")

	f.SourceParams[sourceID] = append([]platform.Parameter(nil), params...)
	return nil
}

// DownloadFiles implements platform.ArtifactService.
func (f *Fake) DownloadFiles(_ context.Context, generationID int64, w io.Writer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DownloadFiles")

	data, ok := f.Archives[generationID]
	if !ok {
		return notFound("generation archive", generationID)
	}
	_, err := w.Write(data)
	return err
}

// DatabaseLink implements platform.ArtifactService.
func (f *Fake) DatabaseLink(_ context.Context, name string) (platform.DatabaseLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DatabaseLink")

	for _, l := range f.LinkList {
		if l.Name == name {
			return l, nil
		}
	}
	return platform.DatabaseLink{}, notFound("database link", name)
}

// Deploy implements platform.ArtifactService.
func (f *Fake) Deploy(_ context.Context, generationID, linkID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Deploy")

	f.Deployments = append(f.Deployments, Deployment{GenerationID: generationID, LinkID: linkID})
	return nil
}

// SignatureObjects implements platform.SignatureService.
func (f *Fake) SignatureObjects(_ context.Context, bvReleaseID int64) ([]platform.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SignatureObjects")

	return append([]platform.Signature(nil), f.SignatureObjectList[bvReleaseID]...), nil
}

// CreateSignatureObject implements platform.SignatureService.
func (f *Fake) CreateSignatureObject(_ context.Context, bvReleaseID int64, name string) (platform.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateSignatureObject")

	sig := platform.Signature{ID: f.newID(), Name: name}
	f.SignatureObjectList[bvReleaseID] = append(f.SignatureObjectList[bvReleaseID], sig)
	return sig, nil
}

// AssignObjectSignature implements platform.SignatureService.
func (f *Fake) AssignObjectSignature(_ context.Context, bvReleaseID int64, object string, signatureID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AssignObjectSignature")

	f.ObjectAssignments = append(f.ObjectAssignments, ObjectAssignment{
		BusinessVaultReleaseID: bvReleaseID,
		Object:                 object,
		SignatureID:            signatureID,
	})
	return nil
}

// SignatureAttributes implements platform.SignatureService.
func (f *Fake) SignatureAttributes(_ context.Context, bvReleaseID int64) ([]platform.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SignatureAttributes")

	return append([]platform.Signature(nil), f.SignatureAttributeList[bvReleaseID]...), nil
}

// CreateSignatureAttribute implements platform.SignatureService.
func (f *Fake) CreateSignatureAttribute(_ context.Context, bvReleaseID int64, name string) (platform.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateSignatureAttribute")

	sig := platform.Signature{ID: f.newID(), Name: name}
	f.SignatureAttributeList[bvReleaseID] = append(f.SignatureAttributeList[bvReleaseID], sig)
	return sig, nil
}

// AssignAttributeSignature implements platform.SignatureService.
func (f *Fake) AssignAttributeSignature(_ context.Context, bvReleaseID int64, object, attribute string, signatureID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AssignAttributeSignature")

	f.AttributeAssignments = append(f.AttributeAssignments, AttributeAssignment{
		BusinessVaultReleaseID: bvReleaseID,
		Object:                 object,
		Attribute:              attribute,
		SignatureID:            signatureID,
	})
	return nil
}

// Template implements platform.TemplateService.
func (f *Fake) Template(_ context.Context, bvReleaseID int64, name string) (platform.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Template")

	for _, t := range f.TemplateList {
		if t.BusinessVaultReleaseID == bvReleaseID && t.Name == name {
			return t, nil
		}
	}
	return platform.Template{}, notFound("template", name)
}

// SaveTemplate implements platform.TemplateService.
func (f *Fake) SaveTemplate(_ context.Context, tmpl platform.Template) (platform.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SaveTemplate")

	for i, t := range f.TemplateList {
		if t.ID == tmpl.ID {
			f.TemplateList[i] = tmpl
			f.SavedTemplates = append(f.SavedTemplates, tmpl)
			return tmpl, nil
		}
	}
	return platform.Template{}, notFound("template", tmpl.ID)
}

// GenerateTemplateExample implements platform.TemplateService.
func (f *Fake) GenerateTemplateExample(_ context.Context, req platform.TemplateRequest) (platform.TemplateExample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GenerateTemplateExample")

	ex, ok := f.Examples[req.BaseObject]
	if !ok {
		return platform.TemplateExample{}, notFound("template example for", req.BaseObject)
	}
	return ex, nil
}
