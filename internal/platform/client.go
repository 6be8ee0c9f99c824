package platform

import (
	"context"
	"fmt"
	"io"

	oerrors "github.com/dvmodel/dvctl/internal/errors"
)

// ProjectReader looks up projects and data vaults by name.
type ProjectReader interface {
	Project(ctx context.Context, name string) (Project, error)
	DataVault(ctx context.Context, projectID int64, name string) (DataVault, error)
}

// ReleaseReader lists releases. Both methods return every release of the
// parent, in no particular order.
type ReleaseReader interface {
	Releases(ctx context.Context, dataVaultID int64) ([]Release, error)
	BusinessVaultReleases(ctx context.Context, releaseID int64) ([]BusinessVaultRelease, error)
}

// GenerateRequest asks for a FULL-strategy generation (DDL or ETL).
type GenerateRequest struct {
	BusinessVaultReleaseID int64      `json:"bvReleaseId"`
	Technology             Technology `json:"etlGenerationType"`
	LoadType               LoadType   `json:"loadType"`
}

// DeltaRequest asks for a DELTA generation between two business-vault releases.
type DeltaRequest struct {
	OldBusinessVaultReleaseID int64      `json:"oldBvReleaseId"`
	NewBusinessVaultReleaseID int64      `json:"newBvReleaseId"`
	Technology                Technology `json:"etlGenerationType"`
}

// GenerationService lists and triggers code generations.
type GenerationService interface {
	Generations(ctx context.Context) ([]Generation, error)
	GenerateDDL(ctx context.Context, req GenerateRequest) (Generation, error)
	GenerateETL(ctx context.Context, req GenerateRequest) (Generation, error)
	GenerateDelta(ctx context.Context, req DeltaRequest) (Generation, error)
}

// FlowService manages scheduler flows.
type FlowService interface {
	Flows(ctx context.Context, dataVaultID int64) ([]Flow, error)
	CreateFlow(ctx context.Context, dataVaultID int64, spec FlowSpec) (Flow, error)
	DeleteFlow(ctx context.Context, flowID int64) error

	// GenerateFlow builds FMC code for a flow from one of its ETL-stage
	// generations. Failures reported by the platform wrap ErrRemoteGeneration.
	GenerateFlow(ctx context.Context, flowID, etlGenerationID int64) (Generation, error)
}

// ParameterService reads and writes parameters.
type ParameterService interface {
	Sources(ctx context.Context, projectID int64) ([]Source, error)
	ProjectParameters(ctx context.Context, projectID int64) ([]Parameter, error)
	SourceParameters(ctx context.Context, sourceID int64) ([]Parameter, error)
	SaveSourceParameters(ctx context.Context, sourceID int64, params []Parameter) error
}

// ArtifactService downloads and deploys generated code.
type ArtifactService interface {
	// DownloadFiles writes the generation's zip archive to w.
	DownloadFiles(ctx context.Context, generationID int64, w io.Writer) error
	DatabaseLink(ctx context.Context, name string) (DatabaseLink, error)
	Deploy(ctx context.Context, generationID, linkID int64) error
}

// SignatureService manages signature objects and attributes of a business-vault release.
type SignatureService interface {
	SignatureObjects(ctx context.Context, bvReleaseID int64) ([]Signature, error)
	CreateSignatureObject(ctx context.Context, bvReleaseID int64, name string) (Signature, error)
	AssignObjectSignature(ctx context.Context, bvReleaseID int64, object string, signatureID int64) error

	SignatureAttributes(ctx context.Context, bvReleaseID int64) ([]Signature, error)
	CreateSignatureAttribute(ctx context.Context, bvReleaseID int64, name string) (Signature, error)
	AssignAttributeSignature(ctx context.Context, bvReleaseID int64, object, attribute string, signatureID int64) error
}

// TemplateRequest asks for example code of a template applied to one base object.
type TemplateRequest struct {
	BusinessVaultReleaseID int64      `json:"bvReleaseId"`
	TemplateID             int64      `json:"templateId"`
	BaseObject             string     `json:"baseObject"`
	Technology             Technology `json:"etlType"`
}

// TemplateService reads, updates and tests templates.
type TemplateService interface {
	Template(ctx context.Context, bvReleaseID int64, name string) (Template, error)
	SaveTemplate(ctx context.Context, tmpl Template) (Template, error)
	GenerateTemplateExample(ctx context.Context, req TemplateRequest) (TemplateExample, error)
}

// Client is the full platform API surface. Consumers should depend on the
// narrow interfaces above instead.
type Client interface {
	ProjectReader
	ReleaseReader
	GenerationService
	FlowService
	ParameterService
	ArtifactService
	SignatureService
	TemplateService
}

// GenerationError is returned when the platform fails to generate FMC code for a flow.
type GenerationError struct {
	FlowID int64

	// Empty is set when the flow contains nothing to generate.
	Empty bool

	Message string
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	if e.Empty {
		return fmt.Sprintf("flow %d is empty: %s", e.FlowID, e.Message)
	}
	return fmt.Sprintf("generating flow %d: %s", e.FlowID, e.Message)
}

// Unwrap lets errors.Is match ErrRemoteGeneration.
func (e *GenerationError) Unwrap() error {
	return oerrors.ErrRemoteGeneration
}
