package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	oerrors "github.com/dvmodel/dvctl/internal/errors"
	"github.com/dvmodel/dvctl/internal/platform"
)

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, out: out})
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, request{method: http.MethodPost, path: path, body: body, out: out})
}

func notFound(kind, name string) error {
	return oerrors.NewNotFoundError(fmt.Sprintf("%s %q does not exist", kind, name), nil, "")
}

// Project implements platform.ProjectReader.
func (c *Client) Project(ctx context.Context, name string) (platform.Project, error) {
	var projects []platform.Project
	if err := c.get(ctx, "/projects", &projects); err != nil {
		return platform.Project{}, err
	}
	for _, p := range projects {
		if p.Name == name {
			return p, nil
		}
	}
	return platform.Project{}, notFound("project", name)
}

// DataVault implements platform.ProjectReader.
func (c *Client) DataVault(ctx context.Context, projectID int64, name string) (platform.DataVault, error) {
	var dvs []platform.DataVault
	if err := c.get(ctx, fmt.Sprintf("/projects/%d/data-vaults", projectID), &dvs); err != nil {
		return platform.DataVault{}, err
	}
	for _, dv := range dvs {
		if dv.Name == name {
			return dv, nil
		}
	}
	return platform.DataVault{}, notFound("data vault", name)
}

// Releases implements platform.ReleaseReader.
func (c *Client) Releases(ctx context.Context, dataVaultID int64) ([]platform.Release, error) {
	var out []platform.Release
	err := c.get(ctx, fmt.Sprintf("/data-vaults/%d/releases", dataVaultID), &out)
	return out, err
}

// BusinessVaultReleases implements platform.ReleaseReader.
func (c *Client) BusinessVaultReleases(ctx context.Context, releaseID int64) ([]platform.BusinessVaultRelease, error) {
	var out []platform.BusinessVaultRelease
	err := c.get(ctx, fmt.Sprintf("/releases/%d/business-vault-releases", releaseID), &out)
	return out, err
}

// Generations implements platform.GenerationService.
func (c *Client) Generations(ctx context.Context) ([]platform.Generation, error) {
	var out []platform.Generation
	err := c.get(ctx, "/generations", &out)
	return out, err
}

// GenerateDDL implements platform.GenerationService.
func (c *Client) GenerateDDL(ctx context.Context, req platform.GenerateRequest) (platform.Generation, error) {
	var out platform.Generation
	err := c.post(ctx, "/generations/ddl", req, &out)
	return out, err
}

// GenerateETL implements platform.GenerationService.
func (c *Client) GenerateETL(ctx context.Context, req platform.GenerateRequest) (platform.Generation, error) {
	var out platform.Generation
	err := c.post(ctx, "/generations/etl", req, &out)
	return out, err
}

// GenerateDelta implements platform.GenerationService.
func (c *Client) GenerateDelta(ctx context.Context, req platform.DeltaRequest) (platform.Generation, error) {
	var out platform.Generation
	err := c.post(ctx, "/generations/delta", req, &out)
	return out, err
}

// Flows implements platform.FlowService.
func (c *Client) Flows(ctx context.Context, dataVaultID int64) ([]platform.Flow, error) {
	var out []platform.Flow
	err := c.get(ctx, fmt.Sprintf("/data-vaults/%d/flows", dataVaultID), &out)
	return out, err
}

// CreateFlow implements platform.FlowService.
func (c *Client) CreateFlow(ctx context.Context, dataVaultID int64, spec platform.FlowSpec) (platform.Flow, error) {
	var out platform.Flow
	err := c.post(ctx, fmt.Sprintf("/data-vaults/%d/flows", dataVaultID), spec, &out)
	return out, err
}

// DeleteFlow implements platform.FlowService.
func (c *Client) DeleteFlow(ctx context.Context, flowID int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: fmt.Sprintf("/flows/%d", flowID)})
}

// GenerateFlow implements platform.FlowService. Server errors are reported
// as *platform.GenerationError.
func (c *Client) GenerateFlow(ctx context.Context, flowID, etlGenerationID int64) (platform.Generation, error) {
	var out platform.Generation
	err := c.post(ctx, fmt.Sprintf("/flows/%d/generate", flowID),
		map[string]int64{"etlGenerationId": etlGenerationID}, &out)

	var serr *statusError
	if errors.As(err, &serr) && serr.Status >= http.StatusInternalServerError {
		return platform.Generation{}, &platform.GenerationError{
			FlowID:  flowID,
			Empty:   serr.Body.Code == "EMPTY_FLOW" || strings.Contains(strings.ToLower(serr.Body.Message), "empty"),
			Message: serr.Body.Message,
		}
	}
	return out, err
}

// Sources implements platform.ParameterService.
func (c *Client) Sources(ctx context.Context, projectID int64) ([]platform.Source, error) {
	var out []platform.Source
	err := c.get(ctx, fmt.Sprintf("/projects/%d/sources", projectID), &out)
	return out, err
}

// ProjectParameters implements platform.ParameterService.
func (c *Client) ProjectParameters(ctx context.Context, projectID int64) ([]platform.Parameter, error) {
	var out []platform.Parameter
	err := c.get(ctx, fmt.Sprintf("/projects/%d/parameters", projectID), &out)
	return out, err
}

// SourceParameters implements platform.ParameterService.
func (c *Client) SourceParameters(ctx context.Context, sourceID int64) ([]platform.Parameter, error) {
	var out []platform.Parameter
	err := c.get(ctx, fmt.Sprintf("/sources/%d/parameters", sourceID), &out)
	return out, err
}

// SaveSourceParameters implements platform.ParameterService.
func (c *Client) SaveSourceParameters(ctx context.Context, sourceID int64, params []platform.Parameter) error {
	return c.do(ctx, request{method: http.MethodPut, path: fmt.Sprintf("/sources/%d/parameters", sourceID), body: params})
}

// DownloadFiles implements platform.ArtifactService.
func (c *Client) DownloadFiles(ctx context.Context, generationID int64, w io.Writer) error {
	return c.do(ctx, request{method: http.MethodGet, path: fmt.Sprintf("/generations/%d/files", generationID), raw: w})
}

// DatabaseLink implements platform.ArtifactService.
func (c *Client) DatabaseLink(ctx context.Context, name string) (platform.DatabaseLink, error) {
	var links []platform.DatabaseLink
	if err := c.get(ctx, "/database-links", &links); err != nil {
		return platform.DatabaseLink{}, err
	}
	for _, l := range links {
		if l.Name == name {
			return l, nil
		}
	}
	return platform.DatabaseLink{}, notFound("database link", name)
}

// Deploy implements platform.ArtifactService.
func (c *Client) Deploy(ctx context.Context, generationID, linkID int64) error {
	return c.post(ctx, fmt.Sprintf("/generations/%d/deploy", generationID), map[string]int64{"linkId": linkID}, nil)
}

// SignatureObjects implements platform.SignatureService.
func (c *Client) SignatureObjects(ctx context.Context, bvReleaseID int64) ([]platform.Signature, error) {
	var out []platform.Signature
	err := c.get(ctx, fmt.Sprintf("/business-vault-releases/%d/signature-objects", bvReleaseID), &out)
	return out, err
}

// CreateSignatureObject implements platform.SignatureService.
func (c *Client) CreateSignatureObject(ctx context.Context, bvReleaseID int64, name string) (platform.Signature, error) {
	var out platform.Signature
	err := c.post(ctx, fmt.Sprintf("/business-vault-releases/%d/signature-objects", bvReleaseID),
		map[string]string{"name": name}, &out)
	return out, err
}

// AssignObjectSignature implements platform.SignatureService.
func (c *Client) AssignObjectSignature(ctx context.Context, bvReleaseID int64, object string, signatureID int64) error {
	path := fmt.Sprintf("/business-vault-releases/%d/objects/%s/signatures", bvReleaseID, url.PathEscape(object))
	return c.post(ctx, path, map[string]int64{"signatureId": signatureID}, nil)
}

// SignatureAttributes implements platform.SignatureService.
func (c *Client) SignatureAttributes(ctx context.Context, bvReleaseID int64) ([]platform.Signature, error) {
	var out []platform.Signature
	err := c.get(ctx, fmt.Sprintf("/business-vault-releases/%d/signature-attributes", bvReleaseID), &out)
	return out, err
}

// CreateSignatureAttribute implements platform.SignatureService.
func (c *Client) CreateSignatureAttribute(ctx context.Context, bvReleaseID int64, name string) (platform.Signature, error) {
	var out platform.Signature
	err := c.post(ctx, fmt.Sprintf("/business-vault-releases/%d/signature-attributes", bvReleaseID),
		map[string]string{"name": name}, &out)
	return out, err
}

// AssignAttributeSignature implements platform.SignatureService.
func (c *Client) AssignAttributeSignature(ctx context.Context, bvReleaseID int64, object, attribute string, signatureID int64) error {
	path := fmt.Sprintf("/business-vault-releases/%d/objects/%s/attributes/%s/signatures",
		bvReleaseID, url.PathEscape(object), url.PathEscape(attribute))
	return c.post(ctx, path, map[string]int64{"signatureId": signatureID}, nil)
}

// Template implements platform.TemplateService.
func (c *Client) Template(ctx context.Context, bvReleaseID int64, name string) (platform.Template, error) {
	var tmpls []platform.Template
	if err := c.get(ctx, fmt.Sprintf("/business-vault-releases/%d/templates", bvReleaseID), &tmpls); err != nil {
		return platform.Template{}, err
	}
	for _, t := range tmpls {
		if t.Name == name {
			return t, nil
		}
	}
	return platform.Template{}, notFound("template", name)
}

// SaveTemplate implements platform.TemplateService.
func (c *Client) SaveTemplate(ctx context.Context, tmpl platform.Template) (platform.Template, error) {
	var out platform.Template
	err := c.do(ctx, request{method: http.MethodPut, path: fmt.Sprintf("/templates/%d", tmpl.ID), body: tmpl, out: &out})
	return out, err
}

// GenerateTemplateExample implements platform.TemplateService.
func (c *Client) GenerateTemplateExample(ctx context.Context, req platform.TemplateRequest) (platform.TemplateExample, error) {
	var out platform.TemplateExample
	err := c.post(ctx, fmt.Sprintf("/templates/%d/example", req.TemplateID), req, &out)
	return out, err
}
