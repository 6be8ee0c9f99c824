// Package platform defines the records and client interfaces dvctl uses to
// talk to the data-vault modeling platform. The platform itself is an
// external collaborator; this package only fixes the contract.
package platform

import (
	"fmt"
	"strings"
	"time"
)

// Dated is implemented by every record that has an identity and a creation
// date. "Latest" always means maximum Created, ties broken by the larger Identity.
type Dated interface {
	Identity() int64
	Created() time.Time
}

// Project is a top-level workspace on the platform.
type Project struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// DataVault is a modeled schema inside a project. It owns releases and flows.
type DataVault struct {
	ID        int64  `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Code      string `json:"code" yaml:"code"`
	ProjectID int64  `json:"projectId" yaml:"projectId"`
}

// Release is a data-vault release. Once Locked it never reverts.
type Release struct {
	ID          int64     `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Date        time.Time `json:"date" yaml:"date"`
	Locked      bool      `json:"locked" yaml:"locked"`
	Prototype   bool      `json:"prototype" yaml:"prototype"`
	DataVaultID int64     `json:"dataVaultId" yaml:"dataVaultId"`
}

// Identity implements Dated.
func (r Release) Identity() int64 { return r.ID }

// Created implements Dated.
func (r Release) Created() time.Time { return r.Date }

// BusinessVaultRelease is a business-logic release scoped under a Release.
type BusinessVaultRelease struct {
	ID        int64     `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Date      time.Time `json:"date" yaml:"date"`
	Locked    bool      `json:"locked" yaml:"locked"`
	ReleaseID int64     `json:"releaseId" yaml:"releaseId"`
}

// Identity implements Dated.
func (r BusinessVaultRelease) Identity() int64 { return r.ID }

// Created implements Dated.
func (r BusinessVaultRelease) Created() time.Time { return r.Date }

// GenerationKind is the kind of generated artifact.
type GenerationKind string

const (
	KindDDL   GenerationKind = "DDL"
	KindETL   GenerationKind = "ETL"
	KindDelta GenerationKind = "DELTA"
	KindFMC   GenerationKind = "FMC"
)

// Generation is a code-generation artifact record.
type Generation struct {
	ID         int64          `json:"id" yaml:"id"`
	Kind       GenerationKind `json:"kind" yaml:"kind"`
	Technology Technology     `json:"technology,omitempty" yaml:"technology,omitempty"`

	// BusinessVaultReleaseID is the release the code was generated for.
	// For DELTA it is the "new" side.
	BusinessVaultReleaseID int64 `json:"bvReleaseId,omitempty" yaml:"bvReleaseId,omitempty"`

	// BaselineReleaseID is the "old" business-vault release of a DELTA.
	BaselineReleaseID int64 `json:"baselineBvReleaseId,omitempty" yaml:"baselineBvReleaseId,omitempty"`

	// FlowID and SourceGenerationID identify an FMC generation: the flow it
	// orchestrates and the ETL or DELTA generation it was built from.
	FlowID             int64 `json:"flowId,omitempty" yaml:"flowId,omitempty"`
	SourceGenerationID int64 `json:"sourceGenerationId,omitempty" yaml:"sourceGenerationId,omitempty"`

	FileName      string    `json:"fileName,omitempty" yaml:"fileName,omitempty"`
	Date          time.Time `json:"date" yaml:"date"`
	CanAutoDeploy bool      `json:"canAutoDeploy" yaml:"canAutoDeploy"`
}

// Identity implements Dated.
func (g Generation) Identity() int64 { return g.ID }

// Created implements Dated.
func (g Generation) Created() time.Time { return g.Date }

// String returns "KIND#id".
func (g Generation) String() string {
	return fmt.Sprintf("%s#%d", g.Kind, g.ID)
}

// FlowType is the scheduler flow type.
type FlowType string

const (
	// FlowTypeFL loads a single source into the raw vault.
	FlowTypeFL FlowType = "FL"
	// FlowTypeBV loads the business vault.
	FlowTypeBV FlowType = "BV"
)

// LoadType selects initial or incremental loading.
type LoadType string

const (
	LoadAll  LoadType = "ALL"
	LoadInit LoadType = "INIT"
	LoadIncr LoadType = "INCR"
)

// Lower returns the lowercase load type, used in flow names.
func (l LoadType) Lower() string {
	return strings.ToLower(string(l))
}

// FlowETLGeneration is an ETL-stage generation a flow can be built from.
type FlowETLGeneration struct {
	GenerationID int64     `json:"generationId" yaml:"generationId"`
	Date         time.Time `json:"date" yaml:"date"`
}

// Identity implements Dated.
func (g FlowETLGeneration) Identity() int64 { return g.GenerationID }

// Created implements Dated.
func (g FlowETLGeneration) Created() time.Time { return g.Date }

// Flow is a scheduler-level unit orchestrating generated ETL code.
type Flow struct {
	ID             int64               `json:"id" yaml:"id"`
	Name           string              `json:"name" yaml:"name"`
	Description    string              `json:"description,omitempty" yaml:"description,omitempty"`
	DataVaultID    int64               `json:"dataVaultId" yaml:"dataVaultId"`
	FlowType       FlowType            `json:"flowType" yaml:"flowType"`
	LoadType       LoadType            `json:"loadType" yaml:"loadType"`
	ETLGenerations []FlowETLGeneration `json:"etlGenerations,omitempty" yaml:"etlGenerations,omitempty"`
}

// FlowSpec describes a flow to create.
type FlowSpec struct {
	Name                 string    `json:"name" yaml:"name"`
	Description          string    `json:"description" yaml:"description"`
	StartDate            time.Time `json:"startDate" yaml:"startDate"`
	Concurrency          int       `json:"concurrency" yaml:"concurrency"`
	FlowType             FlowType  `json:"flowType" yaml:"flowType"`
	LoadType             LoadType  `json:"loadType" yaml:"loadType"`
	GroupTasks           bool      `json:"groupTasks" yaml:"groupTasks"`
	DVConnectionName     string    `json:"dvConnectionName" yaml:"dvConnectionName"`
	SourceConnectionName string    `json:"srcConnectionName,omitempty" yaml:"srcConnectionName,omitempty"`
	SourceID             int64     `json:"sourceId,omitempty" yaml:"sourceId,omitempty"`
	ScheduleInterval     string    `json:"scheduleInterval" yaml:"scheduleInterval"`
}

// Source is a source system registered in a project.
type Source struct {
	ID        int64  `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	BuildFlag bool   `json:"buildFlag" yaml:"buildFlag"`
	ProjectID int64  `json:"projectId" yaml:"projectId"`
}

// Parameter is a project or source parameter.
type Parameter struct {
	Name        string `json:"name" yaml:"name"`
	Value       string `json:"value" yaml:"value"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
}

// DatabaseLink is a deployment target registered on the platform.
type DatabaseLink struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Signature is a signature object or signature attribute of a business-vault release.
type Signature struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Template is a code template of a business-vault release.
type Template struct {
	ID                     int64    `json:"id" yaml:"id"`
	Name                   string   `json:"name" yaml:"name"`
	BusinessVaultReleaseID int64    `json:"bvReleaseId" yaml:"bvReleaseId"`
	DDL                    string   `json:"templateDdl" yaml:"templateDdl"`
	ETL                    string   `json:"templateEtl" yaml:"templateEtl"`
	Dependencies           []string `json:"dependencies" yaml:"dependencies"`
}

// HasDependency reports whether object is one of the template's base objects.
func (t Template) HasDependency(object string) bool {
	for _, d := range t.Dependencies {
		if d == object {
			return true
		}
	}
	return false
}

// TemplateExample is the result of generating example code for a template.
type TemplateExample struct {
	Code        string       `json:"code"`
	Generations []Generation `json:"generations"`
}
