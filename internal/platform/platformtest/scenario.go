package platformtest

import (
	"time"

	"github.com/dvmodel/dvctl/internal/platform"
)

// Date parses a YYYY-MM-DD date in UTC and panics on malformed input.
func Date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// Scenario is a Fake seeded with one project and one data vault.
type Scenario struct {
	*Fake
	ProjectRecord   platform.Project
	DataVaultRecord platform.DataVault
}

var _ platform.Client = (*Scenario)(nil)

// NewScenario returns a Fake seeded with project "sales" (ID 1) and data
// vault "edw" (ID 10, code "EDW").
func NewScenario() *Scenario {
	f := NewFake()
	s := &Scenario{
		Fake:            f,
		ProjectRecord:   platform.Project{ID: 1, Name: "sales"},
		DataVaultRecord: platform.DataVault{ID: 10, Name: "edw", Code: "EDW", ProjectID: 1},
	}
	f.ProjectList = append(f.ProjectList, s.ProjectRecord)
	f.DataVaultList = append(f.DataVaultList, s.DataVaultRecord)
	return s
}

// AddRelease adds a data-vault release to the scenario's data vault.
func (s *Scenario) AddRelease(id int64, name, date string, locked, prototype bool) platform.Release {
	r := platform.Release{
		ID:          id,
		Name:        name,
		Date:        Date(date),
		Locked:      locked,
		Prototype:   prototype,
		DataVaultID: s.DataVaultRecord.ID,
	}
	s.ReleaseList = append(s.ReleaseList, r)
	return r
}

// AddBVRelease adds a business-vault release under the given release.
func (s *Scenario) AddBVRelease(id int64, releaseID int64, name, date string, locked bool) platform.BusinessVaultRelease {
	r := platform.BusinessVaultRelease{
		ID:        id,
		Name:      name,
		Date:      Date(date),
		Locked:    locked,
		ReleaseID: releaseID,
	}
	s.BVReleaseList = append(s.BVReleaseList, r)
	return r
}
