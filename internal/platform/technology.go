package platform

import (
	"fmt"
	"strings"

	oerrors "github.com/dvmodel/dvctl/internal/errors"
)

// Technology is the ETL generation technology (target platform and language).
type Technology string

const (
	TechSnowflakeDBT        Technology = "SNOWFLAKEDBT"
	TechOracleSQL           Technology = "ORACLESQL"
	TechOracleGroovy        Technology = "ORACLEGROOVY"
	TechPostgreSQL          Technology = "POSTGRESQL"
	TechSQLServerSQL        Technology = "SQLSERVERSQL"
	TechGreenplum           Technology = "GREENPLUM"
	TechPostgresJobScript   Technology = "POSTGRESJOBSCRIPT"
	TechOracleJobScript     Technology = "ORACLEJOBSCRIPT"
	TechGreenplumJobScript  Technology = "GREENPLUMJOBSCRIPT"
	TechSQLServerGroovy     Technology = "SQLSERVERGROOVY"
	TechSnowflakeSQL        Technology = "SNOWFLAKESQL"
	TechBigQuerySQL         Technology = "BIGQUERYSQL"
	TechSQLServerJobScript  Technology = "SQLSERVERJOBSCRIPT"
	TechAzureDWHSQL         Technology = "AZUREDWHSQL"
	TechApacheSpark         Technology = "APACHESPARK"
	TechDatabricksSQL       Technology = "DATABRICKSSQL"
	TechSnowflakeMatillion  Technology = "SNOWFLAKEMATILLION"
	TechAzureDWHMatillion   Technology = "AZUREDWHMATILLION"
	TechSnowflakeJobScript  Technology = "SNOWFLAKEJOBSCRIPT"
	TechSingleStoreSQL      Technology = "SINGLESTORESQL"
	TechDatabricksMatillion Technology = "DATABRICKSMATILLION"
)

var technologies = []Technology{
	TechSnowflakeDBT, TechOracleSQL, TechOracleGroovy, TechPostgreSQL, TechSQLServerSQL,
	TechGreenplum, TechPostgresJobScript, TechOracleJobScript, TechGreenplumJobScript,
	TechSQLServerGroovy, TechSnowflakeSQL, TechBigQuerySQL, TechSQLServerJobScript,
	TechAzureDWHSQL, TechApacheSpark, TechDatabricksSQL, TechSnowflakeMatillion,
	TechAzureDWHMatillion, TechSnowflakeJobScript, TechSingleStoreSQL, TechDatabricksMatillion,
}

// Technologies returns every supported technology name.
func Technologies() []string {
	names := make([]string, len(technologies))
	for i, t := range technologies {
		names[i] = string(t)
	}
	return names
}

// ParseTechnology parses a technology name case-insensitively.
func ParseTechnology(s string) (Technology, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for _, t := range technologies {
		if string(t) == upper {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown generation technology %q (valid: %s)",
		oerrors.ErrValidation, s, strings.Join(Technologies(), ", "))
}
