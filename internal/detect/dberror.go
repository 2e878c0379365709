package detect

import (
	"context"
	"regexp"

	"github.com/nao1215/vscan/internal/model"
)

// DatabaseErrorAnalyzer detects database error messages leaked into
// response bodies. These errors confirm the backend engine, often expose
// query fragments, and are the classic precursor to SQL injection.
//
// This analyzer checks for:
//   - MySQL/MariaDB syntax and driver errors
//   - PostgreSQL, Oracle, SQL Server and SQLite error formats
//   - MongoDB driver errors
//   - PDO and JDBC exception types
type DatabaseErrorAnalyzer struct {
	// patterns for detecting database error formats
	patterns map[string]*dbSignature
}

// dbSignature is a database error pattern with the engine it identifies.
type dbSignature struct {
	regex       *regexp.Regexp
	title       string
	description string
	engine      model.DatabaseEngine
}

// NewDatabaseErrorAnalyzer creates a new DatabaseErrorAnalyzer.
func NewDatabaseErrorAnalyzer() *DatabaseErrorAnalyzer {
	return &DatabaseErrorAnalyzer{
		patterns: map[string]*dbSignature{
			// MySQL / MariaDB
			"mysql_syntax": {
				regex:       regexp.MustCompile(`(?i)You have an error in your SQL syntax`),
				title:       "MySQL Syntax Error Disclosed",
				description: "A MySQL syntax error message was found. It confirms the database engine and usually echoes part of the failing query.",
				engine:      model.DatabaseEngineMySQL,
			},
			"mysql_php_driver": {
				regex:       regexp.MustCompile(`(?i)Warning:\s+mysqli?(?:_[a-z_]+)?\(\)`),
				title:       "MySQL Driver Warning Disclosed",
				description: "A PHP MySQL driver warning was found, confirming the database engine and exposing connection details.",
				engine:      model.DatabaseEngineMySQL,
			},

			// Generic SQL
			"sql_syntax_error": {
				regex:       regexp.MustCompile(`(?i)SQL syntax error`),
				title:       "SQL Syntax Error Disclosed",
				description: "A SQL syntax error message was found in the response body.",
				engine:      model.DatabaseEngineUnknown,
			},
			"pdo_exception": {
				regex:       regexp.MustCompile(`(?i)PDOException`),
				title:       "PDO Exception Disclosed",
				description: "A PHP PDO exception was found, confirming database access errors are rendered to visitors.",
				engine:      model.DatabaseEngineUnknown,
			},
			"sqlstate_code": {
				regex:       regexp.MustCompile(`SQLSTATE\[[0-9A-Z]+\]`),
				title:       "SQLSTATE Error Code Disclosed",
				description: "A SQLSTATE error code was found, confirming database access errors are rendered to visitors.",
				engine:      model.DatabaseEngineUnknown,
			},
			"jdbc_exception": {
				regex:       regexp.MustCompile(`java\.sql\.SQL[A-Za-z]*Exception`),
				title:       "JDBC Exception Disclosed",
				description: "A Java SQL exception type was found, confirming database access errors are rendered to visitors.",
				engine:      model.DatabaseEngineUnknown,
			},

			// PostgreSQL
			"postgres_ruby_driver": {
				regex:       regexp.MustCompile(`PG::[A-Za-z]+Error`),
				title:       "PostgreSQL Driver Error Disclosed",
				description: "A Ruby PostgreSQL driver error was found, confirming the database engine.",
				engine:      model.DatabaseEnginePostgreSQL,
			},
			"postgres_php_driver": {
				regex:       regexp.MustCompile(`(?i)Warning:\s+pg_[a-z_]+\(\)`),
				title:       "PostgreSQL Driver Warning Disclosed",
				description: "A PHP PostgreSQL driver warning was found, confirming the database engine.",
				engine:      model.DatabaseEnginePostgreSQL,
			},
			"postgres_syntax": {
				regex:       regexp.MustCompile(`(?i)ERROR:\s+syntax error at or near`),
				title:       "PostgreSQL Syntax Error Disclosed",
				description: "A PostgreSQL syntax error message was found, usually echoing part of the failing query.",
				engine:      model.DatabaseEnginePostgreSQL,
			},

			// Oracle
			"oracle_code": {
				regex:       regexp.MustCompile(`\bORA-\d{5}`),
				title:       "Oracle Error Code Disclosed",
				description: "An Oracle ORA error code was found, confirming the database engine and the failure class.",
				engine:      model.DatabaseEngineOracle,
			},

			// SQL Server
			"sqlserver_unclosed": {
				regex:       regexp.MustCompile(`(?i)Unclosed quotation mark after the character string`),
				title:       "SQL Server Error Disclosed",
				description: "A SQL Server quoting error was found. This message is a well-known SQL injection indicator.",
				engine:      model.DatabaseEngineSQLServer,
			},
			"sqlserver_oledb": {
				regex:       regexp.MustCompile(`(?i)Microsoft OLE DB Provider for SQL Server`),
				title:       "SQL Server Provider Error Disclosed",
				description: "An OLE DB provider error was found, confirming the database engine and driver stack.",
				engine:      model.DatabaseEngineSQLServer,
			},
			"sqlserver_odbc": {
				regex:       regexp.MustCompile(`(?i)\[Microsoft\]\[ODBC SQL Server Driver\]`),
				title:       "ODBC Driver Error Disclosed",
				description: "An ODBC driver error was found, confirming the database engine and driver stack.",
				engine:      model.DatabaseEngineSQLServer,
			},

			// SQLite
			"sqlite_python_driver": {
				regex:       regexp.MustCompile(`sqlite3\.(?:OperationalError|IntegrityError|ProgrammingError)`),
				title:       "SQLite Driver Error Disclosed",
				description: "A Python SQLite driver error was found, confirming the database engine.",
				engine:      model.DatabaseEngineSQLite,
			},
			"sqlite_generic": {
				regex:       regexp.MustCompile(`SQLITE_ERROR|SQLite3::SQLException`),
				title:       "SQLite Error Disclosed",
				description: "A SQLite error message was found, confirming the database engine.",
				engine:      model.DatabaseEngineSQLite,
			},

			// MongoDB
			"mongo_error": {
				regex:       regexp.MustCompile(`\bMongo(?:Error|ServerError|NetworkError)\b`),
				title:       "MongoDB Error Disclosed",
				description: "A MongoDB driver error was found, confirming the database engine.",
				engine:      model.DatabaseEngineMongoDB,
			},
		},
	}
}

// Name returns the analyzer name.
func (a *DatabaseErrorAnalyzer) Name() string {
	return "dberror"
}

// Category returns the analyzer category.
func (a *DatabaseErrorAnalyzer) Category() string {
	return CategoryContent
}

// Analyze searches for database error messages in page content.
func (a *DatabaseErrorAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)
	seenPatterns := make(map[string]bool)

	for _, page := range data.Pages {
		select {
		case <-ctx.Done():
			return findings, ctx.Err()
		default:
		}

		content := page.Snapshot
		if content == "" {
			continue
		}

		for patternName, sig := range a.patterns {
			match := sig.regex.FindString(content)
			if match == "" {
				continue
			}

			// Only report each pattern once per page
			key := patternName + ":" + page.URL
			if seenPatterns[key] {
				continue
			}
			seenPatterns[key] = true

			findings = append(findings, model.Finding{
				Type:         "database_error",
				Title:        sig.title,
				Description:  sig.description,
				Severity:     model.SeverityHigh,
				SeverityText: model.SeverityHigh.String(),
				Value:        excerpt(match),
				Location:     page.URL,
			})

			if sig.engine != model.DatabaseEngineUnknown {
				findings = append(findings, engineHint(sig.engine, match, page.URL))
			}
		}
	}

	return findings, nil
}

// engineHint reports the identified database engine as an informational
// finding, including a version number when the match carries one.
func engineHint(engine model.DatabaseEngine, match, location string) model.Finding {
	value := engine.DisplayName()
	if version := extractVersion(match); version != "" {
		value += " " + version
	}

	return model.Finding{
		Type:         "technology_hint",
		Title:        "Database Engine Identified from Error Output",
		Description:  "The error output identifies the database engine behind the application.",
		Severity:     model.SeverityInfo,
		SeverityText: model.SeverityInfo.String(),
		Value:        value,
		Location:     location,
	}
}
