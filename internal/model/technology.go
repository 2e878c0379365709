package model

// techUnknownStr is the string representation for unknown technology values.
const techUnknownStr = "unknown"

// Technology represents a web technology identified from error output.
type Technology string

// Technology constants.
const (
	// TechnologyUnknown represents an unidentified technology.
	TechnologyUnknown Technology = ""
	// TechnologyPHP represents the PHP runtime.
	TechnologyPHP Technology = "php"
	// TechnologyPython represents the Python runtime.
	TechnologyPython Technology = "python"
	// TechnologyDjango represents the Django framework.
	TechnologyDjango Technology = "django"
	// TechnologyFlask represents the Flask framework (Werkzeug).
	TechnologyFlask Technology = "flask"
	// TechnologyRuby represents the Ruby runtime.
	TechnologyRuby Technology = "ruby"
	// TechnologyRails represents the Ruby on Rails framework.
	TechnologyRails Technology = "rails"
	// TechnologyJava represents the Java runtime.
	TechnologyJava Technology = "java"
	// TechnologySpring represents the Spring framework.
	TechnologySpring Technology = "spring"
	// TechnologyTomcat represents the Apache Tomcat servlet container.
	TechnologyTomcat Technology = "tomcat"
	// TechnologyASPNet represents ASP.NET on the .NET runtime.
	TechnologyASPNet Technology = "aspnet"
	// TechnologyNode represents the Node.js runtime.
	TechnologyNode Technology = "node"
	// TechnologyExpress represents the Express framework.
	TechnologyExpress Technology = "express"
	// TechnologyGo represents the Go runtime.
	TechnologyGo Technology = "go"
	// TechnologyLaravel represents the Laravel framework.
	TechnologyLaravel Technology = "laravel"
	// TechnologyColdFusion represents Adobe ColdFusion.
	TechnologyColdFusion Technology = "coldfusion"
	// TechnologyApache represents the Apache httpd server.
	TechnologyApache Technology = "apache"
	// TechnologyNginx represents the nginx server.
	TechnologyNginx Technology = "nginx"
	// TechnologyIIS represents Microsoft IIS.
	TechnologyIIS Technology = "iis"
	// TechnologyLiteSpeed represents the LiteSpeed server.
	TechnologyLiteSpeed Technology = "litespeed"
)

// TechnologyCategory groups technologies by their role in the stack.
type TechnologyCategory string

// Technology category constants.
const (
	// TechnologyCategoryUnknown represents an unknown category.
	TechnologyCategoryUnknown TechnologyCategory = ""
	// TechnologyCategoryRuntime represents language runtimes (PHP, Python, ...).
	TechnologyCategoryRuntime TechnologyCategory = "runtime"
	// TechnologyCategoryFramework represents web frameworks (Django, Rails, ...).
	TechnologyCategoryFramework TechnologyCategory = "framework"
	// TechnologyCategoryServer represents web servers (Apache, nginx, ...).
	TechnologyCategoryServer TechnologyCategory = "server"
)

// String returns the string representation of the Technology.
func (t Technology) String() string {
	if t == TechnologyUnknown {
		return techUnknownStr
	}
	return string(t)
}

// IsValid returns true if this is a known technology.
func (t Technology) IsValid() bool {
	switch t {
	case TechnologyPHP, TechnologyPython, TechnologyDjango, TechnologyFlask,
		TechnologyRuby, TechnologyRails, TechnologyJava, TechnologySpring,
		TechnologyTomcat, TechnologyASPNet, TechnologyNode, TechnologyExpress,
		TechnologyGo, TechnologyLaravel, TechnologyColdFusion, TechnologyApache,
		TechnologyNginx, TechnologyIIS, TechnologyLiteSpeed:
		return true
	default:
		return false
	}
}

// Category returns the stack role of this technology.
func (t Technology) Category() TechnologyCategory {
	switch t {
	case TechnologyPHP, TechnologyPython, TechnologyRuby, TechnologyJava,
		TechnologyNode, TechnologyGo:
		return TechnologyCategoryRuntime
	case TechnologyDjango, TechnologyFlask, TechnologyRails, TechnologySpring,
		TechnologyExpress, TechnologyLaravel, TechnologyASPNet, TechnologyColdFusion:
		return TechnologyCategoryFramework
	case TechnologyApache, TechnologyNginx, TechnologyIIS, TechnologyTomcat,
		TechnologyLiteSpeed:
		return TechnologyCategoryServer
	default:
		return TechnologyCategoryUnknown
	}
}

// DisplayName returns the properly cased product name for report output.
// Names with vendor-specific casing (ASP.NET, IIS) are special-cased;
// everything else is handled by the reporting layer's title casing.
func (t Technology) DisplayName() string {
	switch t {
	case TechnologyPHP:
		return "PHP"
	case TechnologyASPNet:
		return "ASP.NET"
	case TechnologyIIS:
		return "Microsoft IIS"
	case TechnologyNode:
		return "Node.js"
	case TechnologyNginx:
		return "nginx"
	case TechnologyRails:
		return "Ruby on Rails"
	case TechnologyColdFusion:
		return "ColdFusion"
	case TechnologyLiteSpeed:
		return "LiteSpeed"
	case TechnologyUnknown:
		return "Unknown"
	default:
		// Single-word names (django, flask, go, ...) are title-cased by callers.
		return string(t)
	}
}

// ParseTechnology converts a string to Technology.
func ParseTechnology(s string) Technology {
	switch s {
	case "php":
		return TechnologyPHP
	case "python":
		return TechnologyPython
	case "django":
		return TechnologyDjango
	case "flask", "werkzeug":
		return TechnologyFlask
	case "ruby":
		return TechnologyRuby
	case "rails":
		return TechnologyRails
	case "java":
		return TechnologyJava
	case "spring":
		return TechnologySpring
	case "tomcat":
		return TechnologyTomcat
	case "aspnet", "asp.net", "dotnet":
		return TechnologyASPNet
	case "node", "nodejs":
		return TechnologyNode
	case "express":
		return TechnologyExpress
	case "go", "golang":
		return TechnologyGo
	case "laravel":
		return TechnologyLaravel
	case "coldfusion":
		return TechnologyColdFusion
	case "apache", "httpd":
		return TechnologyApache
	case "nginx":
		return TechnologyNginx
	case "iis":
		return TechnologyIIS
	case "litespeed":
		return TechnologyLiteSpeed
	default:
		return TechnologyUnknown
	}
}

// DatabaseEngine represents a database product identified from error output.
type DatabaseEngine string

// Database engine constants.
const (
	// DatabaseEngineUnknown represents an unidentified engine.
	DatabaseEngineUnknown DatabaseEngine = ""
	// DatabaseEngineMySQL represents MySQL and MariaDB.
	DatabaseEngineMySQL DatabaseEngine = "mysql"
	// DatabaseEnginePostgreSQL represents PostgreSQL.
	DatabaseEnginePostgreSQL DatabaseEngine = "postgresql"
	// DatabaseEngineOracle represents Oracle Database.
	DatabaseEngineOracle DatabaseEngine = "oracle"
	// DatabaseEngineSQLServer represents Microsoft SQL Server.
	DatabaseEngineSQLServer DatabaseEngine = "sqlserver"
	// DatabaseEngineSQLite represents SQLite.
	DatabaseEngineSQLite DatabaseEngine = "sqlite"
	// DatabaseEngineMongoDB represents MongoDB.
	DatabaseEngineMongoDB DatabaseEngine = "mongodb"
)

// String returns the string representation of the DatabaseEngine.
func (e DatabaseEngine) String() string {
	if e == DatabaseEngineUnknown {
		return techUnknownStr
	}
	return string(e)
}

// IsValid returns true if this is a known engine.
func (e DatabaseEngine) IsValid() bool {
	switch e {
	case DatabaseEngineMySQL, DatabaseEnginePostgreSQL, DatabaseEngineOracle,
		DatabaseEngineSQLServer, DatabaseEngineSQLite, DatabaseEngineMongoDB:
		return true
	default:
		return false
	}
}

// DisplayName returns the properly cased product name for report output.
func (e DatabaseEngine) DisplayName() string {
	switch e {
	case DatabaseEngineMySQL:
		return "MySQL"
	case DatabaseEnginePostgreSQL:
		return "PostgreSQL"
	case DatabaseEngineOracle:
		return "Oracle"
	case DatabaseEngineSQLServer:
		return "Microsoft SQL Server"
	case DatabaseEngineSQLite:
		return "SQLite"
	case DatabaseEngineMongoDB:
		return "MongoDB"
	default:
		return "Unknown"
	}
}

// ParseDatabaseEngine converts a string to DatabaseEngine.
func ParseDatabaseEngine(s string) DatabaseEngine {
	switch s {
	case "mysql", "mariadb":
		return DatabaseEngineMySQL
	case "postgresql", "postgres":
		return DatabaseEnginePostgreSQL
	case "oracle":
		return DatabaseEngineOracle
	case "sqlserver", "mssql":
		return DatabaseEngineSQLServer
	case "sqlite":
		return DatabaseEngineSQLite
	case "mongodb", "mongo":
		return DatabaseEngineMongoDB
	default:
		return DatabaseEngineUnknown
	}
}
