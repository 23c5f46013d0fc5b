package config

// EnvPrefix namespaces every environment variable read by envconfig.
const EnvPrefix = "REELMATES"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "REELMATES_DB_DSN"
	EnvDBHost = "REELMATES_DB_HOST"
	EnvDBUser = "REELMATES_DB_USER"
	EnvDBName = "REELMATES_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
