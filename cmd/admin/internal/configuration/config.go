package configuration

import "github.com/adampresley/configinator"

type Config struct {
	CredentialsFile  string `flag:"credfile" env:"STORAGE_CREDENTIALS_FILE" default:"./.b2-config.json" description:"Path to the storage credentials file"`
	Host             string `flag:"host" env:"HOST" default:"localhost:3001" description:"The address and port to bind the HTTP server to"`
	LogLevel         string `flag:"loglevel" env:"LOG_LEVEL" default:"debug" description:"The log level to use. Valid values are 'debug', 'info', 'warn', and 'error'"`
	MaxDeleteWorkers int    `flag:"mdw" env:"MAX_DELETE_WORKERS" default:"4" description:"Maximum number of concurrent storage deletions"`
	MaxUploadWorkers int    `flag:"muw" env:"MAX_UPLOAD_WORKERS" default:"4" description:"Maximum number of concurrent image uploads"`
	SiteDir          string `flag:"sitedir" env:"SITE_DIR" default:".." description:"Root directory of the static site to administer"`
}

func LoadConfig() Config {
	config := Config{}
	configinator.Behold(&config)
	return config
}
