// Package constants holds names shared by the CLI, config loader and logs.
package constants

const (
	AppName      = "serviceflow"
	EnvPrefix    = "SERVICEFLOW"
	ConfigName   = "config"
	ConfigFormat = "yaml"

	// DateLayout is the wire and storage format of calendar dates.
	DateLayout = "2006-01-02"
)
