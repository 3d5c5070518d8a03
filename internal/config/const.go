// Package config holds the generator configuration and its loaders.
package config

// Global constants for the application.
const (
	Application = "mapgen"
	Description = "Mapper Generator fills in Go conversion stubs between two types"
	WebSite     = "https://github.com/origadmin/mapgen"
	UI          = `
                                       
  _ __ ___   __ _ _ __   __ _  ___ _ __  
 | '_ ' _ \ / _' | '_ \ / _' |/ _ \ '_ \ 
 | | | | | | (_| | |_) | (_| |  __/ | | |
 |_| |_| |_|\__,_| .__/ \__, |\___|_| |_|
                 |_|    |___/            
`
)

// DirectivePrefix marks a stub; with a ':' suffix it starts a package directive.
const DirectivePrefix = "//go:mapgen"

// ConfigFileName is the project configuration file searched for by Load.
const ConfigFileName = ".mapgen.yaml"
