// Package config provides configuration management for rankpulse.
//
// # Configuration Sources
//
// Configuration is layered, later sources overriding earlier ones:
//
//	1. Default values (Default)
//	2. A YAML file (RANKPULSE_CONFIG_FILE, config.yaml or configs/config.yaml)
//	3. A .env file in the working directory
//	4. Environment variables
//
// # Environment Variables
//
// All environment variables use the RANKPULSE_ prefix followed by the
// section and field name:
//
//	RANKPULSE_SERVER_PORT=8080
//	RANKPULSE_PATHS_DATA_DIR=/srv/exports
//	RANKPULSE_ANALYSIS_TOP_N=25
//	RANKPULSE_LOGGING_LEVEL=debug
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
