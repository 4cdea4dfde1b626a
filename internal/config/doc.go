// Package config loads the presetctl engine configuration.
//
// # Overview
//
// The engine is configured with one HCL file, by default
// /etc/presetctl/presetctl.hcl. A missing default file is not an error:
// every setting has a default. Expressions may reference the process
// environment through the env object:
//
//	sites_root = "${env.HOME}/sites"
//
// # Configuration Blocks
//
//   - config_block: where each site's config-block file lives and how it is backed up
//   - collaborator: the command-line tool that drives the page-cache plugin
//   - audit: run history database
//   - metrics: node-exporter textfile output
//   - log: log level and format
package config
