// Package config defines the YAML configuration model for the rotor
// gateway, along with defaults, validation, environment overrides and
// file watching for hot reload.
//
// Environment variables follow the naming convention ROTOR_SECTION_FIELD
// and always take precedence over file values. Examples:
//
//   - ROTOR_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - ROTOR_DISPATCH_RETRY_DELAY overrides dispatch.retry_delay
//   - ROTOR_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
package config
