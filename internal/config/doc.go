// Package config provides environment-based configuration.
//
// Loads settings from environment variables with development defaults where safe.
// Validates required connection settings (database, Supabase, Wuzapi) at startup.
package config
