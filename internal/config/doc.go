// Package config defines the settings shared by the aevum client and the
// alarm store daemon and provides helpers to load, validate, save and watch
// them in YAML format.
//
// Values from the file can be overridden with AEVUM_* environment variables;
// the client reloads the file on change and applies colour and input
// updates without a restart.
package config
