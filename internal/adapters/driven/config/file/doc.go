// Package file provides the on-disk configuration adapters: the TOML
// ConfigStore and the editable PromptStore, both under ~/.kyc by default.
package file
