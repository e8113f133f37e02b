// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML configuration with dot-key access
//   - PromptStore: user-editable prompt templates with built-in defaults
package file
