// Package theme provides CSS theming for devping panels.
// Bundled themes are embedded in the binary; users can override or
// add themes under the config directory.
package theme
