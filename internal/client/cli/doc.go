// Package cli provides the interactive valetkey command-line client.
//
// It wires configuration, the API client, the session gate, the dashboard
// and upload controllers and the public-share view into a REPL. Typical
// flow: resolve the stored session, prompt for credentials when there is
// none, then execute dashboard commands until the user exits.
//
// Key features:
//   - Login / Logout with a persisted session cookie
//   - Browse folders page by page, search files and folders
//   - Upload, download, rename, move, delete and share files
//   - Multi-select with bulk delete and bulk move
//   - Anonymous view of public share links
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// App.PublicOnce serves the one-shot "public <token>" route.
package cli
