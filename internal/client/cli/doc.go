// Package cli provides the interactive Jara command-line client.
//
// It wires configuration, local storage, the local account and media
// services, the poster pool, the session and the remote API client into a
// REPL. Typical flow: sign in (locally or against the API), upload or play
// local videos, browse the shuffled catalog.
//
// Key features:
//   - Register / Login / Logout against the local account list
//   - Remote login against the creator/payments API
//   - Upload, list and play local videos over a loopback preview server
//   - Catalog in a stable per-profile shuffle with discovered posters
//   - api subcommands for creators, landing pages, payment links and payments
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// Sign-ins and sign-outs from another process sharing the data directory
// are picked up by the session watcher.
package cli
