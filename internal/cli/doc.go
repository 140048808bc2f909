// Package cli implements the stocking-events command line: a one-shot
// poll command, the API server with its poll scheduler, and operator
// tooling for registering subscriptions.
package cli
