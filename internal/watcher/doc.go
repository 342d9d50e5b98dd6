// Package watcher reports template and stylesheet changes under a directory
// so dev mode can reload the page without restarting the server.
package watcher
