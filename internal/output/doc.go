// Package output renders rangefan's user-facing data, the registered
// worker roster and accumulated result batches, in table, JSON, or
// YAML form. The table output follows kubectl conventions: tab padding,
// no borders, upper-case headers, colors only on a TTY.
package output
