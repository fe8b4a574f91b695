// Package registry provides the hosting registry that discovery publishes
// repository bindings into, keyed by their generated registration names.
package registry
