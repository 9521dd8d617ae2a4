// Package vm provides the high-level operations behind kiln's commands.
//
// This package orchestrates the lower-level components (cascade, inherit,
// schema, selector, provision, provider) to provide simple operations over
// one configuration environment.
//
// The main operations are:
//   - Load: Merge the configuration cascade, flatten inheritance and validate
//   - Up: Provision the selected machines, one at a time
//   - List: List the resolved machines
//   - Plan: Translate one machine's provider sections into backend plans
//   - Query: Evaluate a JSONPath expression against the merged configuration
//   - Validate: Load and plan every machine without running anything
//
// Error Handling:
//
// Every operation stops at the first failure. Up stops at the first machine
// whose run fails and returns the reports of every run attempted so far;
// the failed run has already removed its temporary scripts and links.
//
// Context Support:
//
// All operations accept a context.Context. Cancelling it interrupts the
// running provision command; cleanup is still attempted.
package vm
