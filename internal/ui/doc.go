// Package ui implements an interactive discover browser using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [ListView] : the merged discover list, filterable, with a spinner while the catalog loads
//  2. [DetailView] : one recipe with its ingredients and instructions
//
// The [Model] polls the aggregator while the catalog is loading and stops once a result is in.
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
