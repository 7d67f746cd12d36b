// Package fixtures embeds sample API descriptions shared by tests.
package fixtures

import _ "embed"

// Polls is the Polls API example document.
//
//go:embed polls.apib
var Polls string
