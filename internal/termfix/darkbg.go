// ABOUTME: Pre-sets the lipgloss dark background before the viewer's bubbletea program starts
// ABOUTME: Import with _ ahead of bubbletea so no OSC 10/11 reply ever reaches keyview's decoder

package termfix

import "github.com/charmbracelet/lipgloss"

func init() {
	// An explicit background skips the OSC 11 query lipgloss would send on
	// first use. keyview reads stdin itself, so the terminal's reply would
	// show up as a garbage event. This package must not import bubbletea.
	lipgloss.SetHasDarkBackground(true)
}
