// Package viz renders scenario runs in the terminal.
//
//   - [Summary]: a lipgloss report of a finished [scenario.Trace]
//   - [Model]: a Bubble Tea program that flies a scenario live
//
// # Key Bindings
//
//	Space - Pause/Resume
//	+/-   - Ticks per frame
//	R     - Restart the scenario
//	?     - Show help overlay
//	Q     - Quit
package viz
