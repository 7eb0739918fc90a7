// Package viz plays soft-body frames in the terminal.
//
// [TerminalSink] is a playback sink that plots every frame on a
// Braille [Canvas] and then replays them in a Bubble Tea [Player]:
//
//	Space - Pause/Resume
//	[ ]   - Step back / forward
//	R     - Restart
//	T     - Cycle color themes
//	Q     - Quit
package viz
