// Package viz renders coupled runs in the terminal and to images.
//
//   - [Summary]: lipgloss report of a finished run
//   - [PlotSeries]: asciigraph plots of recorded series
//   - [ExportPNG]: gonum/plot line chart of a run history
//   - [Live]: Bubble Tea view fed by the supervisor while it runs
//
// # Live key bindings
//
//	Tab   - Choose the series shown in the chart
//	P     - Toggle the phase view of the first two series
//	T     - Cycle color themes
//	Q     - Stop the run and quit
package viz
