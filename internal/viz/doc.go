// Package viz renders vehicle parameters and run summaries for the terminal
// with lipgloss.
//
//   - [RenderParameters]: links, joints, mass and inertia of a document
//   - [RenderRun]: sampling, step counts, final state and metrics of a run
//   - [Theme]: color schemes selectable by name
package viz
