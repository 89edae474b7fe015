// Package pipeline wires the stages together: download, extract, merge, filter,
// shuffle, write and publish.
package pipeline
