// Package source defines the boundary to text-item providers. A TextSource
// returns a batch of text items (for example news headlines with their
// leads) to be classified by a task.
package source
