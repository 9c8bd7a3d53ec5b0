// Package domain contains the core entities and value objects of the
// classification service: category pairs, classification requests, the
// per-item and per-pair results produced by a task, and the error taxonomy
// shared by every layer. It has no dependencies on infrastructure or
// delivery mechanisms.
package domain
