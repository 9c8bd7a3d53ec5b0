// Package events publishes task lifecycle notifications.
//
// The dispatcher emits a TaskEvent every time a task changes state, and
// interested components (metrics, audit logging) register handlers without
// the dispatcher knowing about them.
//
// The primary components are:
// - TaskEvent: a single lifecycle transition of a task
// - EventHandler: interface for components that consume events
// - EventEmitter: interface for components that publish events
package events
