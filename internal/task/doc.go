// Package task manages classification task records and their background
// execution. A Dispatcher creates a record in the Store, hands a Job to a
// bounded TaskQueue and lets a fixed WorkerPool run the Processor for it,
// committing the outcome back to the Store exactly once.
package task
