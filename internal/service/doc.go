// Package service contains the application use cases of the classification
// service. It sits between the delivery mechanisms (HTTP API, CLI) and the
// task and aggregation machinery.
//
// Key components:
//
// 1. TaskService:
//   - CreateTask validates a classification request and hands it to the
//     dispatcher, returning the new task id immediately
//   - GetStatus returns a snapshot of a task record
//
// 2. Pipeline:
//   - Implements task.Processor: fetches text items from the configured
//     source and runs the aggregation engine over them
//
// 3. Error Handling:
//   - Translates task-level errors to service sentinels
//   - Collaborator failures keep their original message
//
// The service layer depends on interfaces only; concrete sources and
// classifiers are chosen when the application is wired together.
package service
