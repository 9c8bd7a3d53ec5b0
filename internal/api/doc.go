// Package api exposes the classification task service over HTTP.
//
// POST /api/tasks accepts a list of category pairs and answers 201 with the
// new task id, or 503 when the task queue is full. GET /api/tasks/{id}
// returns the task record with its status, result or error. GET /health
// reports task counts per status, the queue depth and the reachability of
// the classifier and cache backends.
//
// Handlers decode and validate requests, call service.TaskService and map
// domain and task errors to status codes and safe messages.
package api
