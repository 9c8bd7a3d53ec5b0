// Package gemini implements the zero-shot classifier on top of Google's
// Gemini API.
//
// For each (text, label pair) the model is prompted to judge how strongly
// the text entails each label and to answer with a JSON object constrained
// by a response schema. The two scores are normalized into probabilities.
//
// Key components:
//
// 1. Classifier:
//   - Implements classifier.Classifier
//   - Retries transient API failures with exponential backoff and jitter
//   - Treats blocked or malformed replies as permanent failures
//
// 2. Prompt Management:
//   - The prompt is an embedded text/template rendered per call
package gemini
