// Package runtime invokes skills as child processes. DispatchRuntime picks a
// launch strategy from the skill's execution mode; Invoker writes one JSON
// request to the child's stdin, waits for it under a deadline and folds every
// outcome, including faults, into a Result.
package runtime
