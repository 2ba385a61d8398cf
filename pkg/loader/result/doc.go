// Package result carries the per-task outcomes of a batch load.
//
// A batch settles every task before reporting, so Output always contains
// one Result per task regardless of failures: successes carry the loaded
// instance, failures carry a TaskError with the structured code and the
// platform ids it affected. Err joins the failures for callers that want
// the aggregate error form.
package result
