// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeResolution,
//	    "failed to resolve module",
//	    cause,
//	    map[string]interface{}{
//	        "module": moduleName,
//	        "source": source,
//	    },
//	)
package errors
