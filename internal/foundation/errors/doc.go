// Package errors provides the classified error primitives used by docserve.
//
// Every failure the resolution pipeline can produce carries a category that
// decides how callers react to it:
//   - CategoryNotFound: the rule did not match; the router falls through.
//   - CategoryConfig: the site configuration is missing or malformed.
//   - CategoryContent: a single content file is malformed and is skipped.
//   - CategoryFileSystem: any other I/O failure.
//
// Example usage:
//
//	err := errors.NotFoundError("blog post not found").
//		WithContext("path", subpath).
//		Build()
package errors
