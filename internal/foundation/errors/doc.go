// Package errors provides classified, structured errors for cloudmirror.
//
// Every adapter returns a *ClassifiedError carrying a category (config, git,
// cloud, ...), a severity, a retry hint, and a context map. The pipeline and
// the CLI error adapter route on the category; nothing upstream parses error
// strings.
package errors
