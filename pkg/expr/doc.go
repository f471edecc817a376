// Package expr implements the restricted expression language used by grove
// predicates and path templates.
//
// The language supports string, integer and boolean literals, the operators
// `and`, `or`, `not`, `==`, `!=`, `in` and `not in`, and calls to a fixed set
// of registered functions. There are no variables, no loops, no assignment,
// and no user-defined functions; the restriction is a design requirement so
// that user configuration can never become an arbitrary-code-execution
// vector.
//
// Functions are resolved against a [Table] built for one of two scopes:
//
//   - [ScopePath]: URI, branch, tag and timestamp accessors, used in path
//     templates and source-routing predicates.
//   - [ScopeProject]: everything in ScopePath plus filesystem accessors
//     (source_path, dest_path, file_exists, dir_exists, path_exists), used
//     in project action predicates.
//
// Calling a function outside its scope fails with
// [FunctionNotDefinedError]; scoping is enforced by table membership, not by
// runtime guards. Every call is checked for existence, arity and argument
// kinds before the function body runs.
package expr
