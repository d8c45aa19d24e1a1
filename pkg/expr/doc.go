// Package expr provides CEL (Common Expression Language) queries over
// classified synthases.
//
// Query expressions have access to variables:
//   - `header` (string): The synthase header
//   - `length` (int): The sequence length
//   - `classification` (list<string>): The classification path
//   - `kind` (string): The leading classification label, or ""
//   - `architecture` (string): The hyphen separated domain labels
//   - `domains` (list<string>): The domain labels, in order
//   - `hits` (list<map>): The domain hits, with keys label, family, start and end
//
// And to custom functions:
//   - `countOf(list, value)`: Number of occurrences of value in list
//   - `list.hasAll(a, ...)`: Whether list contains every argument
package expr
