// Package rule evaluates named classification rules against the domain hits
// of a subject.
//
// A rule lists the domain labels it requires. Each requirement is matched
// greedily, in order, against the first unused hit with that label (and, if
// filtered, an accepted family). The resulting boolean per requirement is
// fed to the rule's condition, e.g. "0 and (1 or 2) and not 3", where each
// integer refers to a requirement by position.
//
// Conditions are parsed once into a small typed AST and evaluated directly
// against the boolean vector.
package rule
