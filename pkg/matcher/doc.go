// Package matcher evaluates free text against a rule set.
//
// Evaluation has three steps:
//
//  1. Parse the filter expression (a malformed expression fails before any matching)
//  2. Canonicalize the text: delete every match of the rule set's preprocess
//     pattern, then lowercase the result
//  3. Walk the tagged patterns in stored order and stop at the first pattern that
//     the filter admits and whose regex matches the canonical text
//
// Matching is case-insensitive only through the lowercasing step; patterns are
// compiled without the (?i) flag and must be written in lowercase.
//
// Evaluation never mutates the rule set, so concurrent calls with the same rule
// set are safe and repeated calls return identical results.
package matcher
