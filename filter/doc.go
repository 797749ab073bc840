// Package filter implements the listing query language.
//
// A query is a conjunction of whitespace-separated terms:
//
//	severity=WARNING source:"flight computer" seqNumber>=100 overheat
//
// Field terms compare a registered field with a value. Numbers support
// : = < <= > >=, strings and enums support equality only, and number
// collections test membership. Other terms are free-text literals matched
// case-insensitively by the schema's Matcher.
package filter
