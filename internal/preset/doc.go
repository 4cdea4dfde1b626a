// Package preset parses preset definition files and manages a directory of
// them.
//
// # Format
//
// A preset is a loosely structured text file:
//
//	# High traffic sites
//	name: high-traffic
//	description: "Bigger PHP limits, aggressive caching"
//	php:
//	    memory_limit: 512M
//	    max_execution_time: 60
//	cache:
//	    page_cache: true
//	    ttl: 3600
//
// A non-indented "ident:" with nothing after the colon opens a section. The
// section covers the indented lines that follow it and ends at the next
// non-indented line. Blank lines and "#" comments never end a section.
// Values are trimmed and one matching pair of quotes is removed.
//
// Lines that do not fit one of these shapes are a [*ParseError] unless
// [Options.Lenient] is set, in which case they are recorded in
// [Preset.Skipped] and dropped.
//
// # Registry
//
// [Registry] lists, locates and structurally validates the "*.preset" files
// in one directory. A structurally valid preset has a non-empty name and at
// least one of the "php" or "cache" sections.
package preset
