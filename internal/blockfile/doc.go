// Package blockfile reads and edits marker-delimited blocks in plain text
// config files.
//
// A file is parsed into a [Document]: a tree of verbatim lines,
// [Directive] lines ("key value") and [Block] nodes ("marker {" ... "}").
// Serializing an unmodified Document reproduces the input byte for byte, and
// edits touch only the node they target, so content the editor does not
// understand survives every write.
//
//	php_values {
//	    memory_limit 256M
//	    max_execution_time 30;   # seconds
//	}
//
// File-level edits go through [Editor], which takes a backup through its
// [Backuper] before every mutation and writes the result atomically.
package blockfile
