// Package bookmark decodes modern Apple Bookmark records (`book`/`alis`
// magic): a multi-level table of contents indexing a pool of typed values.
// Each TOC visited while following next_toc contributes one Record.
package bookmark
