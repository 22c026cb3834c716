// Package endpoint normalizes the values a pipeline can start from or end in.
//
// An Endpoint is a tagged value: Unset, Null, Path, Handle, Sequence or Sink.
// From accepts the loosely typed values callers pass around (paths, open
// files, readers and writers, string slices, iterators, sink functions) and
// Resolve turns an Endpoint into a concrete Stream in read, write or append
// mode. Paths ending in .gz or .zst are transparently (de)compressed.
//
// Resolved streams are closed exactly once. Standard streams and handles
// marked Borrowed are never closed.
package endpoint
