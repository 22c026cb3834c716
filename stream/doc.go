// Package stream provides pull-based iterators over record streams.
//
// An Iterator yields records one at a time through Next and releases its
// resources on Close. Operators such as Map, Filter, FlatMap and Reduce wrap an
// iterator lazily; nothing is pulled until a terminal such as Collect or
// WriteLines drives the chain.
//
// Lines and WriteLines bridge iterators to byte streams using one record per
// newline-terminated line.
//
//	it := stream.Filter(stream.Lines(r), func(s string) bool { return s != "" })
//	n, err := stream.WriteLines(ctx, it, w)
package stream
