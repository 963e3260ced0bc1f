// Package wavmeta reads recorder metadata from bioacoustic RIFF/WAVE files.
//
// Wildlife Acoustics recorders store a private "wamd" chunk: a flat stream of
// little-endian (id, length, value) records carrying the model, serial
// number, firmware, GPS fix and more. Other recorders write a text GUANO
// block in a "guan" chunk instead. The package decodes both, and a Resolver
// combines them into a single serial number lookup that never fails:
//
//	r := wavmeta.NewResolver()
//	serial := r.SerialOf("STN1_20180601_213000.wav") // "NA" when unknown
//
// Resolve reports which source answered and why the others were skipped.
// ResolveMany spreads a batch of files over a bounded goroutine pool.
//
// For diagnostics, ReadMetadata scans every chunk of a file through a
// ChunkRegistry and returns the decoded wamd, GUANO and LIST/INFO content
// together with the chunk inventory. Inspect reads the audio format and
// duration, BuildStations summarizes a directory tree of field deployments
// by station and BuildReview lists fixed-length clips of every recording for
// manual review.
package wavmeta
