// Package wav implements chunk-preserving, atomic WAV metadata I/O.
//
// A WAV file is walked as a sequence of RIFF chunks (see riffwalk.go).
// Three chunk kinds are understood and may be rewritten: bext (bext_chunk.go),
// iXML (ixml.go), and a LIST chunk in INFO form (list_chunk.go). Every other
// chunk — fmt , data, cue , smpl, axml, vendor blocks — is preserved
// byte-for-byte by Rewrite (atomic.go), which stream-copies the source file
// into a temporary file in the same directory and renames it into place.
//
// This package never loads the audio payload into memory and never modifies
// sample data.
package wav
