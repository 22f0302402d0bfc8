// Package sequence detects numbered image sequences from a seed filename.
//
// Detection is a heuristic, not a formal grammar: filenames with several
// numeric substrings are inherently ambiguous. The rule used here is fixed
// and documented — the rightmost numeric run immediately before the file
// extension is the sequence counter; everything left of it is the prefix and
// anything between the run and the extension is the suffix.
package sequence
