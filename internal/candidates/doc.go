// Package candidates reads candidate lists and writes finished rankings.
//
// Input is either a plain text file with one name per line or a YAML file
// (.yaml/.yml) holding a list of names, optionally under a "candidates" key.
// Output is the classic plain text ranking or, for .md targets, Markdown.
package candidates
