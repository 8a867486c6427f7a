// Package folderscan walks mod folders on disk and reports their contents in
// the form consumed by the signal collector.
//
// Scan lists one folder's subfolders, files and INI files down to a fixed
// depth. Discover lists the candidate mod folders directly beneath a library
// directory. Both skip paths matching the configured doublestar exclude
// patterns (for example "**/.git" or "**/DISABLED*").
package folderscan
