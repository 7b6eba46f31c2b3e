// Package ingest turns uploaded contact spreadsheets into ordered rows.
//
// Three encodings are accepted: delimited text (CSV), Office Open XML
// workbooks (XLSX) and legacy BIFF workbooks (XLS). In every case the first
// row is the header and each following row becomes a mapping from header
// label to cell text. Column names are matched case-insensitively, and cell
// values are never converted to numbers so phone numbers keep their leading
// zeros.
//
// The package is a pure transform: it performs no I/O besides reading the
// supplied byte slice and does not log.
package ingest
