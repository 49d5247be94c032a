// Package persistence stores device schema documents on disk.
//
// Downloading the schema takes hundreds of exchanges. A SchemaStore keeps
// one JSON file per device serial so later sessions can skip the download.
package persistence
