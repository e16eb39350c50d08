// Package library persists the history of finished recordings and exports in
// SQLite.
//
// The Store manages the database connection, schema initialization and
// busy-retry behaviour; entries are append-only apart from explicit removal
// and clearing. Each entry records where the output landed, how long it is
// (ffprobe or the MP4 header), the encoder exit code and any error.
//
// Schema changes bump schemaVersion in schema.go and update schema.sql;
// users clear the database ("clipdeck library clear" or delete library.db)
// to adopt the new schema.
package library
