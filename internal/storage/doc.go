// Package storage provides read access to the destination table and its hit counters.
//
// The package supports multiple kinds of storage:
// 1. StorageDB - a relational store reached through prepared statements. PostgreSQL
// (pgx), local SQLite (modernc) and Turso/libSQL are selected from the DSN.
// 2. StorageMemory - an in-process table for tests and local runs.
//
// Destinations are created and edited by the admin panel; this package only
// lists the active ones and increments hit counts. InsertTarget exists for seeding.
package storage
