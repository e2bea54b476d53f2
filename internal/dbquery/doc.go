// Package dbquery executes read-only SQL queries against local SQLite databases.
package dbquery
