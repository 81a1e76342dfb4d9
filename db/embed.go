// Package db holds the embedded schema migrations applied at startup.
package db

import "embed"

// Migrations contains the DDL files, applied in lexical filename order.
//
//go:embed migrations/*.sql
var Migrations embed.FS
