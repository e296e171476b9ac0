package repositories

import "embed"

// Migrations holds the SQL schema migrations applied by the migrate command, in
// lexical file order.
//
//go:embed migrations/*.sql
var Migrations embed.FS
