// Package assets embeds files shipped inside the server binary.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed sql/*.sql
var files embed.FS

// Migrations returns the SQL migration files rooted at their directory,
// so entries are named like "001_init.sql".
func Migrations() fs.FS {
	sub, err := fs.Sub(files, "sql")
	if err != nil {
		// the embed pattern guarantees the directory exists
		panic(err)
	}
	return sub
}
