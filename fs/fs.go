// Package appfs embeds the files the app needs at runtime.
package appfs

import "embed"

// FS holds the SQL migrations, the email templates and the common passwords list.
//go:embed migrations/*.sql templates/email/* common-passwords.txt.gz
var FS embed.FS

const (
	MigrationsDir       = "migrations"
	EmailTemplatesDir   = "templates/email"
	CommonPasswordsPath = "common-passwords.txt.gz"
)
