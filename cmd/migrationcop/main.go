// Command migrationcop lints and autocorrects Rails migrations.
package main

import "github.com/aqasim81/migrationcop/internal/cli"

func main() {
	cli.Execute()
}
