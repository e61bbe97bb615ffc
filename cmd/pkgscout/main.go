package main

import "github.com/pkgscout/pkgscout/internal/cli"

func main() {
	cli.Execute()
}
