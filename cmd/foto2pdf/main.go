// Command foto2pdf straightens and crops a directory of scanned photos so they
// can be assembled into an A4 PDF.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is not an error.
	_ = godotenv.Load()
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}
