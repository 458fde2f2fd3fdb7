// hash-password generates the bcrypt hash for ADMIN_PASS_HASH.
//
// Usage (from backend directory):
//   go run ./cmd/hash-password 'the-admin-password'
//
// Put the printed hash in the ADMIN_PASS_HASH env var so the plain
// ADMIN_PASS fallback can be removed from deployments.
package main

import (
	"fmt"
	"os"

	"github.com/odouglasrocha/apiplano/utils"
)

func main() {
	if len(os.Args) != 2 || os.Args[1] == "" {
		fmt.Fprintln(os.Stderr, "usage: hash-password <password>")
		os.Exit(2)
	}

	hash, err := utils.HashPassword(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "bcrypt failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(hash))
}
