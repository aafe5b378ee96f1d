// Command bolola-migrate copies every bolola collection from one MongoDB
// database into another, replacing the target's contents. It runs the same
// migration as POST /migrate-db without going through the API.
//
// Usage:
//
//	bolola-migrate --source-uri mongodb://prod --source-db bolola-production \
//	    --target-uri mongodb://staging --target-db bolola-staging --yes
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
