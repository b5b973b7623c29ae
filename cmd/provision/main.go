// Package main is the provisioning CLI: it invites users, resets accounts
// back to the invited state and migrates the users table.
package main

import (
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
