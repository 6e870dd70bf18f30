// Command blastctl manages contacts, labels and message blasts against
// the configured backend from the command line.
package main

import (
	"log"

	"github.com/wablast/blast/internal/commands"
)

func main() {
	if err := commands.New().Execute(); err != nil {
		log.Fatalf("error during command execution: %v", err)
	}
}
