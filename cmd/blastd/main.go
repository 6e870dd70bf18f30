// Command blastd is the blast background daemon: it restores the profile
// snapshot, drains the activity outbox and keeps the local entity copy
// refreshed from the backend.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/wablast/blast/internal/daemon"
	"github.com/wablast/blast/internal/profile"
	"go.uber.org/fx"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	flag.Parse()

	// Optional .env next to the working directory, for local development.
	_ = godotenv.Load()

	profileName := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(profileName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	app := fx.New(
		daemon.Module(daemon.Params{ProfileName: profileName}),
	)

	app.Run()
}
