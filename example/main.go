// Command example drives a tiny pkspawn.Supervisor against a one-line shell
// script, printing every stdout line it streams back and the final exit
// classification.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"

	"pkt.systems/pkspawn"
)

func main() {
	log := zerolog.New(colorable.NewColorableStdout()).With().Timestamp().Logger()

	sv := pkspawn.NewSupervisor(
		pkspawn.WithLogger(log),
		pkspawn.WithPriority(pkspawn.EnvPriorityProvider{}),
	)
	defer sv.Close()

	if !sv.Run([]string{"/bin/sh", "-c", "echo hello; echo world"}, nil) {
		log.Error().Msg("failed to launch backend")
		os.Exit(1)
	}

	// Stdout and Exit are never closed (a Supervisor may launch many
	// children over its lifetime), so read both concurrently until the
	// terminal event arrives rather than ranging over Stdout to completion.
	stdout := sv.Stdout()
	exit := sv.Exit()
	var class pkspawn.ExitClass
loop:
	for {
		select {
		case line := <-stdout:
			fmt.Println(line)
		case class = <-exit:
			break loop
		}
	}
	// The terminal event may win its select race against already-buffered
	// stdout lines, so flush whatever is left before reporting it.
	for {
		select {
		case line := <-stdout:
			fmt.Println(line)
		default:
			fmt.Println("exit class:", class)
			return
		}
	}
}
