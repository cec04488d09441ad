// cmd/client/main.go
//
// Command-line client for a running simulation server:
//
//	vesselsim-client -server http://localhost:4590 list
//	vesselsim-client register -id sv-nova -x 10 -y 20 -heading 45 -speed 12
//	vesselsim-client target -id sv-nova -x 500 -y 500
//	vesselsim-client summary
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/opd-ai/go-vesselsim/pkg/config"
	"github.com/opd-ai/go-vesselsim/pkg/network"
)

func main() {
	serverURL := flag.String("server", "", "Server base URL (default http://<VESSELSIM_SERVER_ADDR>:<VESSELSIM_SERVER_PORT>)")
	flag.Parse()

	envConfig, err := config.LoadConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to load environment configuration: %v", err)
	}
	if *serverURL == "" {
		*serverURL = fmt.Sprintf("http://%s:%d", envConfig.ServerAddr, envConfig.ServerPort)
	}

	client := network.NewClient(*serverURL, envConfig)
	ctx := context.Background()

	args := flag.Args()
	if len(args) == 0 {
		usage()
	}

	switch args[0] {
	case "list":
		runList(ctx, client)
	case "register":
		runRegister(ctx, client, args[1:])
	case "target":
		runTarget(ctx, client, args[1:])
	case "summary":
		runSummary(ctx, client)
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: vesselsim-client [-server URL] <list|register|target|summary> [options]")
	os.Exit(2)
}

func runList(ctx context.Context, client *network.Client) {
	states, err := client.ListVessels(ctx)
	if err != nil {
		log.Fatalf("Failed to list vessels: %v", err)
	}
	printJSON(states)
}

func runRegister(ctx context.Context, client *network.Client, args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	id := fs.String("id", "", "Vessel identifier (generated when empty)")
	x := fs.Float64("x", 0, "Starting X coordinate")
	y := fs.Float64("y", 0, "Starting Y coordinate")
	heading := fs.Float64("heading", 0, "Initial heading in degrees")
	speed := fs.Float64("speed", 0, "Speed in units per second")
	targetX := fs.Float64("tx", 0, "Initial target X coordinate")
	targetY := fs.Float64("ty", 0, "Initial target Y coordinate")
	fs.Parse(args)

	req := network.RegisterVesselRequest{
		ID: *id, X: *x, Y: *y, Heading: *heading, Speed: *speed,
	}
	if hasFlag(fs, "tx") || hasFlag(fs, "ty") {
		req.TargetX = targetX
		req.TargetY = targetY
	}

	state, err := client.RegisterVessel(ctx, req)
	if err != nil {
		log.Fatalf("Failed to register vessel: %v", err)
	}
	printJSON(state)
}

func runTarget(ctx context.Context, client *network.Client, args []string) {
	fs := flag.NewFlagSet("target", flag.ExitOnError)
	id := fs.String("id", "", "Vessel identifier")
	x := fs.Float64("x", 0, "Target X coordinate")
	y := fs.Float64("y", 0, "Target Y coordinate")
	fs.Parse(args)

	if *id == "" {
		log.Fatal("target requires -id")
	}

	if err := client.SetTarget(ctx, *id, *x, *y); err != nil {
		if errors.Is(err, network.ErrVesselNotFound) {
			log.Fatalf("No vessel registered as %q", *id)
		}
		log.Fatalf("Failed to set target: %v", err)
	}
	fmt.Printf("Target of %s set to (%g, %g)\n", *id, *x, *y)
}

func runSummary(ctx context.Context, client *network.Client) {
	summary, err := client.FleetSummary(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch fleet summary: %v", err)
	}
	printJSON(summary)
}

func hasFlag(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode output: %v", err)
	}
	fmt.Println(string(out))
}
