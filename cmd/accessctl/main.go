// accessctl is the operator tool for the access layer: inspect the audit
// trail and probe the compiled-in rule table without standing up a server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/swifthaul/access"
	"github.com/swifthaul/access/stores"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "tail":
		handleTail()
	case "stats":
		handleStats()
	case "check":
		handleCheck()
	case "portals":
		handlePortals()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("accessctl - audit trail and rule inspection for the access layer")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  accessctl tail [-config file] [-n count]        - Show newest audit entries")
	fmt.Println("  accessctl stats [-config file]                  - Show audit trail statistics")
	fmt.Println("  accessctl check <roles> <action> <resource>     - Probe the rule table (roles comma-separated)")
	fmt.Println("  accessctl portals <roles>                       - Show accessible portals and default")
}

func loadStore(configPath string) (access.AuditStore, func() error) {
	cfg := access.DefaultConfig()
	if configPath != "" {
		loaded, err := access.LoadConfigFile(configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	store, closer, err := stores.OpenAuditStore(cfg)
	if err != nil {
		fmt.Printf("Error opening audit store: %v\n", err)
		os.Exit(1)
	}
	return store, closer
}

func handleTail() {
	fs := flag.NewFlagSet("tail", flag.ExitOnError)
	configPath := fs.String("config", "access.yaml", "config file")
	n := fs.Int("n", 20, "number of entries")
	_ = fs.Parse(os.Args[2:])

	store, closer := loadStore(*configPath)
	defer closer()

	entries, err := store.Recent(context.Background(), *n)
	if err != nil {
		fmt.Printf("Error reading audit trail: %v\n", err)
		os.Exit(1)
	}
	for _, e := range entries {
		outcome := "ALLOW"
		if !e.Success {
			outcome = "DENY"
		}
		fmt.Printf("%s  %-5s  actor=%s %s %s", e.Timestamp.Format("2006-01-02 15:04:05"), outcome, e.ActorID, e.Action, e.ResourceType)
		if e.ResourceID != "" {
			fmt.Printf("/%s", e.ResourceID)
		}
		if e.ErrorMessage != "" {
			fmt.Printf("  (%s)", e.ErrorMessage)
		}
		fmt.Println()
	}
}

func handleStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", "access.yaml", "config file")
	_ = fs.Parse(os.Args[2:])

	store, closer := loadStore(*configPath)
	defer closer()

	stats, err := store.Stats(context.Background())
	if err != nil {
		fmt.Printf("Error reading stats: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Total entries:    %d\n", stats.Total)
	fmt.Printf("Recent failures:  %d (last 24h)\n", stats.RecentFailures)
	fmt.Println("Top actions:")
	for action, count := range stats.TopActions {
		fmt.Printf("  %-8s %d\n", action, count)
	}
}

func handleCheck() {
	if len(os.Args) < 5 {
		fmt.Println("Usage: accessctl check <roles> <action> <resource>")
		os.Exit(1)
	}
	p := access.NewPrincipal("accessctl", parseRoles(os.Args[2]))
	action := access.Action(os.Args[3])
	resource := access.ResourceType(os.Args[4])

	if access.CanPerform(p, action, resource, nil) {
		fmt.Printf("ALLOW: roles=[%s] may %s %s\n", os.Args[2], action, resource)
	} else {
		fmt.Printf("DENY: roles=[%s] may not %s %s\n", os.Args[2], action, resource)
	}
}

func handlePortals() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: accessctl portals <roles>")
		os.Exit(1)
	}
	p := access.NewPrincipal("accessctl", parseRoles(os.Args[2]))
	portals, def := access.ResolvePortals(p)
	fmt.Printf("Accessible: %v\n", portals)
	fmt.Printf("Default:    %s\n", def)
}

func parseRoles(s string) []access.Role {
	parts := strings.Split(s, ",")
	roles := make([]access.Role, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			roles = append(roles, access.Role(part))
		}
	}
	return roles
}
