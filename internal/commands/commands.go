package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/nocwatch/herald/internal/stats"
	"github.com/nocwatch/herald/pkg/sources"
)

// Invocation carries one parsed command line.
type Invocation struct {
	Command string
	Args    []string
	Sender  string
	Target  string
	Direct  bool
}

// Handler produces the reply lines for an invocation. An empty result means
// no reply is sent.
type Handler func(inv Invocation) []string

// Command couples a handler with its dispatch metadata.
type Command struct {
	Name       string
	Help       string
	DirectOnly bool
	Run        Handler
}

// Status reports process uptime and the announced-item count.
func Status(st *stats.Stats) Command {
	return Command{
		Name: "status",
		Help: "uptime and number of items announced",
		Run: func(Invocation) []string {
			return []string{fmt.Sprintf("up %s, %d items announced",
				st.Uptime().Truncate(time.Second), st.Announced())}
		},
	}
}

// Sources lists the watched sources.
func Sources(reg *sources.Registry) Command {
	return Command{
		Name: "sources",
		Help: "list watched status feeds",
		Run: func(Invocation) []string {
			all := reg.All()
			lines := make([]string, 0, len(all)+1)
			lines = append(lines, fmt.Sprintf("watching %d sources:", len(all)))
			for _, s := range all {
				lines = append(lines, fmt.Sprintf("%s: %s (%s)", s.Descriptor.ID, s.Descriptor.Name, s.Descriptor.URL))
			}
			return lines
		},
	}
}

// Help lists the registered command names.
func Help(d *Dispatcher) Command {
	return Command{
		Name: "help",
		Help: "list available commands",
		Run: func(Invocation) []string {
			return []string{"commands: " + strings.Join(d.Names(), ", ")}
		},
	}
}
