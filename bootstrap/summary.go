package bootstrap

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kbukum/errkit/config"
	"github.com/kbukum/errkit/observability"
)

// RouteInfo is an HTTP route listed in the summary.
type RouteInfo struct {
	Method string
	Path   string
}

// Summary prints a human-readable startup report.
type Summary struct {
	service *config.ServiceConfig
	out     io.Writer
	routes  []RouteInfo
}

// NewSummary creates a summary writing to out. A nil out means stdout.
func NewSummary(service *config.ServiceConfig, out io.Writer) *Summary {
	if out == nil {
		out = os.Stdout
	}
	return &Summary{service: service, out: out}
}

// TrackRoute records an HTTP route.
func (s *Summary) TrackRoute(method, path string) {
	s.routes = append(s.routes, RouteInfo{Method: method, Path: path})
}

// Display prints service details, components with their health, and routes.
func (s *Summary) Display(startup time.Duration, components []Component, health *observability.ServiceHealth) {
	w := s.out
	fmt.Fprintf(w, "\n%s %s (%s) started in %.2fs\n", s.service.Name, s.service.Version,
		s.service.Environment, startup.Seconds())
	if s.service.Debug {
		fmt.Fprintln(w, "   debug mode: raw error messages are exposed")
	}

	status := make(map[string]observability.Health, len(health.Components))
	for _, h := range health.Components {
		status[h.Name] = h
	}

	if len(components) > 0 {
		fmt.Fprintln(w, "\nComponents")
		for i, c := range components {
			icon, detail := "✓", ""
			if h, ok := status[c.Name()]; ok && h.Status != observability.HealthStatusUp {
				icon = "✗"
				if h.Message != "" {
					detail = " (" + h.Message + ")"
				}
			}
			fmt.Fprintf(w, "   %s %s %s%s\n", treePrefix(i, len(components)), icon, c.Name(), detail)
		}
	}

	if len(s.routes) > 0 {
		fmt.Fprintln(w, "\nRoutes")
		for i, r := range s.routes {
			fmt.Fprintf(w, "   %s %-6s %s\n", treePrefix(i, len(s.routes)), r.Method, r.Path)
		}
	}
	fmt.Fprintf(w, "\nHealth: %s\n\n", health.Status)
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}
