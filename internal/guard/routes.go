package guard

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dashgate-dev/dashgate/internal/authpolicy"
)

// Route is one entry of the navigation table.
type Route struct {
	Path         string `yaml:"path"`
	Name         string `yaml:"name"`
	Kind         string `yaml:"kind"` // "view" (default), "login" or "error"
	RequiresAuth bool   `yaml:"requiresAuth"`
}

type routesFile struct {
	// DefaultRequiresAuth applies to paths absent from the table.
	DefaultRequiresAuth bool    `yaml:"defaultRequiresAuth"`
	HomePath            string  `yaml:"homePath"`
	Routes              []Route `yaml:"routes"`
}

// RouteTable resolves request paths to navigation targets using the
// routing metadata declared in a YAML file.
type RouteTable struct {
	defaultRequiresAuth bool
	homePath            string
	loginPath           string
	errorPath           string
	targets             map[string]authpolicy.Target
}

// LoadRoutes reads and validates a route table file.
func LoadRoutes(path string) (*RouteTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read route table: %w", err)
	}
	return ParseRoutes(data)
}

// ParseRoutes builds a route table from YAML content.
func ParseRoutes(data []byte) (*RouteTable, error) {
	var file routesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse route table: %w", err)
	}

	table := &RouteTable{
		defaultRequiresAuth: file.DefaultRequiresAuth,
		homePath:            file.HomePath,
		targets:             make(map[string]authpolicy.Target, len(file.Routes)),
	}
	if table.homePath == "" {
		table.homePath = "/"
	}

	for _, route := range file.Routes {
		if route.Path == "" {
			return nil, fmt.Errorf("route %q has no path", route.Name)
		}
		if _, exists := table.targets[route.Path]; exists {
			return nil, fmt.Errorf("duplicate route path %q", route.Path)
		}

		var kind authpolicy.Kind
		switch route.Kind {
		case "", "view":
			kind = authpolicy.KindView
		case "login":
			kind = authpolicy.KindLogin
			table.loginPath = route.Path
		case "error":
			kind = authpolicy.KindError
			table.errorPath = route.Path
		default:
			return nil, fmt.Errorf("route %q has unknown kind %q", route.Path, route.Kind)
		}

		name := route.Name
		if name == "" {
			name = route.Path
		}
		table.targets[route.Path] = authpolicy.Target{
			Route:        name,
			Kind:         kind,
			RequiresAuth: route.RequiresAuth,
		}
	}

	if table.loginPath == "" {
		return nil, fmt.Errorf("route table declares no login route")
	}

	return table, nil
}

// DefaultTable is the route table used when no file is configured:
// a guarded root view plus conventional login and error pages.
func DefaultTable() *RouteTable {
	table, err := ParseRoutes([]byte(defaultRoutesYAML))
	if err != nil {
		// The built-in table is a constant; failing to parse it is a bug.
		panic(err)
	}
	return table
}

const defaultRoutesYAML = `
defaultRequiresAuth: true
homePath: /
routes:
  - path: /
    name: overview
    requiresAuth: true
  - path: /login
    name: login
    kind: login
  - path: /error
    name: error
    kind: error
`

// Resolve maps a request path to its navigation target. Paths absent
// from the table fall back to the configured default.
func (t *RouteTable) Resolve(path string) authpolicy.Target {
	if target, ok := t.targets[path]; ok {
		return target
	}
	return authpolicy.Target{
		Route:        path,
		Kind:         authpolicy.KindView,
		RequiresAuth: t.defaultRequiresAuth,
	}
}

// HomePath is the redirect destination for RedirectToHome decisions.
func (t *RouteTable) HomePath() string { return t.homePath }

// LoginPath is the redirect destination for RedirectToLogin decisions.
func (t *RouteTable) LoginPath() string { return t.loginPath }

// ErrorPath is the declared error page path, or "" when absent.
func (t *RouteTable) ErrorPath() string { return t.errorPath }
