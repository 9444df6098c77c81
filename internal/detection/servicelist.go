package detection

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"podmanager/internal/discovery"
	"podmanager/internal/domain"
)

// ServiceListDetector reads endpoints from a file with one URI per line,
// optionally followed by its service type ("psme" or "rss"). Blank lines and
// lines starting with # are ignored.
type ServiceListDetector struct {
	path   string
	logger *slog.Logger
}

// NewServiceListDetector creates a detector for the file at path
func NewServiceListDetector(path string, logger *slog.Logger) *ServiceListDetector {
	if logger == nil {
		logger = slog.Default()
	}
	return &ServiceListDetector{path: path, logger: logger.With("detector", "service_list")}
}

func (d *ServiceListDetector) Name() string {
	return "service_list"
}

// Path returns the file the detector reads
func (d *ServiceListDetector) Path() string {
	return d.path
}

// Detect reads the file. A missing file yields no endpoints.
func (d *ServiceListDetector) Detect(context.Context) ([]discovery.Endpoint, error) {
	f, err := os.Open(d.path)
	if errors.Is(err, os.ErrNotExist) {
		d.logger.Debug("service list not found", "path", d.path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open service list: %w", err)
	}
	defer f.Close()

	var eps []discovery.Endpoint
	scanner := bufio.NewScanner(f)
	for line := 1; scanner.Scan(); line++ {
		ep, ok := d.parseLine(scanner.Text(), line)
		if ok {
			eps = append(eps, ep)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read service list: %w", err)
	}
	return eps, nil
}

func (d *ServiceListDetector) parseLine(text string, line int) (discovery.Endpoint, bool) {
	text = strings.TrimSpace(text)
	if text == "" || strings.HasPrefix(text, "#") {
		return discovery.Endpoint{}, false
	}

	fields := strings.Fields(text)
	if !validURL(fields[0]) {
		d.logger.Warn("invalid service URI", "path", d.path, "line", line, "uri", fields[0])
		return discovery.Endpoint{}, false
	}

	ep := discovery.Endpoint{URI: fields[0], Type: domain.ServiceTypePSME}
	if len(fields) > 1 {
		switch t := domain.ServiceType(strings.ToLower(fields[1])); t {
		case domain.ServiceTypePSME, domain.ServiceTypeRSS:
			ep.Type = t
		default:
			d.logger.Warn("unknown service type", "path", d.path, "line", line, "type", fields[1])
			return discovery.Endpoint{}, false
		}
	}
	return ep, true
}
