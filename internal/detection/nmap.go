package detection

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"

	"podmanager/internal/discovery"
	"podmanager/internal/domain"
)

// NmapDetector scans subnets for open management ports
type NmapDetector struct {
	targets           []string
	psmePort          int
	rssPort           int
	timeout           time.Duration
	skipHostDiscovery bool
	logger            *slog.Logger
}

// NmapOption configures an NmapDetector
type NmapOption func(*NmapDetector)

// WithPorts sets the compute and storage service ports scanned
func WithPorts(psme, rss int) NmapOption {
	return func(n *NmapDetector) {
		n.psmePort = psme
		n.rssPort = rss
	}
}

// WithScanTimeout bounds one scan of all targets
func WithScanTimeout(d time.Duration) NmapOption {
	return func(n *NmapDetector) {
		n.timeout = d
	}
}

// WithSkipHostDiscovery treats every target as up
func WithSkipHostDiscovery(skip bool) NmapOption {
	return func(n *NmapDetector) {
		n.skipHostDiscovery = skip
	}
}

// WithNmapLogger sets the logger
func WithNmapLogger(l *slog.Logger) NmapOption {
	return func(n *NmapDetector) {
		n.logger = l
	}
}

// NewNmapDetector creates a detector scanning targets (CIDR ranges or addresses)
func NewNmapDetector(targets []string, opts ...NmapOption) *NmapDetector {
	n := &NmapDetector{
		targets:  targets,
		psmePort: DefaultPSMEPort,
		rssPort:  DefaultRSSPort,
		timeout:  10 * time.Minute,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = n.logger.With("detector", "nmap")
	return n
}

func (n *NmapDetector) Name() string {
	return "nmap"
}

// portRange returns the nmap port list of the scanned ports
func (n *NmapDetector) portRange() string {
	ports := []string{strconv.Itoa(n.psmePort)}
	if n.rssPort != n.psmePort {
		ports = append(ports, strconv.Itoa(n.rssPort))
	}
	return strings.Join(ports, ",")
}

// Detect runs one scan of every target
func (n *NmapDetector) Detect(ctx context.Context) ([]discovery.Endpoint, error) {
	if len(n.targets) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	opts := []nmap.Option{
		nmap.WithTargets(n.targets...),
		nmap.WithPorts(n.portRange()),
	}
	if n.skipHostDiscovery {
		opts = append(opts, nmap.WithSkipHostDiscovery())
	}

	scanner, err := nmap.NewScanner(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scanner: %w", err)
	}

	n.logger.Debug("scanning", "targets", n.targets, "ports", n.portRange())
	result, warnings, err := scanner.Run()
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	if warnings != nil && len(*warnings) > 0 {
		n.logger.Warn("scan warnings", "warnings", *warnings)
	}
	return n.endpoints(result), nil
}

// endpoints converts scan results to endpoints, one per open scanned port of
// each host that is up
func (n *NmapDetector) endpoints(result *nmap.Run) []discovery.Endpoint {
	if result == nil {
		return nil
	}

	var eps []discovery.Endpoint
	for _, host := range result.Hosts {
		if host.Status.State != "up" || len(host.Addresses) == 0 {
			continue
		}
		ip := hostIP(host)

		for _, port := range host.Ports {
			if port.State.State != "open" {
				continue
			}
			switch int(port.ID) {
			case n.psmePort:
				eps = append(eps, discovery.Endpoint{URI: serviceURL(ip, n.psmePort), Type: domain.ServiceTypePSME})
			case n.rssPort:
				eps = append(eps, discovery.Endpoint{URI: serviceURL(ip, n.rssPort), Type: domain.ServiceTypeRSS})
			}
		}
	}
	return eps
}

// hostIP returns the first IPv4 address of host, or its first address when it has none
func hostIP(host nmap.Host) string {
	for _, addr := range host.Addresses {
		if addr.AddrType == "ipv4" {
			return addr.Addr
		}
	}
	return host.Addresses[0].Addr
}
