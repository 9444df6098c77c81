package detection

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"

	"podmanager/internal/discovery"
	"podmanager/internal/domain"
)

// Default ports of services announced in the leases file
const (
	DefaultPSMEPort = 8888
	DefaultRSSPort  = 7778
)

// LeasesDetector reads endpoints from a DHCP leases file whose lines are
//
//	<mac> <ip> <type> [<location>]
//
// Type "rsa-tc" is a compute service and "iscsi" a storage service.
type LeasesDetector struct {
	path     string
	psmePort int
	rssPort  int
	logger   *slog.Logger
}

// NewLeasesDetector creates a detector for the file at path. Zero ports use the defaults.
func NewLeasesDetector(path string, psmePort, rssPort int, logger *slog.Logger) *LeasesDetector {
	if psmePort == 0 {
		psmePort = DefaultPSMEPort
	}
	if rssPort == 0 {
		rssPort = DefaultRSSPort
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LeasesDetector{
		path:     path,
		psmePort: psmePort,
		rssPort:  rssPort,
		logger:   logger.With("detector", "leases"),
	}
}

func (d *LeasesDetector) Name() string {
	return "leases"
}

// Detect reads the leases file. A missing file yields no endpoints.
func (d *LeasesDetector) Detect(context.Context) ([]discovery.Endpoint, error) {
	f, err := os.Open(d.path)
	if errors.Is(err, os.ErrNotExist) {
		d.logger.Debug("leases file not found", "path", d.path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open leases file: %w", err)
	}
	defer f.Close()

	var eps []discovery.Endpoint
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		ip, kind := fields[1], strings.ToLower(fields[2])

		var ep discovery.Endpoint
		switch kind {
		case "rsa-tc":
			ep = discovery.Endpoint{URI: serviceURL(ip, d.psmePort), Type: domain.ServiceTypePSME}
		case "iscsi":
			ep = discovery.Endpoint{URI: serviceURL(ip, d.rssPort), Type: domain.ServiceTypeRSS}
		default:
			d.logger.Warn("skipping lease record", "record", scanner.Text())
			continue
		}
		if net.ParseIP(ip) == nil {
			d.logger.Warn("skipping lease record", "record", scanner.Text())
			continue
		}
		eps = append(eps, ep)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leases file: %w", err)
	}
	return eps, nil
}
