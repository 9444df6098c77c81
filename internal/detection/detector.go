// Package detection finds management service endpoints and feeds them to
// discovery.
//
// Detectors produce endpoint candidates from a service list file, a DHCP
// leases file or an nmap scan. The Registry polls them, discovers candidates
// it has not seen, and retries failed ones a bounded number of times.
package detection

import (
	"context"
	"net"
	"net/url"
	"strconv"

	"podmanager/internal/discovery"
)

// Detector produces endpoint candidates
type Detector interface {
	// Name returns the unique identifier of the detector
	Name() string
	// Detect returns the candidates currently visible to the detector
	Detect(ctx context.Context) ([]discovery.Endpoint, error)
}

// Static is a fixed list of endpoints
type Static []discovery.Endpoint

func (s Static) Name() string {
	return "static"
}

func (s Static) Detect(context.Context) ([]discovery.Endpoint, error) {
	out := make([]discovery.Endpoint, len(s))
	copy(out, s)
	return out, nil
}

// validURL reports whether raw is an absolute http(s) URL with a host
func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// serviceURL renders the REST root of a service on ip:port
func serviceURL(ip string, port int) string {
	u := url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(ip, strconv.Itoa(port)),
		Path:   "/rest/v1",
	}
	return u.String()
}
