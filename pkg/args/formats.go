// pkg/args/formats.go
package args

import (
	"fmt"
	"net"
	"regexp"
	"sync"
)

// FormatValidator checks a raw string value against a named format.
// It returns a human-readable reason on failure.
type FormatValidator func(value string) error

var (
	formatMu       sync.RWMutex
	formatRegistry = make(map[string]FormatValidator)
)

// RegisterFormat adds a named format validator. Registering an existing
// name overwrites it, so embedders can replace the built-in validators.
func RegisterFormat(name string, fn FormatValidator) {
	formatMu.Lock()
	defer formatMu.Unlock()
	formatRegistry[name] = fn
}

// LookupFormat returns the validator registered under name.
func LookupFormat(name string) (FormatValidator, bool) {
	formatMu.RLock()
	defer formatMu.RUnlock()
	fn, ok := formatRegistry[name]
	return fn, ok
}

var (
	awsRegionRe = regexp.MustCompile(`^[a-z]{2}(-gov)?-[a-z]+-\d$`)
	gcpZoneRe   = regexp.MustCompile(`^[a-z]+-[a-z]+\d-[a-z]$`)
)

func validateAWSRegion(value string) error {
	if !awsRegionRe.MatchString(value) {
		return fmt.Errorf("not a valid AWS region (e.g. us-east-1)")
	}
	return nil
}

func validateGCPZone(value string) error {
	if !gcpZoneRe.MatchString(value) {
		return fmt.Errorf("not a valid GCP zone (e.g. us-central1-f)")
	}
	return nil
}

func validateSubnet(value string) error {
	if _, _, err := net.ParseCIDR(value); err != nil {
		return fmt.Errorf("not a valid CIDR subnet (e.g. 10.0.0.0/24)")
	}
	return nil
}

func init() {
	RegisterFormat("aws_region", validateAWSRegion)
	RegisterFormat("gcp_zone", validateGCPZone)
	RegisterFormat("subnet", validateSubnet)
}
