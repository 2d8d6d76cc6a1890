package target

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/reget/reget/internal/record"
)

// ErrBadConfig reports an unusable host-resolution configuration.
var ErrBadConfig = errors.New("bad host configuration")

// ErrUnmapped reports a record whose domain has no entry in the mapping.
var ErrUnmapped = errors.New("domain not mapped")

// Resolver decides, per record, whether the record is replayed and against
// which scheme://host. Exactly one of the two modes is active: a uniform
// scheme-and-host for every record, or a per-domain mapping.
type Resolver struct {
	uniform string
	mapping map[string]string
	ignore  []string
}

// NewUniform returns a resolver that addresses every record to the given
// scheme://host, regardless of the recorded domain.
func NewUniform(schemeAndHost string, ignore []string) (*Resolver, error) {
	if schemeAndHost == "" {
		return nil, fmt.Errorf("%w: empty scheme and host", ErrBadConfig)
	}
	return &Resolver{uniform: schemeAndHost, ignore: ignore}, nil
}

// NewMapping returns a resolver that addresses each record according to its
// recorded domain. Records without a domain are dropped.
func NewMapping(mapping map[string]string, ignore []string) (*Resolver, error) {
	if len(mapping) == 0 {
		return nil, fmt.Errorf("%w: empty domain mapping", ErrBadConfig)
	}
	return &Resolver{mapping: mapping, ignore: ignore}, nil
}

// LoadMapping reads a mapping file: a top-level JSON object from recorded
// domain name to scheme://host.
func LoadMapping(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mapping file: %w", err)
	}
	var mapping map[string]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("%w: mapping file %s: %v", ErrBadConfig, path, err)
	}
	return mapping, nil
}

// Resolve returns the scheme://host the record's replay is addressed to.
// ok is false when the record is dropped: its domain is on the ignore list,
// or mapping mode is active and the record carries no domain.
func (r *Resolver) Resolve(rec record.AccessRecord) (schemeAndHost string, ok bool, err error) {
	// The ignore list is small; a linear scan is fine.
	for _, domain := range r.ignore {
		if rec.DomainName == domain {
			return "", false, nil
		}
	}

	if r.uniform != "" {
		return r.uniform, true, nil
	}

	if rec.DomainName == "" {
		return "", false, nil
	}
	host, found := r.mapping[rec.DomainName]
	if !found {
		return "", false, fmt.Errorf("%w: %q", ErrUnmapped, rec.DomainName)
	}
	return host, true, nil
}
