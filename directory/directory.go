// Package directory resolves human-readable payout handles to ledger
// identities using DNS.
//
// A payout handle has the form "alias@domain". The identity is published as a
// TXT record at "{alias}._payto.{domain}" whose value carries the "payto="
// prefix followed by either a base58check address or 40 hex characters of
// hash-160. Payout service endpoints are published as "_payto._tcp.{domain}"
// SRV records.
//
// Resolution is a caller-side convenience: the distributor core only ever
// sees resolved identities and never performs name lookups itself.
package directory

import (
	"encoding/hex"
	"fmt"
	"net"
	"sort"
	"strings"

	"github.com/fanoutorg/libfanout-go/access"
)

// Resolver defines the interface for DNS lookups.
// This allows tests to mock DNS resolution.
type Resolver interface {
	// LookupSRV looks up SRV records for the given service, proto, and name.
	LookupSRV(service, proto, name string) (string, []*net.SRV, error)

	// LookupTXT looks up TXT records for the given name.
	LookupTXT(name string) ([]string, error)
}

// defaultResolver wraps the standard net package DNS functions.
type defaultResolver struct{}

func (defaultResolver) LookupSRV(service, proto, name string) (string, []*net.SRV, error) {
	return net.LookupSRV(service, proto, name)
}

func (defaultResolver) LookupTXT(name string) ([]string, error) {
	return net.LookupTXT(name)
}

// DefaultResolver is the production DNS resolver using the net package.
var DefaultResolver Resolver = defaultResolver{}

const (
	// srvService is the SRV service label for payout endpoints.
	srvService = "payto"

	// txtPrefix marks identity-bearing TXT records.
	txtPrefix = "payto="
)

// Resolve resolves a payout handle to a ledger identity using the default
// resolver.
func Resolve(handle string) (access.Identity, error) {
	return ResolveWithResolver(handle, DefaultResolver)
}

// ResolveWithResolver resolves a payout handle using the provided resolver.
//
// It looks up "{alias}._payto.{domain}" TXT records and decodes the first
// record carrying the "payto=" prefix. Both base58check addresses and
// hex-encoded hash-160 values are accepted.
func ResolveWithResolver(handle string, resolver Resolver) (access.Identity, error) {
	alias, domain, err := SplitHandle(handle)
	if err != nil {
		return access.Identity{}, err
	}

	name := alias + "._" + srvService + "." + domain
	txts, err := resolver.LookupTXT(name)
	if err != nil {
		return access.Identity{}, fmt.Errorf("%w: TXT lookup for %s: %w", ErrLookupFailed, name, err)
	}

	for _, txt := range txts {
		value, ok := strings.CutPrefix(strings.TrimSpace(txt), txtPrefix)
		if !ok {
			continue
		}
		id, err := parseIdentity(value)
		if err != nil {
			return access.Identity{}, fmt.Errorf("%w: record %q: %v", ErrInvalidRecord, txt, err)
		}
		return id, nil
	}

	return access.Identity{}, fmt.Errorf("%w: no %q TXT record at %s", ErrNoRecord, txtPrefix, name)
}

// Endpoints resolves payout service endpoints for a domain using the default
// resolver. Results are host:port strings sorted by priority then weight.
func Endpoints(domain string) ([]string, error) {
	return EndpointsWithResolver(domain, DefaultResolver)
}

// EndpointsWithResolver resolves payout service endpoints using the provided
// resolver.
func EndpointsWithResolver(domain string, resolver Resolver) ([]string, error) {
	if domain == "" {
		return nil, fmt.Errorf("%w: empty domain", ErrInvalidHandle)
	}

	_, addrs, err := resolver.LookupSRV(srvService, "tcp", domain)
	if err != nil {
		return nil, fmt.Errorf("%w: SRV lookup for _%s._tcp.%s: %w", ErrLookupFailed, srvService, domain, err)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("%w: no SRV records for _%s._tcp.%s", ErrNoRecord, srvService, domain)
	}

	// Sort by priority (ascending), then by weight (descending)
	sort.Slice(addrs, func(i, j int) bool {
		if addrs[i].Priority != addrs[j].Priority {
			return addrs[i].Priority < addrs[j].Priority
		}
		return addrs[i].Weight > addrs[j].Weight
	})

	endpoints := make([]string, len(addrs))
	for i, srv := range addrs {
		host := strings.TrimSuffix(srv.Target, ".")
		endpoints[i] = fmt.Sprintf("%s:%d", host, srv.Port)
	}
	return endpoints, nil
}

// SplitHandle splits "alias@domain" into its parts.
func SplitHandle(handle string) (alias, domain string, err error) {
	alias, domain, found := strings.Cut(handle, "@")
	if !found || alias == "" || domain == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidHandle, handle)
	}
	if strings.Contains(domain, "@") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidHandle, handle)
	}
	return alias, domain, nil
}

// parseIdentity decodes a TXT record value: 40 hex characters of hash-160 or
// a base58check address.
func parseIdentity(value string) (access.Identity, error) {
	if len(value) == access.IdentitySize*2 {
		raw, err := hex.DecodeString(value)
		if err == nil {
			var id access.Identity
			copy(id[:], raw)
			return id, nil
		}
	}
	return access.ParseAddress(value)
}
