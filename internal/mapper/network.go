package mapper

import (
	"context"
	"strings"
	"time"

	"podmanager/internal/domain"
	"podmanager/internal/repository"
)

// NewNetworkInterfaceMapper maps Ethernet interfaces. Addresses and policies
// are children keyed by their address (or prefix, precedence and label);
// children a service stops reporting are unlinked. now stamps Modified.
func NewNetworkInterfaceMapper(now func() time.Time) *Mapper {
	m := MustNew(domain.KindNetworkInterface).
		DeclareNested(
			Nested{Field: "IPv4Addresses", Kind: domain.KindIPv4Address, Label: domain.Contains, Prune: true},
			Nested{Field: "IPv6Addresses", Kind: domain.KindIPv6Address, Label: domain.Contains, Prune: true},
			Nested{Field: "IPv6StaticAddresses", Kind: domain.KindIPv6Address, Label: domain.StaticAddresses, Prune: true},
			Nested{Field: "IPv6AddressPolicyTable", Kind: domain.KindIPv6AddressPolicy, Label: domain.Contains, Prune: true},
		).
		RegisterProvider(domain.KindIPv4Address, BusinessKeyProvider(domain.PropAddress)).
		RegisterProvider(domain.KindIPv6Address, BusinessKeyProvider(domain.PropAddress)).
		RegisterProvider(domain.KindIPv6AddressPolicy,
			BusinessKeyProvider(domain.PropPrefix, domain.PropPrecedence, domain.PropLabel))

	return m.SetNotAutomatedMapping(func(_ context.Context, _ repository.Session, _ map[string]any, target *domain.Object) error {
		if mac, ok := domain.Lookup(target, domain.PropMACAddress); ok {
			domain.Set(target, domain.PropMACAddress, strings.ToUpper(mac))
		}
		if mac, ok := domain.Lookup(target, domain.PropPermanentMACAddress); ok {
			domain.Set(target, domain.PropPermanentMACAddress, strings.ToUpper(mac))
		}
		domain.Set(target, domain.PropModified, now())
		return nil
	})
}
