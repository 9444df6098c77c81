package mapper

import (
	"context"
	"time"

	"podmanager/internal/domain"
	"podmanager/internal/repository"
)

// NewRemoteTargetMapper maps iSCSI remote targets with loose matching, so the
// "iSCSI" wrapper objects of addresses and initiators are looked through.
func NewRemoteTargetMapper(now func() time.Time) *Mapper {
	return MustNew(domain.KindRemoteTarget).
		UseLooseMatching().
		DeclareNested(
			Nested{Field: "Addresses", Kind: domain.KindRemoteTargetIscsiAddress, Label: domain.Contains},
			Nested{Field: "Initiator", Kind: domain.KindIscsiInitiator, Label: domain.Contains},
		).
		RegisterProvider(domain.KindRemoteTargetIscsiAddress, BusinessKeyProvider(
			domain.PropTargetIQN, domain.PropTargetPortal, domain.PropTargetPort, domain.PropTargetLUN,
		)).
		RegisterProvider(domain.KindIscsiInitiator, BusinessKeyProvider(domain.PropInitiatorIQN)).
		SetNotAutomatedMapping(func(_ context.Context, _ repository.Session, _ map[string]any, target *domain.Object) error {
			domain.Set(target, domain.PropModified, now())
			return nil
		})
}

// NewBladeMapper maps blades. Inline processor, memory and storage controller
// collections are left to the linker, which attaches the separately crawled
// resources.
func NewBladeMapper() *Mapper {
	return MustNew(domain.KindBlade).
		DeclareNested(
			Nested{Field: "Processors", Kind: domain.KindProcessor, Label: domain.Contains},
			Nested{Field: "Memory", Kind: domain.KindMemory, Label: domain.Contains},
			Nested{Field: "StorageControllers", Kind: domain.KindStorageController, Label: domain.Contains},
		).
		SkipTargetMapping(domain.KindProcessor).
		SkipTargetMapping(domain.KindMemory).
		SkipTargetMapping(domain.KindStorageController)
}
