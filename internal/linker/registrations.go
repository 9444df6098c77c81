package linker

import (
	"context"

	"podmanager/internal/domain"
)

// Relation returns an ApplyFunc that links source to target under label
func Relation(label string) ApplyFunc {
	return func(ctx context.Context, source, target *domain.Object) error {
		return source.Link(ctx, label, target)
	}
}

func contains(source, target domain.Kind, name string) Registration {
	return Registration{Source: source, Target: target, Name: name, Apply: Relation(domain.Contains)}
}

func managedBy(source domain.Kind) Registration {
	return Registration{Source: source, Target: domain.KindManager, Name: "managedBy", Apply: Relation(domain.ManagedBy)}
}

func uses(source, target domain.Kind, name string) Registration {
	return Registration{Source: source, Target: target, Name: name, Apply: Relation(domain.Uses)}
}

// DefaultRegistrations returns the links the pod manager understands
func DefaultRegistrations() []Registration {
	return []Registration{
		contains(domain.KindStorageServiceCollection, domain.KindStorageService, "contains"),
		contains(domain.KindManagerCollection, domain.KindManager, "contains"),

		// storage services
		contains(domain.KindStorageService, domain.KindPhysicalDrive, "drives"),
		contains(domain.KindStorageService, domain.KindLogicalDrive, "logicalDrives"),
		contains(domain.KindStorageService, domain.KindRemoteTarget, "targets"),
		managedBy(domain.KindStorageService),
		uses(domain.KindLogicalDrive, domain.KindPhysicalDrive, "physicalDrives"),
		{Source: domain.KindLogicalDrive, Target: domain.KindLogicalDrive, Name: "masterDrive", Apply: Relation(domain.MasteredBy)},
		uses(domain.KindLogicalDrive, domain.KindLogicalDrive, "logicalDrives"),
		managedBy(domain.KindLogicalDrive),
		managedBy(domain.KindRemoteTarget),
		uses(domain.KindRemoteTarget, domain.KindLogicalDrive, "logicalDrives"),

		// managers
		contains(domain.KindManager, domain.KindNetworkService, "networkService"),
		contains(domain.KindManager, domain.KindNetworkInterface, "simpleNetwork"),

		// chassis
		managedBy(domain.KindPod),
		contains(domain.KindRack, domain.KindDrawer, "contains"),
		contains(domain.KindDrawer, domain.KindComputeModule, "computeModules"),
		contains(domain.KindDrawer, domain.KindFabricModule, "fabricModules"),
		managedBy(domain.KindDrawer),
		contains(domain.KindComputeModule, domain.KindBlade, "blades"),
		managedBy(domain.KindComputeModule),
		contains(domain.KindFabricModule, domain.KindSwitch, "switches"),
		managedBy(domain.KindFabricModule),
		contains(domain.KindSwitchPort, domain.KindVlanNetworkInterface, "vlans"),

		// blades
		contains(domain.KindBlade, domain.KindProcessor, "processors"),
		contains(domain.KindBlade, domain.KindMemory, "memory"),
		contains(domain.KindBlade, domain.KindStorageController, "storageControllers"),
		contains(domain.KindBlade, domain.KindNetworkInterface, "simpleNetwork"),
		managedBy(domain.KindBlade),
		contains(domain.KindStorageController, domain.KindDrive, "drives"),

		// switches
		contains(domain.KindSwitch, domain.KindSwitchPort, "ports"),
		managedBy(domain.KindSwitch),
	}
}
