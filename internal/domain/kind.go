package domain

// Kind is the vertex type name of a domain object
type Kind string

const (
	KindPod                      Kind = "Pod"
	KindRack                     Kind = "Rack"
	KindDrawer                   Kind = "Drawer"
	KindComputeModule            Kind = "ComputeModule"
	KindFabricModule             Kind = "FabricModule"
	KindBlade                    Kind = "Blade"
	KindProcessor                Kind = "Processor"
	KindMemory                   Kind = "Memory"
	KindStorageController        Kind = "StorageController"
	KindDrive                    Kind = "Drive"
	KindNetworkInterface         Kind = "NetworkInterface"
	KindIPv4Address              Kind = "IPv4Address"
	KindIPv6Address              Kind = "IPv6Address"
	KindIPv6AddressPolicy        Kind = "IPv6AddressPolicy"
	KindNetworkService           Kind = "NetworkService"
	KindSwitch                   Kind = "Switch"
	KindSwitchPort               Kind = "SwitchPort"
	KindVlanNetworkInterface     Kind = "VlanNetworkInterface"
	KindManager                  Kind = "Manager"
	KindManagerCollection        Kind = "ManagerCollection"
	KindStorageService           Kind = "StorageService"
	KindStorageServiceCollection Kind = "StorageServiceCollection"
	KindPhysicalDrive            Kind = "PhysicalDrive"
	KindLogicalDrive             Kind = "LogicalDrive"
	KindRemoteTarget             Kind = "RemoteTarget"
	KindRemoteTargetIscsiAddress Kind = "RemoteTargetIscsiAddress"
	KindIscsiInitiator           Kind = "IscsiInitiator"
	KindComposedNode             Kind = "ComposedNode"
	KindExternalService          Kind = "ExternalService"
)

func (k Kind) String() string {
	return string(k)
}

// Relation labels used between objects
const (
	// Contains links a structural parent to its child
	Contains = "contains"
	// ManagedBy links an asset to its management controller
	ManagedBy = "managedBy"
	// Uses links a logical drive or target to the drives backing it
	Uses = "uses"
	// MasteredBy links a snapshot or clone to its master drive
	MasteredBy = "masteredBy"
	// DiscoveredBy links an asset to the service that reported it
	DiscoveredBy = "discoveredBy"
	// StaticAddresses links a network interface to its configured IPv6 addresses
	StaticAddresses = "staticAddresses"
)
