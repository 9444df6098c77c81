package domain

import "sync"

// Class is the schema declaration of a Kind
type Class struct {
	Kind       Kind
	Properties []Descriptor
}

// Property looks up a declared property by name
func (c Class) Property(name string) (Descriptor, bool) {
	for _, d := range c.Properties {
		if d.Name() == name {
			return d, true
		}
	}
	return nil, false
}

// Schema returns the property name to semantic type mapping of c
func (c Class) Schema() map[string]SemanticType {
	out := make(map[string]SemanticType, len(c.Properties))
	for _, d := range c.Properties {
		out[d.Name()] = d.Semantic()
	}
	return out
}

func props(groups ...[]Descriptor) []Descriptor {
	var out []Descriptor
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

var (
	statusProps = []Descriptor{PropState, PropHealth, PropHealthRollup}
	assetProps  = []Descriptor{PropName, PropDescription, PropManufacturer, PropModel, PropSerialNumber, PropPartNumber}
	chassisProp = []Descriptor{PropLocation, PropModified}
)

// Classes returns every domain class. The order is stable and is the order in
// which vertex types are synchronized.
func Classes() []Class {
	classes := []Class{
		{KindPod, props(assetProps, statusProps, chassisProp)},
		{KindRack, props(assetProps, statusProps, chassisProp, []Descriptor{PropAssetTag})},
		{KindDrawer, props(assetProps, statusProps, chassisProp, []Descriptor{PropAssetTag})},
		{KindComputeModule, props(assetProps, statusProps, chassisProp, []Descriptor{PropAssetTag})},
		{KindFabricModule, props(assetProps, statusProps, chassisProp)},
		{KindBlade, props(assetProps, statusProps, chassisProp, []Descriptor{
			PropAssetTag, PropPowerState, PropBiosVersion, PropSystemType, PropUUID,
		})},
		{KindProcessor, props(statusProps, []Descriptor{
			PropName, PropManufacturer, PropModel, PropSocket, PropProcessorType, PropArchitecture,
			PropInstructionSet, PropMaxSpeedMHz, PropTotalCores, PropTotalThreads,
		})},
		{KindMemory, props(statusProps, []Descriptor{
			PropName, PropManufacturer, PropSerialNumber, PropPartNumber, PropDimmDeviceType,
			PropCapacityMiB, PropSpeedMHz, PropDataWidthBits,
		})},
		{KindStorageController, props(assetProps, statusProps, []Descriptor{PropInterface, PropFirmware})},
		{KindDrive, props(assetProps, statusProps, []Descriptor{PropInterface, PropDriveType, PropCapacityGB, PropRPM})},
		{KindNetworkInterface, props(statusProps, []Descriptor{
			PropName, PropDescription, PropMACAddress, PropPermanentMACAddress, PropSpeedMbps,
			PropAutosense, PropFullDuplex, PropFrameSize, PropHostName, PropFQDN,
			PropIPv6DefaultGateway, PropMaxIPv6Static, PropNameServers, PropVLANEnable, PropVLANID,
			PropModified,
		})},
		{KindIPv4Address, []Descriptor{PropAddress, PropSubnetMask, PropAddressOrigin, PropGateway}},
		{KindIPv6Address, []Descriptor{PropAddress, PropPrefixLength, PropAddressOrigin, PropAddressState}},
		{KindIPv6AddressPolicy, []Descriptor{PropPrefix, PropPrecedence, PropLabel}},
		{KindNetworkService, props(statusProps, []Descriptor{PropName, PropDescription, PropHostName, PropFQDN})},
		{KindSwitch, props(assetProps, statusProps, []Descriptor{PropTechnology, PropFirmware, PropRole, PropModified})},
		{KindSwitchPort, props(statusProps, []Descriptor{
			PropName, PropPortID, PropLinkType, PropOperationalState, PropAdministrativeState,
			PropLinkSpeedGbps, PropNeighbourPort, PropPortClass, PropPortMode, PropPortType,
		})},
		{KindVlanNetworkInterface, props(statusProps, []Descriptor{
			PropName, PropDescription, PropVLANEnable, PropVLANID, PropTagged,
		})},
		{KindManager, props(statusProps, []Descriptor{
			PropName, PropDescription, PropManagerType, PropModel, PropFirmware, PropUUID, PropModified,
		})},
		{KindManagerCollection, []Descriptor{PropName}},
		{KindStorageService, props(statusProps, []Descriptor{PropName, PropDescription, PropModified})},
		{KindStorageServiceCollection, []Descriptor{PropName}},
		{KindPhysicalDrive, props(statusProps, []Descriptor{
			PropName, PropManufacturer, PropModel, PropSerialNumber, PropInterface, PropDriveType,
			PropCapacityGiB, PropRPM,
		})},
		{KindLogicalDrive, props(statusProps, []Descriptor{
			PropName, PropDriveType, PropMode, PropProtected, PropCapacityGiB, PropImage,
			PropBootable, PropSnapshot,
		})},
		{KindRemoteTarget, props(statusProps, []Descriptor{PropName, PropTargetType, PropModified})},
		{KindRemoteTargetIscsiAddress, []Descriptor{PropTargetIQN, PropTargetPortal, PropTargetPort, PropTargetLUN}},
		{KindIscsiInitiator, []Descriptor{PropInitiatorIQN}},
		{KindComposedNode, props(statusProps, []Descriptor{
			PropName, PropDescription, PropSystemType, PropPowerState, PropComposedState,
		})},
		{KindExternalService, []Descriptor{PropUUID, PropServiceURI, PropServiceType, PropLastSeen}},
	}

	// Objects reported by a service remember the resource they were mapped from
	for i := range classes {
		if Discoverable(classes[i].Kind) {
			classes[i].Properties = append(classes[i].Properties, PropSourceURI)
		}
	}
	return classes
}

// Discoverable reports whether objects of k are mapped from service resources
func Discoverable(k Kind) bool {
	switch k {
	case KindDrawer, KindComputeModule, KindFabricModule, KindBlade, KindProcessor,
		KindMemory, KindStorageController, KindDrive, KindNetworkInterface, KindNetworkService,
		KindSwitch, KindSwitchPort, KindVlanNetworkInterface, KindManager, KindStorageService,
		KindPhysicalDrive, KindLogicalDrive, KindRemoteTarget:
		return true
	}
	return false
}

var (
	classIndexOnce sync.Once
	classIndex     map[Kind]Class
)

// ClassOf returns the declared Class of k
func ClassOf(k Kind) (Class, bool) {
	classIndexOnce.Do(func() {
		classIndex = make(map[Kind]Class)
		for _, c := range Classes() {
			classIndex[c.Kind] = c
		}
	})
	c, ok := classIndex[k]
	return c, ok
}
