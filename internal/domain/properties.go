package domain

// Common asset properties
var (
	PropName         = StringProperty("Name")
	PropDescription  = StringProperty("Description")
	PropState        = EnumProperty[State]("State")
	PropHealth       = EnumProperty[Health]("Health")
	PropHealthRollup = EnumProperty[Health]("HealthRollup")
	PropManufacturer = StringProperty("Manufacturer")
	PropModel        = StringProperty("Model")
	PropSerialNumber = StringProperty("SerialNumber")
	PropPartNumber   = StringProperty("PartNumber")
	PropAssetTag     = StringProperty("AssetTag")
	PropLocation     = LocationProperty("Location")
	PropModified     = TimestampProperty("Modified")
	PropUUID         = StringProperty("UUID")
	PropFirmware     = StringProperty("FirmwareVersion")
	PropPowerState   = EnumProperty[PowerState]("PowerState")
)

// Compute properties
var (
	PropBiosVersion    = StringProperty("BiosVersion")
	PropSystemType     = StringProperty("SystemType")
	PropSocket         = StringProperty("Socket")
	PropProcessorType  = StringProperty("ProcessorType")
	PropArchitecture   = StringProperty("ProcessorArchitecture")
	PropInstructionSet = StringProperty("InstructionSet")
	PropMaxSpeedMHz    = IntProperty("MaxSpeedMHz")
	PropTotalCores     = IntProperty("TotalCores")
	PropTotalThreads   = IntProperty("TotalThreads")
	PropDimmDeviceType = StringProperty("DimmDeviceType")
	PropCapacityMiB    = IntProperty("CapacityMiB")
	PropSpeedMHz       = IntProperty("SpeedMHz")
	PropDataWidthBits  = IntProperty("DataWidthBits")
	PropInterface      = StringProperty("Interface")
	PropDriveType      = StringProperty("Type")
	PropCapacityGB     = DecimalProperty("CapacityGB")
	PropRPM            = IntProperty("RPM")
	PropComposedState  = StringProperty("ComposedNodeState")
)

// Network properties
var (
	PropMACAddress          = StringProperty("MACAddress")
	PropPermanentMACAddress = StringProperty("PermanentMACAddress")
	PropSpeedMbps           = IntProperty("SpeedMbps")
	PropAutosense           = BoolProperty("Autosense")
	PropFullDuplex          = BoolProperty("FullDuplex")
	PropFrameSize           = IntProperty("FrameSize")
	PropHostName            = StringProperty("HostName")
	PropFQDN                = StringProperty("FQDN")
	PropIPv6DefaultGateway  = StringProperty("IPv6DefaultGateway")
	PropMaxIPv6Static       = IntProperty("MaxIPv6StaticAddresses")
	PropNameServers         = StringsProperty("NameServers")
	PropVLANEnable          = BoolProperty("VLANEnable")
	PropVLANID              = IntProperty("VLANId")
	PropTagged              = BoolProperty("Tagged")
	PropAddress             = StringProperty("Address")
	PropSubnetMask          = StringProperty("SubnetMask")
	PropAddressOrigin       = StringProperty("AddressOrigin")
	PropGateway             = StringProperty("Gateway")
	PropPrefixLength        = IntProperty("PrefixLength")
	PropAddressState        = StringProperty("AddressState")
	PropPrefix              = StringProperty("Prefix")
	PropPrecedence          = IntProperty("Precedence")
	PropLabel               = IntProperty("Label")
	PropTechnology          = StringProperty("Technology")
	PropRole                = StringProperty("Role")
	PropPortID              = StringProperty("PortId")
	PropLinkType            = StringProperty("LinkType")
	PropOperationalState    = StringProperty("OperationalState")
	PropAdministrativeState = StringProperty("AdministrativeState")
	PropLinkSpeedGbps       = DecimalProperty("LinkSpeedGbps")
	PropNeighbourPort       = StringProperty("NeighbourPort")
	PropPortClass           = StringProperty("PortClass")
	PropPortMode            = StringProperty("PortMode")
	PropPortType            = StringProperty("PortType")
)

// Management and storage properties
var (
	PropManagerType  = EnumProperty[ManagerType]("ManagerType")
	PropCapacityGiB  = DecimalProperty("CapacityGiB")
	PropMode         = StringProperty("Mode")
	PropProtected    = BoolProperty("Protected")
	PropImage        = StringProperty("Image")
	PropBootable     = BoolProperty("Bootable")
	PropSnapshot     = BoolProperty("Snapshot")
	PropTargetType   = StringProperty("Type")
	PropTargetIQN    = StringProperty("TargetIQN")
	PropTargetPortal = StringProperty("TargetPortalIP")
	PropTargetPort   = IntProperty("TargetPortalPort")
	PropTargetLUN    = IntProperty("TargetLUN")
	PropInitiatorIQN = StringProperty("InitiatorIQN")
	PropServiceURI   = StringProperty("URI")
	PropServiceType  = EnumProperty[ServiceType]("ServiceType")
	PropLastSeen     = TimestampProperty("LastSeen")
	PropSourceURI    = StringProperty("SourceURI")
)
