package domain

// Health is the reported health of an asset
type Health string

const (
	HealthOK       Health = "OK"
	HealthWarning  Health = "Warning"
	HealthCritical Health = "Critical"
)

// State is the reported operational state of an asset
type State string

const (
	StateEnabled            State = "Enabled"
	StateDisabled           State = "Disabled"
	StateOffline            State = "Offline"
	StateInTest             State = "InTest"
	StateStarting           State = "Starting"
	StateAbsent             State = "Absent"
	StateStandbyOffline     State = "StandbyOffline"
	StateUnavailableOffline State = "UnavailableOffline"
)

// PowerState is the power status of a system
type PowerState string

const (
	PowerOn  PowerState = "On"
	PowerOff PowerState = "Off"
)

// ManagerType classifies management controllers
type ManagerType string

const (
	ManagerTypeManagementController ManagerType = "ManagementController"
	ManagerTypeEnclosureManager     ManagerType = "EnclosureManager"
	ManagerTypeBMC                  ManagerType = "BMC"
	ManagerTypeRackManager          ManagerType = "RackManager"
	ManagerTypeAuxiliaryController  ManagerType = "AuxiliaryController"
)

// ServiceType identifies the flavour of a discovered management service
type ServiceType string

const (
	// ServiceTypePSME is a compute/network pooled system management engine
	ServiceTypePSME ServiceType = "psme"
	// ServiceTypeRSS is a storage services endpoint
	ServiceTypeRSS ServiceType = "rss"
)

// ParseServiceType parses a service type string, defaulting to psme
func ParseServiceType(s string) ServiceType {
	switch ServiceType(s) {
	case ServiceTypeRSS:
		return ServiceTypeRSS
	default:
		return ServiceTypePSME
	}
}
