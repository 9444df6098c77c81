package topology

// ContextType is a topology category
type ContextType string

const (
	Pod               ContextType = "POD"
	Rack              ContextType = "RACK"
	Drawer            ContextType = "DRAWER"
	ComputeModule     ContextType = "COMPUTE_MODULE"
	FabricModule      ContextType = "FABRIC_MODULE"
	Blade             ContextType = "BLADE"
	Processor         ContextType = "PROCESSOR"
	Memory            ContextType = "MEMORY"
	StorageController ContextType = "STORAGE_CONTROLLER"
	Drive             ContextType = "DRIVE"
	NetworkInterface  ContextType = "NETWORK_INTERFACE"
	Switch            ContextType = "SWITCH"
	SwitchPort        ContextType = "SWITCH_PORT"
	VLAN              ContextType = "VLAN"
	Manager           ContextType = "MANAGER"
	ComposedNode      ContextType = "COMPOSED_NODE"
	StorageService    ContextType = "STORAGE_SERVICE"
	PhysicalDrive     ContextType = "PHYSICAL_DRIVE"
	LogicalDrive      ContextType = "LOGICAL_DRIVE"
	RemoteTarget      ContextType = "REMOTE_TARGET"
)

type typeInfo struct {
	collection string
	parents    []ContextType
}

// An empty parent list marks a root type.
var types = map[ContextType]typeInfo{
	Pod:               {collection: "Pods"},
	Rack:              {collection: "Racks", parents: []ContextType{Pod}},
	Drawer:            {collection: "Drawers", parents: []ContextType{Rack}},
	ComputeModule:     {collection: "ComputeModules", parents: []ContextType{Drawer}},
	FabricModule:      {collection: "FabricModules", parents: []ContextType{Drawer}},
	Blade:             {collection: "Blades", parents: []ContextType{ComputeModule}},
	Processor:         {collection: "Processors", parents: []ContextType{Blade}},
	Memory:            {collection: "Memory", parents: []ContextType{Blade}},
	StorageController: {collection: "StorageControllers", parents: []ContextType{Blade}},
	Drive:             {collection: "Drives", parents: []ContextType{StorageController}},
	NetworkInterface:  {collection: "EthernetInterfaces", parents: []ContextType{Blade, Manager}},
	Switch:            {collection: "Switches", parents: []ContextType{FabricModule}},
	SwitchPort:        {collection: "Ports", parents: []ContextType{Switch}},
	VLAN:              {collection: "VLANs", parents: []ContextType{SwitchPort}},
	Manager:           {collection: "Managers"},
	ComposedNode:      {collection: "Systems"},
	StorageService:    {collection: "Services"},
	PhysicalDrive:     {collection: "Drives", parents: []ContextType{StorageService}},
	LogicalDrive:      {collection: "LogicalDrives", parents: []ContextType{StorageService}},
	RemoteTarget:      {collection: "Targets", parents: []ContextType{StorageService}},
}

// AllTypes returns every ContextType in declaration order
func AllTypes() []ContextType {
	return []ContextType{
		Pod, Rack, Drawer, ComputeModule, FabricModule, Blade, Processor, Memory,
		StorageController, Drive, NetworkInterface, Switch, SwitchPort, VLAN,
		Manager, ComposedNode, StorageService, PhysicalDrive, LogicalDrive, RemoteTarget,
	}
}

// Valid reports whether t is a known ContextType
func (t ContextType) Valid() bool {
	_, ok := types[t]
	return ok
}

// IsRoot reports whether t may only appear at the top of a Context chain
func (t ContextType) IsRoot() bool {
	info, ok := types[t]
	return ok && len(info.parents) == 0
}

// Parents returns the legal parent types of t
func (t ContextType) Parents() []ContextType {
	info := types[t]
	out := make([]ContextType, len(info.parents))
	copy(out, info.parents)
	return out
}

// CollectionName returns the path segment naming a collection of t
func (t ContextType) CollectionName() string {
	return types[t].collection
}

// AllowsParent reports whether parent is a legal parent type of t
func (t ContextType) AllowsParent(parent ContextType) bool {
	for _, p := range types[t].parents {
		if p == parent {
			return true
		}
	}
	return false
}

// ChildTypes returns the types that may nest directly under t
func (t ContextType) ChildTypes() []ContextType {
	var out []ContextType
	for _, candidate := range AllTypes() {
		if candidate.AllowsParent(t) {
			out = append(out, candidate)
		}
	}
	return out
}

func (t ContextType) String() string {
	return string(t)
}
