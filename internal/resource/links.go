package resource

import (
	"slices"

	"podmanager/internal/domain"
)

// linkGroups are the link groups each resource kind declares, by link name.
// Groups outside this table, such as containedBy back references, carry no
// domain relation.
var linkGroups = map[domain.Kind][]string{
	domain.KindPod:               {"managedBy"},
	domain.KindDrawer:            {"computeModules", "fabricModules", "managedBy"},
	domain.KindComputeModule:     {"blades", "managedBy"},
	domain.KindFabricModule:      {"switches", "managedBy"},
	domain.KindBlade:             {"processors", "memory", "storageControllers", "simpleNetwork", "managedBy"},
	domain.KindStorageController: {"drives"},
	domain.KindSwitch:            {"ports", "managedBy"},
	domain.KindSwitchPort:        {"vlans"},
	domain.KindManager:           {"networkService", "simpleNetwork"},
	domain.KindStorageService:    {"drives", "logicalDrives", "targets", "managedBy"},
	domain.KindLogicalDrive:      {"physicalDrives", "masterDrive", "logicalDrives", "managedBy"},
	domain.KindRemoteTarget:      {"logicalDrives", "managedBy"},
}

// DeclaresLink reports whether resources of kind declare the link group name
func DeclaresLink(kind domain.Kind, name string) bool {
	return slices.Contains(linkGroups[kind], name)
}

// LinkGroups returns the declared link groups of kind
func LinkGroups(kind domain.Kind) []string {
	return slices.Clone(linkGroups[kind])
}
