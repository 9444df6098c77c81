package service

import (
	"podmanager/internal/domain"
	"podmanager/internal/topology"
)

var contextKinds = map[topology.ContextType]domain.Kind{
	topology.Pod:               domain.KindPod,
	topology.Rack:              domain.KindRack,
	topology.Drawer:            domain.KindDrawer,
	topology.ComputeModule:     domain.KindComputeModule,
	topology.FabricModule:      domain.KindFabricModule,
	topology.Blade:             domain.KindBlade,
	topology.Processor:         domain.KindProcessor,
	topology.Memory:            domain.KindMemory,
	topology.StorageController: domain.KindStorageController,
	topology.Drive:             domain.KindDrive,
	topology.NetworkInterface:  domain.KindNetworkInterface,
	topology.Switch:            domain.KindSwitch,
	topology.SwitchPort:        domain.KindSwitchPort,
	topology.VLAN:              domain.KindVlanNetworkInterface,
	topology.Manager:           domain.KindManager,
	topology.ComposedNode:      domain.KindComposedNode,
	topology.StorageService:    domain.KindStorageService,
	topology.PhysicalDrive:     domain.KindPhysicalDrive,
	topology.LogicalDrive:      domain.KindLogicalDrive,
	topology.RemoteTarget:      domain.KindRemoteTarget,
}

// KindOf returns the domain kind stored for objects addressed by t
func KindOf(t topology.ContextType) (domain.Kind, bool) {
	k, ok := contextKinds[t]
	return k, ok
}

// ContextTypeOf returns the context type addressing objects of kind k
func ContextTypeOf(k domain.Kind) (topology.ContextType, bool) {
	for t, kind := range contextKinds {
		if kind == k {
			return t, true
		}
	}
	return "", false
}
