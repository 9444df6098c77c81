package service

import (
	"context"
	"fmt"

	"podmanager/internal/domain"
	"podmanager/internal/linker"
	"podmanager/internal/repository"
	"podmanager/internal/topology"
)

// PodManagerName names the manager representing this pod manager
const PodManagerName = "RSA Pod Manager"

// EnsurePodManager makes sure the pod at loc exists and is managed by the pod
// manager itself, which is listed among the managers. Repeated calls return
// the same objects.
func EnsurePodManager(ctx context.Context, store repository.Store, l *linker.Linker, loc topology.Location, id string) (podID, managerID domain.ID, err error) {
	err = store.InTx(ctx, func(s repository.Session) error {
		pod, err := linker.FindPod(ctx, s, loc)
		if err != nil {
			return err
		}

		mgr, err := s.GetSingleByProperty(ctx, domain.KindManager, domain.PropName, PodManagerName)
		if err != nil {
			return fmt.Errorf("failed to find pod manager: %w", err)
		}
		if mgr == nil {
			if mgr, err = s.Create(ctx, domain.KindManager); err != nil {
				return fmt.Errorf("failed to create pod manager: %w", err)
			}
			domain.Set(mgr, domain.PropName, PodManagerName)
		}
		domain.Set(mgr, domain.PropManagerType, domain.ManagerTypeManagementController)
		domain.Set(mgr, domain.PropState, domain.StateEnabled)
		domain.Set(mgr, domain.PropHealth, domain.HealthOK)
		if id != "" {
			domain.Set(mgr, domain.PropUUID, id)
		}

		if err := l.Link(ctx, pod, mgr, "managedBy"); err != nil {
			return err
		}
		if err := l.LinkToDomainModel(ctx, s, mgr); err != nil {
			return err
		}
		podID, managerID = pod.ID(), mgr.ID()
		return nil
	})
	return podID, managerID, err
}
