package linker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podmanager/internal/domain"
	"podmanager/internal/repository"
	"podmanager/internal/topology"
)

func mustLocation(t *testing.T, s string) topology.Location {
	t.Helper()
	loc, err := topology.ParseLocation(s)
	require.NoError(t, err)
	return loc
}

func TestLinkDrawerCreatesRackAndPod(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	l := New(nil)

	inTx(t, store, func(s repository.Session) {
		drawer, err := s.Create(ctx, domain.KindDrawer)
		require.NoError(t, err)
		domain.Set(drawer, domain.PropLocation, mustLocation(t, "Pod=1,Rack=2,Drawer=3"))

		require.NoError(t, l.LinkToDomainModel(ctx, s, drawer))

		racks, err := drawer.Parents(ctx, domain.Contains)
		require.NoError(t, err)
		require.Len(t, racks, 1)
		rack := racks[0]
		assert.Equal(t, domain.KindRack, rack.Kind())
		assert.Equal(t, DefaultRackName, domain.Get(rack, domain.PropName))
		assert.Equal(t, domain.StateEnabled, domain.Get(rack, domain.PropState))
		assert.Equal(t, domain.HealthOK, domain.Get(rack, domain.PropHealth))
		assert.Equal(t, "Pod=1,Rack=2", domain.Get(rack, domain.PropLocation).String())

		pods, err := rack.Parents(ctx, domain.Contains)
		require.NoError(t, err)
		require.Len(t, pods, 1)
		assert.Equal(t, "Pod=1", domain.Get(pods[0], domain.PropLocation).String())
	})
}

func TestLinkDrawersShareRack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	l := New(nil)

	inTx(t, store, func(s repository.Session) {
		for _, loc := range []string{"Pod=1,Rack=2,Drawer=1", "Pod=1,Rack=2,Drawer=2", "Pod=1,Rack=3,Drawer=1"} {
			drawer, err := s.Create(ctx, domain.KindDrawer)
			require.NoError(t, err)
			domain.Set(drawer, domain.PropLocation, mustLocation(t, loc))
			require.NoError(t, l.LinkToDomainModel(ctx, s, drawer))
		}

		racks, err := s.GetAll(ctx, domain.KindRack)
		require.NoError(t, err)
		assert.Len(t, racks, 2)

		pods, err := s.GetAll(ctx, domain.KindPod)
		require.NoError(t, err)
		require.Len(t, pods, 1)

		drawers, err := racks[0].LinkedOfKind(ctx, domain.Contains, domain.KindDrawer)
		require.NoError(t, err)
		assert.Len(t, drawers, 2)
	})
}

func TestLinkDrawerWithoutLocation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inTx(t, store, func(s repository.Session) {
		drawer, err := s.Create(ctx, domain.KindDrawer)
		require.NoError(t, err)
		require.NoError(t, New(nil).LinkToDomainModel(ctx, s, drawer))

		racks, err := s.GetAll(ctx, domain.KindRack)
		require.NoError(t, err)
		assert.Empty(t, racks)
	})
}

func TestLinkToSingletonCollections(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	l := New(nil)

	inTx(t, store, func(s repository.Session) {
		for i := 0; i < 2; i++ {
			svc, err := s.Create(ctx, domain.KindStorageService)
			require.NoError(t, err)
			require.NoError(t, l.LinkToDomainModel(ctx, s, svc))

			mgr, err := s.Create(ctx, domain.KindManager)
			require.NoError(t, err)
			require.NoError(t, l.LinkToDomainModel(ctx, s, mgr))
		}

		services, err := s.GetAll(ctx, domain.KindStorageServiceCollection)
		require.NoError(t, err)
		require.Len(t, services, 1)
		members, err := services[0].Linked(ctx, domain.Contains)
		require.NoError(t, err)
		assert.Len(t, members, 2)

		managers, err := s.GetAll(ctx, domain.KindManagerCollection)
		require.NoError(t, err)
		require.Len(t, managers, 1)
		members, err = managers[0].Linked(ctx, domain.Contains)
		require.NoError(t, err)
		assert.Len(t, members, 2)
	})
}

func TestLinkToDomainModelOtherKinds(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	l := New(nil)

	assert.ErrorIs(t, l.LinkToDomainModel(ctx, nil, nil), ErrNilObject)

	inTx(t, store, func(s repository.Session) {
		blade, err := s.Create(ctx, domain.KindBlade)
		require.NoError(t, err)
		require.NoError(t, l.LinkToDomainModel(ctx, s, blade))

		parents, err := blade.Parents(ctx, domain.Contains)
		require.NoError(t, err)
		assert.Empty(t, parents)
	})
}
