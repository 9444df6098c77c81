package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podmanager/internal/domain"
	"podmanager/internal/linker"
	"podmanager/internal/mapper"
	"podmanager/internal/repository"
	"podmanager/internal/resource"
)

const serviceA = "6b2a5a2e-7cbb-4a57-8c9d-2a0e0b7d9c11"

func reader(t *testing.T, base string) resource.Reader {
	t.Helper()
	r, err := resource.NewHTTPReader(base + "/rest/v1")
	require.NoError(t, err)
	return r
}

func count(t *testing.T, s repository.Session, kind domain.Kind) int {
	t.Helper()
	all, err := s.GetAll(context.Background(), kind)
	require.NoError(t, err)
	return len(all)
}

func single(t *testing.T, s repository.Session, kind domain.Kind) *domain.Object {
	t.Helper()
	all, err := s.GetAll(context.Background(), kind)
	require.NoError(t, err)
	require.Len(t, all, 1, "expected one %s", kind)
	return all[0]
}

func TestPassMapsAndLinks(t *testing.T) {
	store := newTestStore(t)
	srv := newFixtureServer(t, podFixture(serviceA))
	ctx := context.Background()
	ep := Endpoint{URI: srv.URL + "/rest/v1", Type: domain.ServiceTypePSME}

	res, err := NewPass(store).Run(ctx, ep, reader(t, srv.URL))
	require.NoError(t, err)
	assert.Equal(t, serviceA, res.ServiceUUID.String())
	assert.Equal(t, 6, res.Mapped)
	assert.Equal(t, 6, res.Created)
	assert.Equal(t, 1, res.Skipped, "blades do not declare containedBy")

	err = store.View(ctx, func(s repository.Session) error {
		drawer := single(t, s, domain.KindDrawer)
		module := single(t, s, domain.KindComputeModule)
		blade := single(t, s, domain.KindBlade)
		cpu := single(t, s, domain.KindProcessor)
		manager := single(t, s, domain.KindManager)
		nic := single(t, s, domain.KindNetworkInterface)

		assert.Equal(t, "blade-1", domain.Get(blade, domain.PropName))
		assert.Equal(t, int64(8), domain.Get(cpu, domain.PropTotalCores))
		assert.Equal(t, "AA:BB:CC:DD:EE:01", domain.Get(nic, domain.PropMACAddress))
		assert.Equal(t, srv.URL+"/rest/v1/Drawers/1", domain.Get(drawer, domain.PropSourceURI))

		assertLinked(t, drawer, domain.Contains, module)
		assertLinked(t, module, domain.Contains, blade)
		assertLinked(t, blade, domain.Contains, cpu)
		assertLinked(t, blade, domain.ManagedBy, manager)
		assertLinked(t, drawer, domain.ManagedBy, manager)
		assertLinked(t, manager, domain.Contains, nic)

		rack := single(t, s, domain.KindRack)
		assert.Equal(t, "Pod=1,Rack=2", domain.Get(rack, domain.PropLocation).String())
		assertLinked(t, rack, domain.Contains, drawer)
		assertLinked(t, single(t, s, domain.KindPod), domain.Contains, rack)
		assertLinked(t, single(t, s, domain.KindManagerCollection), domain.Contains, manager)

		svc := single(t, s, domain.KindExternalService)
		assert.Equal(t, serviceA, domain.Get(svc, domain.PropUUID))
		assert.Equal(t, ep.URI, domain.Get(svc, domain.PropServiceURI))
		assert.Equal(t, domain.ServiceTypePSME, domain.Get(svc, domain.PropServiceType))
		assertLinked(t, blade, domain.DiscoveredBy, svc)
		return nil
	})
	require.NoError(t, err)
}

func assertLinked(t *testing.T, from *domain.Object, label string, to *domain.Object) {
	t.Helper()
	linked, err := from.Linked(context.Background(), label)
	require.NoError(t, err)
	for _, obj := range linked {
		if obj.ID() == to.ID() {
			return
		}
	}
	t.Errorf("%s is not linked %s to %s", from, label, to)
}

func TestPassRediscoveryUpdatesInPlace(t *testing.T) {
	store := newTestStore(t)
	srv := newFixtureServer(t, podFixture(serviceA))
	ctx := context.Background()
	ep := Endpoint{URI: srv.URL + "/rest/v1", Type: domain.ServiceTypePSME}

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pass := NewPass(store, WithClock(func() time.Time { return clock }))

	_, err := pass.Run(ctx, ep, reader(t, srv.URL))
	require.NoError(t, err)

	srv.set("/rest/v1/Drawers/1/ComputeModules/1/Blades/1", `{
		"@odata.type": "#RSABlade.1.0.0.RSABlade",
		"Name": "blade-renamed",
		"Links": {"ManagedBy": [{"@odata.id": "/rest/v1/Managers/1"}]}
	}`)
	clock = clock.Add(time.Hour)
	res, err := pass.Run(ctx, ep, reader(t, srv.URL))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 5, res.Mapped, "the processor is no longer reachable")

	err = store.View(ctx, func(s repository.Session) error {
		blade := single(t, s, domain.KindBlade)
		assert.Equal(t, "blade-renamed", domain.Get(blade, domain.PropName))
		assert.Equal(t, 1, count(t, s, domain.KindDrawer))
		assert.Equal(t, 1, count(t, s, domain.KindRack))
		assert.Equal(t, 1, count(t, s, domain.KindIPv4Address))

		svc := single(t, s, domain.KindExternalService)
		assert.True(t, clock.Equal(domain.Get(svc, domain.PropLastSeen)))
		return nil
	})
	require.NoError(t, err)
}

func TestPassUnreachableRoot(t *testing.T) {
	store := newTestStore(t)
	srv := newFixtureServer(t, map[string]string{})
	bus := NewEventBus()
	events := make(chan Event, 8)
	bus.Subscribe(events)

	ep := Endpoint{URI: srv.URL + "/rest/v1", Type: domain.ServiceTypeRSS}
	_, err := NewPass(store, WithEvents(bus)).Run(context.Background(), ep, reader(t, srv.URL))
	require.ErrorIs(t, err, ErrUnreachable)

	select {
	case ev := <-events:
		assert.Equal(t, EventPassFailed, ev.Type)
	default:
		t.Fatal("no failure event published")
	}
}

func TestPassRootWithoutUUID(t *testing.T) {
	store := newTestStore(t)
	srv := newFixtureServer(t, map[string]string{
		"/rest/v1": `{"@odata.type": "#RSAServiceRoot.1.0.0.RSAServiceRoot"}`,
	})
	ep := Endpoint{URI: srv.URL + "/rest/v1"}
	_, err := NewPass(store).Run(context.Background(), ep, reader(t, srv.URL))
	assert.ErrorContains(t, err, "has no UUID")
}

func TestPassRollsBackOnMappingError(t *testing.T) {
	store := newTestStore(t)
	docs := podFixture(serviceA)
	docs["/rest/v1/Drawers/1/ComputeModules/1/Blades/1/Processors/1"] = `{
		"@odata.type": "#RSAProcessor.1.0.0.RSAProcessor",
		"TotalCores": "eight"
	}`
	srv := newFixtureServer(t, docs)
	ctx := context.Background()

	_, err := NewPass(store).Run(ctx, Endpoint{URI: srv.URL + "/rest/v1"}, reader(t, srv.URL))
	var cfg *mapper.ConfigurationError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, domain.KindProcessor, cfg.Kind)

	err = store.View(ctx, func(s repository.Session) error {
		assert.Zero(t, count(t, s, domain.KindDrawer))
		assert.Zero(t, count(t, s, domain.KindExternalService))
		assert.Zero(t, count(t, s, domain.KindRack))
		return nil
	})
	require.NoError(t, err)
}

func TestPassPublishesEvents(t *testing.T) {
	store := newTestStore(t)
	srv := newFixtureServer(t, podFixture(serviceA))
	bus := NewEventBus()
	events := make(chan Event, 32)
	bus.Subscribe(events)

	_, err := NewPass(store, WithEvents(bus)).Run(context.Background(),
		Endpoint{URI: srv.URL + "/rest/v1"}, reader(t, srv.URL))
	require.NoError(t, err)
	close(events)

	counts := make(map[EventType]int)
	for ev := range events {
		counts[ev.Type]++
	}
	assert.Equal(t, 6, counts[EventObjectDiscovered])
	assert.Equal(t, 1, counts[EventPassCompleted])
}

func TestPassFailsOnDeclaredLinkWithoutRegistration(t *testing.T) {
	store := newTestStore(t)
	srv := newFixtureServer(t, podFixture(serviceA))
	ctx := context.Background()
	ep := Endpoint{URI: srv.URL + "/rest/v1", Type: domain.ServiceTypePSME}

	var regs []linker.Registration
	for _, r := range linker.DefaultRegistrations() {
		if r.Source == domain.KindComputeModule && r.Target == domain.KindBlade {
			continue
		}
		regs = append(regs, r)
	}
	pass := NewPass(store, WithLinker(linker.New(linker.NewRegistry(regs...))))

	res, err := pass.Run(ctx, ep, reader(t, srv.URL))
	require.Error(t, err)
	assert.Nil(t, res)

	var notRegistered *linker.NotRegisteredError
	require.ErrorAs(t, err, &notRegistered)
	assert.Equal(t, domain.KindComputeModule, notRegistered.Source)
	assert.Equal(t, domain.KindBlade, notRegistered.Target)
	assert.Equal(t, "blades", notRegistered.Name)

	err = store.View(ctx, func(s repository.Session) error {
		assert.Zero(t, count(t, s, domain.KindBlade), "the failed pass rolls back")
		assert.Zero(t, count(t, s, domain.KindExternalService))
		return nil
	})
	require.NoError(t, err)
}

func TestDeclaredLinkGroupsAreRegistered(t *testing.T) {
	registry := linker.NewRegistry(linker.DefaultRegistrations()...)
	for _, class := range domain.Classes() {
		for _, name := range resource.LinkGroups(class.Kind) {
			found := false
			for _, r := range registry.Registrations() {
				if r.Source == class.Kind && r.Name == name {
					found = true
					break
				}
			}
			assert.True(t, found, "%s declares %s but no registration links it", class.Kind, name)
		}
	}
}
