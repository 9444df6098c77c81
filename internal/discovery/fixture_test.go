package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"podmanager/internal/domain"
	"podmanager/internal/repository/sqlite"
	"podmanager/internal/schema"
)

// podFixture is a one-drawer service: drawer, compute module, blade with a
// processor, and the drawer manager with one Ethernet interface
func podFixture(serviceUUID string) map[string]string {
	return map[string]string{
		"/rest/v1": `{
			"@odata.type": "#RSAServiceRoot.1.0.0.RSAServiceRoot",
			"UUID": "` + serviceUUID + `",
			"Drawers": {"@odata.id": "/rest/v1/Drawers"},
			"Managers": {"@odata.id": "/rest/v1/Managers"}
		}`,
		"/rest/v1/Drawers": `{
			"@odata.type": "#RSADrawer.1.0.0.RSADrawerCollection",
			"Members": [{"@odata.id": "/rest/v1/Drawers/1"}]
		}`,
		"/rest/v1/Drawers/1": `{
			"@odata.type": "#RSADrawer.1.0.0.RSADrawer",
			"Name": "drawer-1",
			"Location": {"Pod": 1, "Rack": 2, "Drawer": 3},
			"Status": {"State": "Enabled", "Health": "OK"},
			"Links": {
				"ComputeModules": {"@odata.id": "/rest/v1/Drawers/1/ComputeModules"},
				"ManagedBy": [{"@odata.id": "/rest/v1/Managers/1"}]
			}
		}`,
		"/rest/v1/Drawers/1/ComputeModules": `{
			"@odata.type": "#RSAComputeModule.1.0.0.RSAComputeModuleCollection",
			"Members": [{"@odata.id": "/rest/v1/Drawers/1/ComputeModules/1"}]
		}`,
		"/rest/v1/Drawers/1/ComputeModules/1": `{
			"@odata.type": "#RSAComputeModule.1.0.0.RSAComputeModule",
			"Name": "module-1",
			"Links": {
				"Blades": {"@odata.id": "/rest/v1/Drawers/1/ComputeModules/1/Blades"},
				"ManagedBy": [{"@odata.id": "/rest/v1/Managers/1"}]
			}
		}`,
		"/rest/v1/Drawers/1/ComputeModules/1/Blades": `{
			"@odata.type": "#RSABlade.1.0.0.RSABladeCollection",
			"Members": [{"@odata.id": "/rest/v1/Drawers/1/ComputeModules/1/Blades/1"}]
		}`,
		"/rest/v1/Drawers/1/ComputeModules/1/Blades/1": `{
			"@odata.type": "#RSABlade.1.0.0.RSABlade",
			"Name": "blade-1",
			"PowerState": "On",
			"Processors": {"@odata.id": "/rest/v1/Drawers/1/ComputeModules/1/Blades/1/Processors"},
			"Links": {
				"ManagedBy": [{"@odata.id": "/rest/v1/Managers/1"}],
				"ContainedBy": {"@odata.id": "/rest/v1/Drawers/1"}
			}
		}`,
		"/rest/v1/Drawers/1/ComputeModules/1/Blades/1/Processors": `{
			"@odata.type": "#RSAProcessor.1.0.0.RSAProcessorCollection",
			"Members": [{"@odata.id": "/rest/v1/Drawers/1/ComputeModules/1/Blades/1/Processors/1"}]
		}`,
		"/rest/v1/Drawers/1/ComputeModules/1/Blades/1/Processors/1": `{
			"@odata.type": "#RSAProcessor.1.0.0.RSAProcessor",
			"Socket": "CPU0",
			"TotalCores": 8
		}`,
		"/rest/v1/Managers": `{
			"@odata.type": "#RSAManager.1.0.0.RSAManagerCollection",
			"Members": [{"@odata.id": "/rest/v1/Managers/1"}]
		}`,
		"/rest/v1/Managers/1": `{
			"@odata.type": "#RSAManager.1.0.0.RSAManager",
			"Name": "drawer-manager",
			"ManagerType": "EnclosureManager",
			"EthernetInterfaces": {"@odata.id": "/rest/v1/Managers/1/EthernetInterfaces"}
		}`,
		"/rest/v1/Managers/1/EthernetInterfaces": `{
			"@odata.type": "#EthernetNetworkInterface.1.0.0.EthernetNetworkInterfaceCollection",
			"Members": [{"@odata.id": "/rest/v1/Managers/1/EthernetInterfaces/1"}]
		}`,
		"/rest/v1/Managers/1/EthernetInterfaces/1": `{
			"@odata.type": "#EthernetNetworkInterface.1.0.0.EthernetNetworkInterface",
			"Name": "eth0",
			"MACAddress": "aa:bb:cc:dd:ee:01",
			"IPv4Addresses": [{"Address": "10.0.0.10", "SubnetMask": "255.255.255.0"}]
		}`,
	}
}

// fixture serves documents by path and may be changed between passes
type fixture struct {
	*httptest.Server
	mu   sync.RWMutex
	docs map[string]string
}

func (f *fixture) set(path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[path] = body
}

func (f *fixture) get(path string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	body, ok := f.docs[strings.TrimSuffix(path, "/")]
	return body, ok
}

func newFixtureServer(t *testing.T, docs map[string]string) *fixture {
	t.Helper()
	f := &fixture{docs: docs}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := f.get(r.URL.Path)
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(f.Close)
	return f
}

func newTestStore(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
	})
	_, err = schema.NewSynchronizer(repo).SyncAll(context.Background(), domain.Classes())
	require.NoError(t, err)
	return repo
}
