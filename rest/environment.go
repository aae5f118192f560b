package rest

// Endpoint names a service endpoint within an Environment.
type Endpoint string

// Well-known endpoints.
const (
	EndpointManagement      Endpoint = "management"
	EndpointResourceManager Endpoint = "resource_manager"
	EndpointActiveDirectory Endpoint = "active_directory"
	EndpointGraph           Endpoint = "graph"
)

// Environment resolves endpoints to base URLs, so a client can target a
// cloud by name instead of by address.
type Environment interface {
	URL(endpoint Endpoint) string
}

// EnvironmentMap is an Environment backed by a static table. Unknown
// endpoints resolve to "".
type EnvironmentMap map[Endpoint]string

// URL returns the base URL of endpoint.
func (m EnvironmentMap) URL(endpoint Endpoint) string { return m[endpoint] }

// AzureCloud is the public Azure cloud.
var AzureCloud = EnvironmentMap{
	EndpointManagement:      "https://management.core.windows.net/",
	EndpointResourceManager: "https://management.azure.com/",
	EndpointActiveDirectory: "https://login.microsoftonline.com/",
	EndpointGraph:           "https://graph.windows.net/",
}
