// Package apim provides types, interfaces, and helpers for working with an
// Azure API Management (APIM) service through the Azure Resource Manager API.
//
// # Overview
//
// The apim package defines the domain types (Service, Subscription, API,
// PolicyFragment, BackendContract, NamedValue) and the interfaces for
// resource-oriented clients (ServicesClient, BackendsClient, ...). A concrete
// implementation is provided by the apimclient package, which wires
// configuration, transport, authentication, and service discovery. Most
// consumers should import apimclient to construct a client and then interact
// with the resource client interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/apim-client/pkg/apim"
//	  "github.com/fivetwenty-io/apim-client/pkg/apimclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := apimclient.New(ctx, &apim.Config{
//	    SubscriptionID: "00000000-0000-0000-0000-000000000000",
//	    ResourceGroup:  "lab-rg",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  backends, pools, err := cli.Backends().Classified(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _, _ = backends, pools
//	}
//
// # Policy models and backends
//
// Two pure helpers carry the domain logic and can be used without a client:
//
//   - ExtractSupportedModels scans a policy document for
//     `"supportedModels", new JArray("a", "b")` declarations and returns the
//     sorted, deduplicated model names. HTML entity escaping is tolerated.
//   - ClassifyBackends partitions backend records into standalone backends
//     and backend pools.
//
// # Errors
//
// ARM errors are represented by APIError and ResponseError. Helpers such as
// IsNotFound, IsUnauthorized, and IsForbidden make it easy to branch on common
// cases. Fetch failures around the two domain helpers surface as
// ExtractionError and ClassificationError.
//
// # Caching
//
// A simple pluggable Cache abstraction (memory, NATS JetStream KV, no-op) can
// be attached to the client to cache GET responses.
package apim
