// Package apimclient provides the primary entry point for constructing an
// Azure API Management client that implements the apim.Client interface.
//
// It resolves what the configuration leaves out before building the client:
// the Azure subscription (and tenant) from `az account show` when no
// SubscriptionID is set, and the service name from the first
// Microsoft.ApiManagement/service in the resource group when no ServiceName
// is set.
//
// Quick start
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
//
//	  // Azure CLI login, subscription and service discovered.
//	  cli, err := apimclient.New(ctx, &apim.Config{ResourceGroup: "lab-rg"})
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with a service principal:
//	  cli, err = apimclient.NewWithClientCredentials(ctx, "sub-id", "lab-rg",
//	    "tenant-id", "client-id", "client-secret")
//
//	  models, err := cli.PolicyFragments().SupportedModels(ctx, "set-backend-pools")
//	  backends, pools, err := cli.Backends().Classified(ctx)
//	  _ = models; _ = backends; _ = pools
//	}
package apimclient
