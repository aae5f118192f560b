// Package rest provides the REST client and its builder.
//
// A Client is an immutable configuration plus the request pipeline built
// from it:
//
//	client, err := rest.NewBuilder().
//	    WithBaseURL("https://management.azure.com").
//	    WithSerializerAdapter(serializer.JSON{}).
//	    WithResponseBuilderFactory(rest.DefaultResponseBuilderFactory{}).
//	    WithCredentials(credentials.Bearer(token)).
//	    WithLogLevel(policy.LogBasic).
//	    AddCustomPolicy(policy.RequestID("")).
//	    Build()
//
//	req, _ := client.NewRequest(http.MethodGet, "subscriptions", nil)
//	var subs SubscriptionList
//	resp, err := client.Do(ctx, req, client.NewResponseBuilder().Register(http.StatusOK, &subs))
//
// Client.NewBuilder derives a differently configured client without
// touching the original.
package rest
