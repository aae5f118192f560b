// Package credentials provides the authorization capability consumed by the
// credentials policy, and common implementations: static bearer tokens,
// basic auth, API keys, cached token sources and self-signed JWTs.
//
//	creds, err := credentials.JWT(credentials.JWTConfig{
//	    Issuer: "billing-worker",
//	    Secret: os.Getenv("SIGNING_SECRET"),
//	})
//	client, err := rest.NewBuilder().WithCredentials(creds)...
package credentials
