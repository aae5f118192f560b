// Package testutil provides test doubles for code built on the request
// pipeline:
//
//   - Server: a gin-backed httptest server with scripted routes that
//     records every request it receives
//   - ScriptedTransport: a pipeline.Transport returning scripted outcomes
//   - Recorder: policy factories that record chain traversal order
//
// Example:
//
//	srv := testutil.NewServer(t).Sequence(http.MethodGet, "/items", 503, 503, 200)
//	client, _ := rest.NewBuilder().WithBaseURL(srv.URL)...Build()
//	resp, err := client.Send(ctx, req)
//	assert.Equal(t, 3, srv.Hits("/items"))
package testutil
