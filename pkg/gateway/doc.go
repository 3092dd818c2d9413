// Package gateway is the HTTP client for the risk authority.
//
// Each read issues exactly one request. Failures are never retried and come
// back as *RemoteFetchError naming the dimension; bad identifiers are
// rejected with *InvalidInputError before any I/O.
//
//	client, err := gateway.New(baseURL,
//		gateway.WithLogger(logging.New("gateway")),
//		gateway.WithCache(cache.NewMemoryCache(), time.Minute),
//	)
//	report, err := client.Honeypot(ctx, mint)
//
// Credentials: a Client never changes after New. WithCredentials returns a
// copy, and Session swaps the current copy atomically after a wallet login.
package gateway
