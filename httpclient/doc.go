// Package httpclient is the API client side of errkit. Every failure, whether
// an error envelope from the server or a transport problem, comes back to
// the caller as a single *Error.
//
// The pieces compose as:
//
//   - Adapter sends requests, runs outbound interceptors such as
//     BearerFromStore, and reports transport failures as *TransportError.
//   - Normalizer turns a response or transport failure into *Error, clearing
//     the stored token and redirecting to the login path on a 401.
//   - Client joins the two, retries transient failures and decodes
//     {"data": ...} envelopes through Get, Post, Put, Patch and Delete.
//
// # Basic Usage
//
//	store := tokenstore.NewFile(path)
//	client, err := httpclient.NewClient(httpclient.Config{
//	    BaseURL: "http://localhost:8080/api/v1",
//	}, store)
//
//	article, err := httpclient.Get[Article](client, ctx, "/articles/1")
//	var apiErr *httpclient.Error
//	if errors.As(err, &apiErr) {
//	    fmt.Println(apiErr.Message)
//	}
package httpclient
