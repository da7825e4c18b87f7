// Package foodapi provides an HTTP client for the food inventory API.
//
// # Overview
//
// The remote service owns the inventory records and the product catalog.
// This package only speaks its JSON wire format; all local state lives in
// the inventory package.
//
//   - client.go: HTTP client, request/response handling
//   - types.go: Item and Product mirroring the API schema
//
// # API Endpoints
//
// Paths are resolved beneath the configured API root
// (default http://localhost:5000/api/food):
//
//   - GET    inventory         full inventory snapshot
//   - POST   add               create, or increment count of an identical item
//   - DELETE delete/{id}       remove one record
//   - DELETE delete           remove every record
//   - PATCH  update/{id}       {"expiryDate": "YYYY-MM-DD"}
//   - GET    search?search=    catalog search
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Set Accept: application/json and User-Agent: larder/0.1
//   - Carry a fresh X-Request-ID (UUID v4) that is also logged on failure
//   - Have a 5-second timeout unless WithTimeout overrides it
//
// Example error messages:
//   - "execute request: dial tcp: connection refused"
//   - "api DELETE delete/42 returned status 500"
//   - "decode response: unexpected EOF"
//
// Empty bodies (204, or a zero-length 200) are treated as an acknowledgement.
//
// # Thread Safety
//
// The Client is safe for concurrent use. The underlying http.Client handles
// connection pooling.
//
// # Design Rationale
//
// No caching and no retries. The inventory gateway decides what a failure
// means for local state, and the user decides whether to try again.
package foodapi
