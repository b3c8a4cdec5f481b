// Package client talks to the social API over HTTP+JSON.
//
// # Overview
//
// Client is the transport-agnostic contract the rest of the application
// depends on: the auth gateway (signup, login, OTP reset, current user,
// logout) plus the posts endpoints the feed and profile views use.
// HTTPClient implements it with net/http, keeping credentials in a cookie
// jar that can be persisted between runs through a CookieStore.
//
// # Error Handling
//
// Failures fall into three shapes callers can tell apart:
//   - ErrUnavailable: the request never produced a response.
//   - *APIError: the server answered with success:false or a non-2xx status;
//     its Message is the text the UI shows. A 401/403 APIError also matches
//     ErrUnauthorized via errors.Is.
//   - ErrMalformedResponse: a response arrived but could not be decoded.
//
// Context cancellation is returned as the context's own error.
package client
