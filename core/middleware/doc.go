// Package middleware groups the Fiber middleware shared by every feature.
//
//   - auth: checks the X-API-Key header against server.api_key. An empty key
//     turns the check off for local use.
//   - rayid: tags each request with an X-Ray-ID (uuid), reused from the client
//     when present, and stores it under the "ray_id" local for logger.WithRayID.
//
// rayid goes first so that rejected requests are still traceable; swagger is
// mounted before auth.
package middleware
