// Package cache stores fetched listing pages for a bounded time so repeated
// runs inside the TTL do not hit the shop again. Caching is opt-in.
package cache
