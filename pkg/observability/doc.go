/*
Package observability provides lifecycle hooks for monitoring the Folio engine.

Hooks are plain domain.LifecycleHooks values; this package builds common ones (structured
logging) and fans several of them into one so a host can log, stream and audit the same
events.
*/
package observability
