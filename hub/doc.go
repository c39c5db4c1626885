// Package hub provides a generic in-process event notification hub: an
// ordered registry of subscribers plus synchronous and asynchronous dispatch.
//
// A Hub delivers each published value to every registered subscriber in
// registration order (or descending priority when registrations carry one),
// over a stable snapshot of the registry taken when the publish begins.
// Subscribers may register or unregister other subscribers — or themselves —
// from inside their own Receive callback without corrupting the dispatch in
// progress. A failing or panicking subscriber never prevents delivery to the
// rest; all per-subscriber failures are collected into a single DeliveryError
// returned once every subscriber has been attempted.
//
// Registration identity is the registered value itself: register pointers (or
// use Func, which allocates a fresh identity per call) so that duplicate
// detection and unregistration behave predictably. The hub holds an ordinary
// reference to each subscriber; owners are expected to unregister during
// their own teardown rather than rely on the hub forgetting them.
package hub
