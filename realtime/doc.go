// Package realtime implements the SelfDB realtime subscription client.
//
// A single Manager owns one WebSocket connection to the backend's realtime
// endpoint and multiplexes any number of logical subscriptions over it:
//   - Subscriptions are registered client-side and survive reconnects.
//   - On connection loss the manager reconnects with exponential backoff
//     and replays every registered subscription.
//   - Application-level ping frames keep the connection alive while
//     connected; dead links are detected via the transport's close/error
//     signal, not via pong timeouts.
//
// Inbound change events are routed to subscriber callbacks by channel name
// and event filter.
package realtime
