// Package notify builds and dispatches subscriber notifications for newly
// discovered stocking events.
//
// Matched (event, subscription) pairs become push messages, the batch is
// deduplicated by (destination token, event id), and the whole batch goes
// to the push gateway in one call. Delivery is best-effort: a gateway
// failure fails the cycle's dispatch step with no retry here. A separate
// Twitter announcer can mirror new stockings to the project account.
package notify
