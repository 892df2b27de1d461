// Package state keeps one in-progress multi-step conversation per user and
// routes each incoming message to the handler of the conversation's current
// step.
//
// A conversation is started by a top-level command, advanced only by the
// handler registered for its step, and ended on success, cancellation, error
// or inactivity timeout. Numbered menus capture the options shown to the user
// in the record, so a later reply is resolved against exactly what was shown.
package state
