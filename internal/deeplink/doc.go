// Package deeplink hands a resolved destination over to a native app when the
// destination belongs to one, falling back to an app-store download page when the
// app does not answer, and resuming the hand-off when the user comes back.
//
// The Resolver is written against three ports: Browser (navigation side effects),
// HandoffStore (durable client storage for the in-flight attempt) and Redeemer
// (the token-to-URL call). A console Browser and a JSON file store back the
// redirectctl resolve command; tests use in-memory fakes.
package deeplink
