// Package cli is the terminal front end of dreamteller: a small REPL over
// the auth session and the dream store.
//
// Every command calls one store or session operation and then renders the
// published state. Failures are never returned by those operations; the
// command prints the state's error message instead.
package cli
