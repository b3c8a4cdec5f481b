// Package cli provides the interactive gophsocial command-line client.
//
// It wires configuration, the local database, the API client, the session
// store and the application services behind a REPL. Every command that opens
// a page goes through the route guard: protected pages need a signed-in
// user, public auth pages bounce a signed-in user to the feed, and while the
// startup session check is pending the guard may show a loading line and
// wait for it.
//
// Errors never leave a command. They are turned into notifications, and the
// busy flag is released on every path.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
