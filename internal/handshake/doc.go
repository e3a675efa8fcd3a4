// Package handshake retrieves the join secret a manager instance publishes
// once its cluster service is initialised.
//
// The manager's startup script writes a small JSON artifact to a well-known
// path. Client.FetchJoinSecret connects to the manager, reads that file and
// parses it, treating every failure (refused connection, rejected
// credentials, missing file, malformed JSON) as "not ready yet". The attempt
// budget is strictly bounded; once it is spent a *TimeoutError carrying the
// last failure is returned.
//
// A fetch only ever reads the artifact. It never changes the remote instance.
package handshake
