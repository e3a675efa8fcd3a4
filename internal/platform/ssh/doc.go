// Package ssh provides an SSH client for running read-only commands on
// freshly provisioned instances.
//
// The handshake client uses it to read the join artifact a manager's startup
// script deposits. Password and key authentication are both supported since
// backends issue either kind of credential. Connect makes a single attempt;
// the handshake client owns the retry budget.
package ssh
