// Package keygen generates instance access credentials.
//
// It produces random login passwords for instances that were not given one
// and RSA key pairs (PEM private key, OpenSSH authorized_keys public key) for
// key-based SSH access.
package keygen
