// Package wizard asks for a cloudweave configuration interactively and writes
// it as YAML.
//
// The questions run as huh forms. Backends are chosen by kind; each chosen
// kind then gets its own group for the provider defaults. Secrets such as
// HCLOUD_TOKEN are never asked for since they are read from the environment.
package wizard
