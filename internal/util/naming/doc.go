// Package naming provides consistent naming functions for provisioned instances.
//
// Instance names follow the pattern {base} for single instances and
// {base}-{index} (1-based) when a spec asks for several. Worker groups are
// prefixed with their backend name, {worker}-{backend}, so two backends can
// never hand out the same instance name within one cluster.
package naming
