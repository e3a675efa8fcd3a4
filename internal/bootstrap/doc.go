// Package bootstrap renders role-specific startup scripts for cluster instances.
//
// Templates use {{ name }} placeholders. Compose substitutes every placeholder
// with its parameter rendered as one single-quoted shell word, so a join token
// or address containing quotes, spaces or command substitutions cannot change
// the structure of the script. Rendering is pure and deterministic.
//
// Templates for the supported cluster flavours are embedded in the binary and
// selected by name:
//
//	set, err := bootstrap.Templates("docker-swarm")
//	script, err := bootstrap.Compose(backend.RoleWorker, set.Worker, map[string]string{
//		bootstrap.ParamLeaderAddress: "203.0.113.10",
//		bootstrap.ParamJoinToken:     secret.WorkerToken,
//		...
//	})
package bootstrap
