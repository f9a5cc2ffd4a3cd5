// Package minbar is the composition root of the minbar site manager.
//
// It connects the Plan-Merge-Dispatch pipeline (pkg/core) and the tool
// handlers (pkg/tools) with a content store adapter and a planning oracle,
// using the Hexagonal Architecture pattern.
//
// An operator instruction is turned into an untrusted plan by the planner,
// validated against a closed set of actions, merged over caller context and
// dispatched to exactly one handler, which performs a conditional
// read-modify-write against the site's repository.
//
// Features:
//
//   - **Hexagonal Architecture**: the pipeline never sees GitHub, git or HTTP.
//   - **Optimistic Concurrency**: every write carries the version token read
//     before it; the loser of a race fails with Conflict.
//   - **Pluggable Stores**: GitHub (`github`), local git repositories (`fs`)
//     and an in-process store (`memory`).
//   - **Typed Documents**: `NewTypedRepository[T]` for struct access to site
//     JSON documents.
//
// Usage:
//
//	cfg, _ := minbar.LoadConfig("minbar.yaml")
//	app, err := minbar.New(ctx, cfg, minbar.WithLogger(logger))
//	out := app.Service.Act(ctx, minbar.Request{
//		Instruction: "announce iftar at 7pm",
//		RepoSlug:    "al-noor",
//	})
package minbar
