// Package internal contains the implementation packages for catr.
//
// # Package Organization
//
//   - config: layered run configuration (flags, CATR_ env, .catr.yml) and validation
//   - errors: the CatrError taxonomy separating recoverable from fatal failures
//   - logging: slog-backed structured logger for debug tracing
//   - renderer: the line loop that prints and numbers each source
//   - source: resolution of source tokens into line streams
//   - testutils: workspace helpers shared by tests
//   - version: build metadata for --version
//
// # Data Flow
//
//	cmd (cobra) -> config.Load -> renderer.Run -> source.Resolver.Open -> Stream.ReadLine
//
// Sources are processed one at a time and never concurrently.
package internal
