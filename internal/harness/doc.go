// Package harness provides conformance testing for the compiler.
//
// The harness loads YAML scenarios, runs each one through the full
// pipeline for every requested backend, and compares the emitted source
// plus the canonical IR snapshot against golden files.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: odd_square_sum
//	description: "Sum of squares of odd integers below 6"
//	source: "sum(i * i for i in range(1, 6) if i % 2 == 1)"
//	backends: [rust, go, sql]
//	dialects: [postgres]
//	options:
//	  func_name: odd_square_sum
//	  int_width: 64
//
// A scenario that must fail sets expect_error to a substring of the
// expected error message instead of golden comparison:
//
//	name: reject_power
//	description: "Power operator is not part of the grammar"
//	source: "sum(i ** 2 for i in range(10))"
//	backends: [rust]
//	expect_error: "power operator"
//
// # Golden Files
//
// Outputs live under testdata/golden as {name}.{backend}.golden, with
// SQL split per dialect as {name}.sql.{dialect}.golden, and the IR
// snapshot as {name}.ir.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
