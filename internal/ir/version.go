package ir

// IRVersion identifies the IR snapshot schema. Bump on any change to the
// map shapes produced by EncodeComp/EncodeExpr; golden files are keyed to
// this contract, not to renderer prose.
const IRVersion = "1.0.0"
