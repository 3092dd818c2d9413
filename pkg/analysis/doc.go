// Package analysis runs a full token analysis: one concurrent fetch per
// dimension through the gateway, merged into a safety.Record and scored.
//
// By default the first failed fetch cancels the rest and the analysis
// returns that error with no record. WithPartialResults keeps what
// succeeded instead.
package analysis
