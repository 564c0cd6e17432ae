// Package normalization turns raw swap records into direction-resolved trades.
//
// Stages, in order:
//  1. FilterByTimeframe drops records older than the configured cutoff
//  2. ValidateRecords drops ungroupable records and flags suspicious ones
//  3. Deduplicate removes repeated ledger entries
//  4. AggregateTrades merges entries per transaction into net changes
//  5. ResolveDirection partitions each trade into given-up and received assets
package normalization
