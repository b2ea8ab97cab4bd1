// Package pricing normalizes provider billing: a per-1K-token price table
// keyed by model, and cost computation for settled responses. Models without
// a pricing entry yield an absent cost rather than zero.
package pricing
