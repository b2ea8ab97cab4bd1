// Package usage accumulates per-user token and cost totals across
// providers and models. Recording is best-effort: accounting failures are
// logged and never fail the query that triggered them.
package usage
