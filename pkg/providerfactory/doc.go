// Package providerfactory constructs provider adapters and registries from
// configuration, keeping the catalog order as the canonical provider order.
package providerfactory
