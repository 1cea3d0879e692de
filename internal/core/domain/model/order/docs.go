// Package order exposes the storefront order as a read-only collaborator of
// the fulfillment pipeline. Orders are only read: their carts are expanded into
// picklist items by the wave generator.
package order
