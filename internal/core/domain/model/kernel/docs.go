// Package kernel holds the value objects shared by every aggregate of the
// fulfillment domain:
//   - UUID: entity identifier wrapping google/uuid, invalid as a zero value
//   - Priority: LOW, MEDIUM, HIGH, URGENT with an ordering rank
package kernel
