// Package wave models picking waves: batches of orders expanded into picklist
// items, walked by one picker.
//
// Key business rules:
//   - totalItems equals the sum of item quantities at creation
//   - the wave moves forward only (GENERATED, ASSIGNED, PICKING, COMPLETED) or to CANCELLED
//   - only the assigned picker may start, scan, report or complete
//   - a scan never records more than the requested quantity
//   - the last scan that closes all open items completes the wave
package wave
