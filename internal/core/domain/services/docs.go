// Package services holds the domain services of the fulfillment pipeline that
// span several aggregates:
//   - WaveGenerator: batches orders into waves and expands carts into picklists
//   - WaveAssigner: distributes unassigned waves across eligible pickers
//   - SLATracker: buckets deadlines of waves, packing jobs and handovers
package services
