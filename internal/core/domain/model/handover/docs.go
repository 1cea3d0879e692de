// Package handover models the transfer of a packed job to a delivery rider
// and the state of the matching shipment in the external logistics system.
package handover
