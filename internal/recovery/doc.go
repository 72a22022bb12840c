// Package recovery implements the Recovery State Machine: four-tier
// miss-sync escalation, slot-overrun abort, and tiered ack/wait timeout
// classification (spec §4.4).
package recovery
