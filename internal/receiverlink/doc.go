// Package receiverlink implements the receiver-side superframe master:
// beacon emission, multi-tracker slot reception, tracker roster
// bookkeeping, and HID report republishing toward the host (spec §4.6).
package receiverlink
