// Package channel implements the Channel Manager: per-channel quality
// tracking over a 10-second sliding window, blacklist/rehabilitation
// hysteresis with a 3-channel floor, the network-key-seeded hop
// sequence, and clear-channel assessment (spec §4.3).
package channel
