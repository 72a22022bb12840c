// Package codec serializes and deserializes every wire packet the link
// uses: the five data-packet classes (info, quat+accel full, quat+accel
// compact, status, quat+mag), the receiver-only registration packet, and
// the 8-byte pairing frame. It owns the integrity checks (CRC32-K,
// CRC16, CRC8-CCITT), the sequence-window replay policy, and the
// smallest-three quaternion compression (spec §4.1).
package codec
