// Package storage implements the Persisted State component: flat,
// byte-addressed non-volatile storage split into double-buffered banks
// per record (spec §4.8). Each record is prefixed with
// {magic, version, sequence, length, crc16}; on read, the bank that
// both verifies and carries the larger sequence number wins, so power
// loss at any single write leaves at least one valid bank.
package storage
