// Package simradio stands in for the out-of-scope nRF24-class radio
// PHY (internal/hal.RadioPHY) so the simulated tracker and receiver
// firmware entry points (cmd/tracker, cmd/receiver) can exchange real
// packets as separate OS processes rather than only in-process fakes.
// It models the shared 2.4 GHz channel set as one UDP port per channel
// number: SetChannel rebinds the listening socket to PortBase+channel,
// and Transmit sends the frame to each configured peer's port for the
// same channel. Only configured peers receive it; nothing is broadcast.
package simradio
